// Package session holds the state of one user's dashboard session: the
// snapshot history, the selected month and any unsubmitted edits.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/store"
)

// Options configures a Session. Zero values pick sensible defaults.
type Options struct {
	Stage         reference.Stage
	BusinessModel reference.BusinessModel
	Tables        *reference.Tables
	Recommender   advisor.Recommender
	Logger        *slog.Logger
}

// Session is not safe for concurrent use; callers that share one across
// goroutines serialize access themselves.
type Session struct {
	id     uuid.UUID
	store  *store.Store
	month  int
	drafts map[int]model.Inputs

	stage         reference.Stage
	businessModel reference.BusinessModel
	tables        *reference.Tables
	recommender   advisor.Recommender
	log           *slog.Logger
}

// New starts a session at month 1 over st.
func New(st *store.Store, opts Options) *Session {
	s := &Session{
		id:            uuid.New(),
		store:         st,
		month:         1,
		drafts:        make(map[int]model.Inputs),
		stage:         opts.Stage,
		businessModel: opts.BusinessModel,
		tables:        opts.Tables,
		recommender:   opts.Recommender,
		log:           opts.Logger,
	}
	if s.stage == "" {
		s.stage = reference.StagePreSeed
	}
	if s.tables == nil {
		s.tables = reference.Default()
	}
	if s.recommender == nil {
		s.recommender = advisor.NewDemo(s.tables)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// ID identifies the session in logs and the status endpoint.
func (s *Session) ID() uuid.UUID { return s.id }

// Store returns the snapshot history behind the session.
func (s *Session) Store() *store.Store { return s.store }

// Tables returns the reference tables in use.
func (s *Session) Tables() *reference.Tables { return s.tables }

// Stage returns the stage used for benchmark tables.
func (s *Session) Stage() reference.Stage { return s.stage }

// BusinessModel returns the business model that scales retention.
func (s *Session) BusinessModel() reference.BusinessModel { return s.businessModel }

// Recommender returns the advisor the session asks for recommendations.
func (s *Session) Recommender() advisor.Recommender { return s.recommender }

// SetStage changes the stage used for benchmark tables.
func (s *Session) SetStage(st reference.Stage) {
	s.stage = st
}

// Month returns the selected month.
func (s *Session) Month() int { return s.month }

// Select moves to month. Months start at 1.
func (s *Session) Select(month int) error {
	if month < 1 {
		return &model.InvalidInputError{Field: "month", Reason: "must be 1 or greater"}
	}
	s.month = month
	return nil
}

// Next moves to the following month.
func (s *Session) Next() int {
	s.month++
	return s.month
}

// Prev moves to the preceding month, stopping at 1.
func (s *Session) Prev() int {
	if s.month > 1 {
		s.month--
	}
	return s.month
}

// Draft returns the values to show in the input form for the selected
// month: unsubmitted edits if any, else the carry-forward pre-fill.
func (s *Session) Draft() (model.Prefill, bool, error) {
	if in, ok := s.drafts[s.month]; ok {
		return model.Prefill{Month: s.month, Inputs: in, Source: model.CarryDraft}, true, nil
	}
	pf, err := s.store.CarryForward(s.month)
	return pf, false, err
}

// Edit replaces the unsubmitted values for the selected month.
func (s *Session) Edit(in model.Inputs) {
	s.drafts[s.month] = in
}

// Discard drops unsubmitted edits for the selected month.
func (s *Session) Discard() {
	delete(s.drafts, s.month)
}

// Recorded reports whether the selected month already has a snapshot.
func (s *Session) Recorded() (bool, error) {
	_, ok, err := s.store.Snapshot(s.month)
	return ok, err
}

// Submit validates and records the draft for the selected month. On a
// duplicate month the draft is kept so the user can see what was rejected.
func (s *Session) Submit() (model.MonthlySnapshot, error) {
	pf, _, err := s.Draft()
	if err != nil {
		return model.MonthlySnapshot{}, err
	}
	return s.SubmitInputs(pf.Inputs)
}

// SubmitInputs validates in and records it for the selected month.
func (s *Session) SubmitInputs(in model.Inputs) (model.MonthlySnapshot, error) {
	if err := in.Validate(); err != nil {
		return model.MonthlySnapshot{}, err
	}
	snap, err := s.store.Record(s.month, in)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateMonth) {
			s.drafts[s.month] = in
		}
		return model.MonthlySnapshot{}, err
	}
	delete(s.drafts, s.month)
	s.log.Debug("check-in submitted", "session", s.id, "month", s.month)
	return snap, nil
}

// ReportOptions returns the LTV settings for this session's business model.
func (s *Session) ReportOptions() pipeline.ReportOptions {
	return pipeline.DefaultReportOptions(s.tables.RetentionCurve(s.businessModel))
}

// Report derives the figures for the selected month.
func (s *Session) Report() (model.MonthReport, error) {
	return s.ReportFor(s.month)
}

// ReportFor derives the figures for month without changing the selection.
func (s *Session) ReportFor(month int) (model.MonthReport, error) {
	return pipeline.Report(s.store, month, s.ReportOptions())
}

// Trend returns the history used for charts.
func (s *Session) Trend() ([]model.TrendPoint, error) {
	return pipeline.Trend(s.store)
}

// StageMetrics returns the benchmark table for the session's stage.
func (s *Session) StageMetrics() reference.StageMetrics {
	return s.tables.StageMetrics(s.stage)
}

// Recommendations asks the recommender about the selected month.
func (s *Session) Recommendations(ctx context.Context) ([]advisor.Recommendation, error) {
	return s.RecommendationsFor(ctx, s.month)
}

// RecommendationsFor asks the recommender about month.
func (s *Session) RecommendationsFor(ctx context.Context, month int) ([]advisor.Recommendation, error) {
	r, err := s.ReportFor(month)
	if err != nil {
		return nil, err
	}
	return s.recommender.GenerateRecommendations(ctx, r.Current, r)
}
