package session

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/store"
)

func newSession() *Session {
	return New(store.NewMemoryStore(store.Options{}), Options{})
}

func TestNavigation(t *testing.T) {
	s := newSession()
	assert.Equal(t, 1, s.Month())
	assert.Equal(t, 1, s.Prev(), "never below month 1")
	assert.Equal(t, 2, s.Next())
	assert.Equal(t, 3, s.Next())
	assert.Equal(t, 2, s.Prev())

	require.NoError(t, s.Select(12))
	assert.Equal(t, 12, s.Month())

	err := s.Select(0)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Equal(t, 12, s.Month(), "failed select keeps the month")
}

func TestDraftEditSubmit(t *testing.T) {
	s := newSession()

	pf, edited, err := s.Draft()
	require.NoError(t, err)
	assert.False(t, edited)
	assert.Equal(t, model.CarryDefaults, pf.Source)

	in := pf.Inputs
	in.CurrentCustomers = 4
	in.CurrentMRR = decimal.NewFromInt(20_000)
	s.Edit(in)

	pf, edited, err = s.Draft()
	require.NoError(t, err)
	assert.True(t, edited)
	assert.Equal(t, model.CarryDraft, pf.Source)
	assert.Equal(t, 4, pf.Inputs.CurrentCustomers)

	snap, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Month)
	assert.Equal(t, 4, snap.CurrentCustomers)

	_, edited, err = s.Draft()
	require.NoError(t, err)
	assert.False(t, edited, "submit clears the draft")

	s.Next()
	pf, _, err = s.Draft()
	require.NoError(t, err)
	assert.Equal(t, model.CarryPrevious, pf.Source)
	assert.Equal(t, 4, pf.Inputs.CurrentCustomers)
}

func TestSubmit_DuplicateKeepsDraft(t *testing.T) {
	s := newSession()
	_, err := s.Submit()
	require.NoError(t, err)

	in := model.DefaultInputs()
	in.CurrentCustomers = 50
	s.Edit(in)

	_, err = s.Submit()
	require.Error(t, err)
	var dup *model.DuplicateMonthError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.Month)

	pf, edited, err := s.Draft()
	require.NoError(t, err)
	assert.True(t, edited)
	assert.Equal(t, 50, pf.Inputs.CurrentCustomers)

	snap, ok, err := s.Store().Snapshot(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, snap.CurrentCustomers, "first snapshot untouched")
}

func TestSubmit_Invalid(t *testing.T) {
	s := newSession()
	in := model.DefaultInputs()
	in.TeamSize = -2
	s.Edit(in)

	_, err := s.Submit()
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	recorded, err := s.Recorded()
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestSubmit_NonFiniteChurn(t *testing.T) {
	for _, churn := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		s := newSession()
		in := model.DefaultInputs()
		in.ExpectedChurnRate = churn

		_, err := s.SubmitInputs(in)
		var inv *model.InvalidInputError
		require.True(t, errors.As(err, &inv), "churn %v: err = %v", churn, err)
		assert.Equal(t, "expected_churn_rate", inv.Field)

		recorded, err := s.Recorded()
		require.NoError(t, err)
		assert.False(t, recorded, "churn %v recorded", churn)
	}
}

func TestReportAndTrend(t *testing.T) {
	s := newSession()
	_, err := s.Report()
	assert.ErrorIs(t, err, model.ErrMonthNotRecorded)

	in := model.DefaultInputs()
	in.CurrentCustomers = 2
	_, err = s.SubmitInputs(in)
	require.NoError(t, err)

	r, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, model.RunwayCritical, r.RunwayStatus)
	assert.True(t, r.EstimatedLTV.Equal(decimal.NewFromInt(6_475)))

	points, err := s.Trend()
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestBusinessModelScalesLTV(t *testing.T) {
	s := New(store.NewMemoryStore(store.Options{}), Options{BusinessModel: reference.BusinessModelB2C})
	_, err := s.SubmitInputs(model.DefaultInputs())
	require.NoError(t, err)

	r, err := s.Report()
	require.NoError(t, err)
	assert.True(t, r.EstimatedLTV.LessThan(decimal.NewFromInt(6_475)))
}

func TestStageMetrics(t *testing.T) {
	s := newSession()
	assert.Equal(t, reference.StagePreSeed, s.StageMetrics().Stage)
	s.SetStage(reference.StageScale)
	assert.Equal(t, reference.StageScale, s.StageMetrics().Stage)
}

type stubRecommender struct {
	calls int
	last  model.MonthReport
}

func (s *stubRecommender) GenerateRecommendations(_ context.Context, _ model.Inputs, r model.MonthReport) ([]advisor.Recommendation, error) {
	s.calls++
	s.last = r
	return []advisor.Recommendation{{Title: "stub"}}, nil
}

func TestRecommendations(t *testing.T) {
	rec := &stubRecommender{}
	s := New(store.NewMemoryStore(store.Options{}), Options{Recommender: rec})

	_, err := s.Recommendations(context.Background())
	assert.ErrorIs(t, err, model.ErrMonthNotRecorded)
	assert.Zero(t, rec.calls)

	_, err = s.SubmitInputs(model.DefaultInputs())
	require.NoError(t, err)

	recs, err := s.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stub", recs[0].Title)
	assert.Equal(t, 1, rec.last.Month)
}

func TestDefaultRecommenderIsDemo(t *testing.T) {
	s := newSession()
	_, err := s.SubmitInputs(model.DefaultInputs())
	require.NoError(t, err)

	recs, err := s.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.False(t, advisor.IsLive(s.Recommender()))
}
