// Package server exposes one dashboard session over a local JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/session"
	"github.com/theirongolddev/unitecon/internal/source"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Logger       *slog.Logger
}

// Event is emitted whenever a check-in is recorded.
type Event struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Month     int                    `json:"month"`
	Snapshot  *model.MonthlySnapshot `json:"snapshot,omitempty"`
	Report    *model.MonthReport     `json:"report,omitempty"`
}

const eventRecorded = "snapshot_recorded"

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time               `json:"started_at"`
	SessionID       string                  `json:"session_id"`
	SelectedMonth   int                     `json:"selected_month"`
	Stage           reference.Stage         `json:"stage"`
	BusinessModel   reference.BusinessModel `json:"business_model,omitempty"`
	Advisor         string                  `json:"advisor"`
	Summary         model.HistorySummary    `json:"summary"`
	EventCount      int                     `json:"event_count"`
	SubscriberCount int                     `json:"subscriber_count"`
}

// Service serves one session. Every session action runs under sessMu, so
// requests see the same one-action-at-a-time model as the terminal UI.
type Service struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics

	sessMu sync.Mutex
	sess   *session.Session

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event
	nextSubID   int
	subs        map[int]chan Event

	// closing ends open streams so Shutdown does not wait on them.
	closing   chan struct{}
	closeOnce sync.Once
}

// New returns a service over sess.
func New(sess *session.Session, cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		metrics:   newMetrics(),
		sess:      sess,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		closing:   make(chan struct{}),
	}
}

// Handler returns the routed API with request logging and metrics.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/snapshots", s.handleListSnapshots)
	mux.HandleFunc("POST /v1/snapshots", s.handleRecord)
	mux.HandleFunc("GET /v1/snapshots/{month}", s.handleSnapshot)
	mux.HandleFunc("GET /v1/prefill/{month}", s.handlePrefill)
	mux.HandleFunc("GET /v1/report/{month}", s.handleReport)
	mux.HandleFunc("GET /v1/trend", s.handleTrend)
	mux.HandleFunc("GET /v1/reference/stages/{stage}", s.handleStage)
	mux.HandleFunc("GET /v1/reference/roadmap", s.handleRoadmap)
	mux.HandleFunc("GET /v1/recommendations/{month}", s.handleRecommendations)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return s.instrument(mux)
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("server listening", "addr", s.cfg.Addr, "session", s.sess.ID())

	select {
	case <-ctx.Done():
		s.closeStreams()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Month int    `json:"month,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDuplicateMonth):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrMonthNotRecorded):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v before touching the response, so a value that cannot
// be encoded becomes a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "err", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"response could not be encoded"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	body := errorBody{Error: err.Error()}

	var inv *model.InvalidInputError
	var dup *model.DuplicateMonthError
	switch {
	case errors.As(err, &inv):
		body.Field = inv.Field
	case errors.As(err, &dup):
		body.Month = dup.Month
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, code, body)
}

func monthParam(r *http.Request) (int, error) {
	raw := r.PathValue("month")
	m, err := strconv.Atoi(raw)
	if err != nil || m < 1 {
		return 0, &model.InvalidInputError{Field: "month", Reason: fmt.Sprintf("%q is not a positive month", raw)}
	}
	return m, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) status() (Status, error) {
	s.sessMu.Lock()
	points, err := s.sess.Trend()
	st := Status{
		StartedAt:     s.startedAt,
		SessionID:     s.sess.ID().String(),
		SelectedMonth: s.sess.Month(),
		Stage:         s.sess.Stage(),
		BusinessModel: s.sess.BusinessModel(),
		Advisor:       "demo",
	}
	if advisor.IsLive(s.sess.Recommender()) {
		st.Advisor = "live"
	}
	s.sessMu.Unlock()
	if err != nil {
		return Status{}, err
	}
	st.Summary = pipeline.Summarize(points)

	s.mu.RLock()
	st.EventCount = len(s.events)
	st.SubscriberCount = len(s.subs)
	s.mu.RUnlock()
	return st, nil
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st, err := s.status()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleListSnapshots(w http.ResponseWriter, _ *http.Request) {
	s.sessMu.Lock()
	all, err := s.sess.Store().All()
	s.sessMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if all == nil {
		all = []model.MonthlySnapshot{}
	}
	writeJSON(w, http.StatusOK, all)
}

// handleRecord accepts a check-in in the same shape as an import file
// line. Missing fields are carried forward; a missing month means the
// session's selected month.
func (s *Service) handleRecord(w http.ResponseWriter, r *http.Request) {
	var raw source.RawCheckin
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		s.writeError(w, &model.InvalidInputError{Reason: err.Error()})
		return
	}

	snap, report, err := s.record(raw)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateMonth) {
			s.metrics.duplicates.Inc()
		}
		s.writeError(w, err)
		return
	}

	s.metrics.observeReport(report)
	s.publishEvent(Event{
		Type:      eventRecorded,
		Timestamp: snap.RecordedAt,
		Month:     snap.Month,
		Snapshot:  &snap,
		Report:    &report,
	})
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Service) record(raw source.RawCheckin) (model.MonthlySnapshot, model.MonthReport, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if raw.Month != 0 {
		if err := s.sess.Select(raw.Month); err != nil {
			return model.MonthlySnapshot{}, model.MonthReport{}, err
		}
	}
	pf, _, err := s.sess.Draft()
	if err != nil {
		return model.MonthlySnapshot{}, model.MonthReport{}, err
	}
	snap, err := s.sess.SubmitInputs(raw.Merge(pf.Inputs))
	if err != nil {
		return model.MonthlySnapshot{}, model.MonthReport{}, err
	}
	report, err := s.sess.ReportFor(snap.Month)
	if err != nil {
		return model.MonthlySnapshot{}, model.MonthReport{}, err
	}
	s.metrics.recorded.Inc()
	return snap, report, nil
}

func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessMu.Lock()
	snap, ok, err := s.sess.Store().Snapshot(month)
	s.sessMu.Unlock()
	switch {
	case err != nil:
		s.writeError(w, err)
	case !ok:
		s.writeError(w, fmt.Errorf("month %d: %w", month, model.ErrMonthNotRecorded))
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Service) handlePrefill(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessMu.Lock()
	pf, err := s.sess.Store().CarryForward(month)
	s.sessMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessMu.Lock()
	report, err := s.sess.ReportFor(month)
	s.sessMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type trendResponse struct {
	Points  []model.TrendPoint   `json:"points"`
	Summary model.HistorySummary `json:"summary"`
}

func (s *Service) handleTrend(w http.ResponseWriter, _ *http.Request) {
	s.sessMu.Lock()
	points, err := s.sess.Trend()
	s.sessMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if points == nil {
		points = []model.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, trendResponse{Points: points, Summary: pipeline.Summarize(points)})
}

func (s *Service) handleStage(w http.ResponseWriter, r *http.Request) {
	stage, err := reference.ParseStage(r.PathValue("stage"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Tables().StageMetrics(stage))
}

func (s *Service) handleRoadmap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Tables().Roadmap())
}

// handleRecommendations derives the report under the session lock and asks
// the recommender outside it, so a slow advisor call never blocks check-ins.
func (s *Service) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessMu.Lock()
	report, err := s.sess.ReportFor(month)
	rec := s.sess.Recommender()
	s.sessMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}

	recs, err := rec.GenerateRecommendations(r.Context(), report.Current, report)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Comment line so clients see the stream open before the first event.
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Registry returns the prometheus registry backing /metrics.
func (s *Service) Registry() *prometheus.Registry {
	return s.metrics.registry
}
