package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/session"
	"github.com/theirongolddev/unitecon/internal/store"
)

func newService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(store.NewMemoryStore(store.Options{Logger: quiet}), session.Options{Logger: quiet})
	svc := New(sess, Config{Logger: quiet, EventsBuffer: 10})
	ts := httptest.NewServer(svc.Handler())
	t.Cleanup(ts.Close)
	return svc, ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/snapshots", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts := newService(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestRecordAndReport(t *testing.T) {
	_, ts := newService(t)

	resp := post(t, ts, `{"month":1,"current_customers":10,"current_mrr":50000,"cash_balance":5500000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap model.MonthlySnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1, snap.Month)
	assert.Equal(t, 3, snap.TeamSize, "missing fields come from the defaults")

	resp = post(t, ts, `{"month":2,"current_customers":15,"current_mrr":"75_000"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report model.MonthReport
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/report/2", &report))
	require.NotNil(t, report.Comparison)
	assert.Equal(t, 5, report.Comparison.CustomerDelta)
	assert.Equal(t, 50.0, report.Comparison.MRR.Percent)
	assert.Equal(t, 10.0, report.RunwayMonths)
	assert.Equal(t, model.RunwayCaution, report.RunwayStatus)

	var all []model.MonthlySnapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/snapshots", &all))
	assert.Len(t, all, 2)
}

func TestErrorMapping(t *testing.T) {
	_, ts := newService(t)
	require.Equal(t, http.StatusCreated, post(t, ts, `{"month":1}`).StatusCode)

	var body errorBody
	resp := post(t, ts, `{"month":1,"current_customers":3}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Month)

	resp = post(t, ts, `{"month":2,"team_size":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "team_size", body.Field)

	assert.Equal(t, http.StatusBadRequest, post(t, ts, `{"month":2,"bogus":1}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, ts, `{"month":-4}`).StatusCode)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/v1/report/7", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/v1/snapshots/7", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/v1/report/zero", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/v1/reference/stages/series_b", nil))

	var all []model.MonthlySnapshot
	getJSON(t, ts, "/v1/snapshots", &all)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].CurrentCustomers, "duplicate left the first snapshot alone")
}

func TestPrefill(t *testing.T) {
	_, ts := newService(t)

	var pf model.Prefill
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/prefill/1", &pf))
	assert.Equal(t, model.CarryDefaults, pf.Source)

	post(t, ts, `{"month":1,"current_customers":8}`)
	getJSON(t, ts, "/v1/prefill/2", &pf)
	assert.Equal(t, model.CarryPrevious, pf.Source)
	assert.Equal(t, 8, pf.Inputs.CurrentCustomers)

	getJSON(t, ts, "/v1/prefill/4", &pf)
	assert.Equal(t, model.CarryDefaults, pf.Source, "carry-forward only looks one month back")
}

func TestReferenceAndRecommendations(t *testing.T) {
	_, ts := newService(t)

	var metrics reference.StageMetrics
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/reference/stages/seed", &metrics))
	assert.Equal(t, reference.StageSeed, metrics.Stage)

	var roadmap []reference.QuarterPlan
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/reference/roadmap", &roadmap))
	assert.Len(t, roadmap, 4)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/v1/recommendations/1", nil))
	post(t, ts, `{"month":1}`)

	var recs []advisor.Recommendation
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/recommendations/1", &recs))
	assert.Len(t, recs, 2)
}

func TestStatusAndTrend(t *testing.T) {
	_, ts := newService(t)
	post(t, ts, `{"month":1}`)
	post(t, ts, `{"month":3}`)

	var st Status
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/status", &st))
	assert.Equal(t, 2, st.Summary.Months)
	assert.Equal(t, []int{2}, st.Summary.Gaps)
	assert.Equal(t, "demo", st.Advisor)
	assert.Equal(t, 3, st.SelectedMonth)
	assert.Equal(t, 2, st.EventCount)

	var trend trendResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/v1/trend", &trend))
	assert.Len(t, trend.Points, 2)
}

func TestPublishEventRingBuffer(t *testing.T) {
	svc, _ := newService(t)
	svc.cfg.EventsBuffer = 2

	svc.publishEvent(Event{Month: 1})
	svc.publishEvent(Event{Month: 2})
	svc.publishEvent(Event{Month: 3})

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if len(svc.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(svc.events))
	}
	if svc.events[0].ID != 2 || svc.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", svc.events[0].ID, svc.events[1].ID)
	}
}

func TestStream(t *testing.T) {
	svc, ts := newService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool {
		svc.mu.RLock()
		defer svc.mu.RUnlock()
		return len(svc.subs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	post(t, ts, `{"month":1}`)

	var event, data string
	for data == "" {
		line, err = rd.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	assert.Equal(t, eventRecorded, event)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, 1, ev.Month)
	require.NotNil(t, ev.Report)
	assert.Equal(t, model.RunwayCritical, ev.Report.RunwayStatus)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newService(t)
	post(t, ts, `{"month":1}`)
	post(t, ts, `{"month":1}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	assert.Contains(t, text, "unitecon_snapshots_recorded_total 1")
	assert.Contains(t, text, "unitecon_snapshots_duplicate_total 1")
	assert.Contains(t, text, `unitecon_http_requests_total{code="409",method="POST",route="POST /v1/snapshots"} 1`)
	assert.Contains(t, text, "unitecon_runway_months")
}

func TestRunShutsDownWithOpenStream(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(store.NewMemoryStore(store.Options{Logger: quiet}), session.Options{Logger: quiet})
	svc := New(sess, Config{Addr: addr, Logger: quiet})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + addr + "/v1/stream")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return while a stream was open")
	}
}

func TestWriteJSONUnencodableIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"churn": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}
