package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/model"
)

func sampleReport() (model.Inputs, model.MonthReport) {
	in := model.DefaultInputs()
	return in, model.MonthReport{
		Month:        1,
		Current:      in,
		BurnRate:     decimal.NewFromInt(550_000),
		RunwayMonths: 3.6363,
		RunwayStatus: model.RunwayCritical,
	}
}

func chatServer(t *testing.T, status int, content string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer real-key-123", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 2)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDemo_InterpolatesRunway(t *testing.T) {
	in, r := sampleReport()
	recs, err := NewDemo(nil).GenerateRecommendations(context.Background(), in, r)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 0.9, recs[0].Priority)
	assert.Contains(t, recs[1].Description, "3.6 months")
	assert.NotEmpty(t, recs[1].Actions)
}

func TestIsPlaceholderKey(t *testing.T) {
	for _, k := range []string{"", "  ", "your_api_key_here", "YOUR_KEY", "<api-key>", "changeme"} {
		assert.True(t, IsPlaceholderKey(k), "%q", k)
	}
	for _, k := range []string{"real-key-123", "MjAxOS1hYmMtZGVm"} {
		assert.False(t, IsPlaceholderKey(k), "%q", k)
	}
}

func TestNew_PicksVariant(t *testing.T) {
	assert.False(t, IsLive(New(Options{})))
	assert.False(t, IsLive(New(Options{APIKey: "your_api_key_here"})))
	assert.True(t, IsLive(New(Options{APIKey: "real-key-123"})))
}

func TestLive_ParsesReplyAndCaches(t *testing.T) {
	var hits atomic.Int32
	reply := "Here you go:\n```json\n[{\"title\":\"Cut burn\",\"description\":\"Runway is short\",\"priority\":1.4,\"actions\":[\"Pause paid ads\"]}]\n```"
	srv := chatServer(t, http.StatusOK, reply, &hits)

	rec := New(Options{
		APIKey: "real-key-123",
		Client: ClientOptions{BaseURL: srv.URL},
		Cache:  NewMemoryCache(),
		Logger: quietLogger(),
	})
	in, r := sampleReport()

	recs, err := rec.GenerateRecommendations(context.Background(), in, r)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cut burn", recs[0].Title)
	assert.Equal(t, 1.0, recs[0].Priority, "priority is clamped to [0,1]")

	again, err := rec.GenerateRecommendations(context.Background(), in, r)
	require.NoError(t, err)
	assert.Equal(t, recs, again)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from cache")
}

func TestLive_FallsBackOnError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		var hits atomic.Int32
		srv := chatServer(t, status, "", &hits)

		rec := New(Options{APIKey: "real-key-123", Client: ClientOptions{BaseURL: srv.URL}, Logger: quietLogger()})
		in, r := sampleReport()

		recs, err := rec.GenerateRecommendations(context.Background(), in, r)
		require.NoError(t, err, "status %d", status)
		require.Len(t, recs, 2)
		assert.Equal(t, "Focus on the first customers", recs[0].Title)
		assert.Equal(t, int32(1), hits.Load())
	}
}

func TestLive_FallsBackOnGarbageReply(t *testing.T) {
	var hits atomic.Int32
	srv := chatServer(t, http.StatusOK, "I cannot help with that.", &hits)

	rec := New(Options{APIKey: "real-key-123", Client: ClientOptions{BaseURL: srv.URL}, Logger: quietLogger()})
	in, r := sampleReport()
	recs, err := rec.GenerateRecommendations(context.Background(), in, r)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestClient_Sentinels(t *testing.T) {
	var hits atomic.Int32
	srv := chatServer(t, http.StatusForbidden, "", &hits)
	c := NewClient("real-key-123", ClientOptions{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "p")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	rl := chatServer(t, http.StatusTooManyRequests, "", &hits)
	c = NewClient("real-key-123", ClientOptions{BaseURL: rl.URL})
	_, err = c.Complete(context.Background(), "s", "p")
	assert.True(t, errors.Is(err, ErrRateLimited))

	assert.Nil(t, NewClient("", ClientOptions{}))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient("real-key-123", ClientOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Complete(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCacheKey(t *testing.T) {
	in, r := sampleReport()
	k1 := CacheKey(in, r)
	assert.Equal(t, k1, CacheKey(in, r))

	in.CurrentCustomers++
	assert.NotEqual(t, k1, CacheKey(in, r))
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("UNITECON_TEST_REDIS")
	if addr == "" {
		t.Skip("UNITECON_TEST_REDIS not set")
	}
	c := NewRedisCache(addr)
	defer func() { _ = c.Close() }()
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "unitecon:test", "v", time.Minute))
	v, ok := c.Get(ctx, "unitecon:test")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
