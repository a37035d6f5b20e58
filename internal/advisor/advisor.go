// Package advisor produces recommendations for a month's numbers, either
// from a fixed demo set or from a live language-model service.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
)

// Recommendation is one piece of advice.
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    float64  `json:"priority"`
	Actions     []string `json:"actions"`
}

// Recommender turns a month's inputs and derived figures into advice.
type Recommender interface {
	GenerateRecommendations(ctx context.Context, in model.Inputs, r model.MonthReport) ([]Recommendation, error)
}

// Demo returns the canned recommendations from the reference tables.
type Demo struct {
	tables *reference.Tables
}

// NewDemo returns a Demo over tables, or the default tables when nil.
func NewDemo(tables *reference.Tables) *Demo {
	if tables == nil {
		tables = reference.Default()
	}
	return &Demo{tables: tables}
}

// GenerateRecommendations returns the canned items with the runway filled in.
func (d *Demo) GenerateRecommendations(_ context.Context, _ model.Inputs, r model.MonthReport) ([]Recommendation, error) {
	canned := d.tables.Recommendations()
	out := make([]Recommendation, 0, len(canned))
	for _, c := range canned {
		desc := c.Description
		if strings.Contains(desc, "%") {
			desc = fmt.Sprintf(desc, r.RunwayMonths)
		}
		out = append(out, Recommendation{
			Title:       c.Title,
			Description: desc,
			Priority:    c.Priority,
			Actions:     c.Actions,
		})
	}
	return out, nil
}

// Live asks the chat-completions service and falls back to another
// Recommender on any failure, so callers always get advice.
type Live struct {
	client   *Client
	cache    Cache
	ttl      time.Duration
	fallback Recommender
	log      *slog.Logger
}

// GenerateRecommendations asks the service, serving repeats from the cache
// and falling back to the demo set when the call fails.
func (l *Live) GenerateRecommendations(ctx context.Context, in model.Inputs, r model.MonthReport) ([]Recommendation, error) {
	key := CacheKey(in, r)
	if l.cache != nil {
		if cached, ok := l.cache.Get(ctx, key); ok {
			if recs, err := decodeRecommendations(cached); err == nil {
				return recs, nil
			}
		}
	}

	reply, err := l.client.Complete(ctx, systemPrompt, buildPrompt(in, r))
	if err == nil {
		var recs []Recommendation
		recs, err = parseReply(reply)
		if err == nil {
			if l.cache != nil {
				if enc, encErr := encodeRecommendations(recs); encErr == nil {
					if setErr := l.cache.Set(ctx, key, enc, l.ttl); setErr != nil {
						l.log.Debug("advisor cache write failed", "err", setErr)
					}
				}
			}
			return recs, nil
		}
	}

	l.log.Warn("live advisor unavailable, using demo recommendations", "err", err)
	return l.fallback.GenerateRecommendations(ctx, in, r)
}

// Options configures New.
type Options struct {
	APIKey string
	Client ClientOptions
	Cache  Cache
	TTL    time.Duration
	Tables *reference.Tables
	Logger *slog.Logger
}

// New picks the live recommender when the key looks real and the demo one
// otherwise.
func New(opts Options) Recommender {
	demo := NewDemo(opts.Tables)
	client := NewClient(opts.APIKey, opts.Client)
	if client == nil {
		return demo
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Live{client: client, cache: opts.Cache, ttl: ttl, fallback: demo, log: log}
}

// IsLive reports whether rec calls the external service.
func IsLive(rec Recommender) bool {
	_, ok := rec.(*Live)
	return ok
}
