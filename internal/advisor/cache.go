package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Cache stores serialized advisor responses.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheKey hashes everything the live advisor sees, so identical numbers
// reuse an earlier answer.
func CacheKey(in model.Inputs, r model.MonthReport) string {
	h := xxhash.New()
	_, _ = h.WriteString(in.MarketingBudget.String())
	_, _ = h.WriteString("|" + in.CashBalance.String())
	_, _ = h.WriteString("|" + in.SubscriptionPrice.String())
	_, _ = h.WriteString("|" + strconv.Itoa(in.CurrentCustomers))
	_, _ = h.WriteString("|" + in.CurrentMRR.String())
	_, _ = h.WriteString("|" + in.TargetCAC.String())
	_, _ = h.WriteString("|" + strconv.Itoa(in.TeamSize))
	_, _ = h.WriteString("|" + strconv.FormatFloat(in.ExpectedChurnRate, 'g', -1, 64))
	_, _ = h.WriteString("|" + strconv.FormatFloat(r.RunwayMonths, 'f', 2, 64))
	_, _ = h.WriteString("|" + string(r.RunwayStatus))
	return "unitecon:advice:" + strconv.FormatUint(h.Sum64(), 16)
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the value for key unless it has expired.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.data, key)
		return "", false
	}
	return e.value, true
}

// Set stores value for ttl.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily to the redis server at addr.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping checks the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the value for key. Redis errors count as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value with a redis expiry of ttl.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func encodeRecommendations(recs []Recommendation) (string, error) {
	b, err := json.Marshal(recs)
	return string(b), err
}

func decodeRecommendations(s string) ([]Recommendation, error) {
	var recs []Recommendation
	if err := json.Unmarshal([]byte(s), &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("no recommendations")
	}
	return recs, nil
}
