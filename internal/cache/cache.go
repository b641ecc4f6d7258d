// Package cache stores candidate search results in Redis.
//
// Keys embed a generation number; Invalidate bumps the generation so every
// previously cached result becomes unreachable and expires on its TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-screener/internal/profiles"
)

const (
	defaultPrefix = "resume_screener:search"
	DefaultTTL    = 5 * time.Minute
)

// SearchCache implements profiles.ResultCache on top of a Redis client.
type SearchCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a SearchCache. A non-positive ttl falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{client: client, prefix: defaultPrefix, ttl: ttl}
}

// Connect parses a redis:// URL, dials and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *SearchCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *SearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *SearchCache) resultKey(gen int64, query []string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, strings.Join(query, ","))
}

// Get returns cached matches for the normalized query along with the
// generation it looked in. A miss still reports the generation so the caller
// can Put under it.
func (c *SearchCache) Get(ctx context.Context, query []string) ([]profiles.CandidateMatch, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, c.resultKey(gen, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to read cached search: %w", err)
	}

	var matches []profiles.CandidateMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, gen, false, fmt.Errorf("failed to decode cached search: %w", err)
	}
	if matches == nil {
		matches = []profiles.CandidateMatch{}
	}
	return matches, gen, true, nil
}

// Put stores matches under gen, the generation returned by the Get that
// preceded the scan. If Invalidate ran in between, the entry lands under a
// retired generation and is never read.
func (c *SearchCache) Put(ctx context.Context, gen int64, query []string, matches []profiles.CandidateMatch) error {
	raw, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to encode search results: %w", err)
	}
	if err := c.client.Set(ctx, c.resultKey(gen, query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search: %w", err)
	}
	return nil
}

// Invalidate drops every cached result by advancing the generation.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}
	return nil
}

var _ profiles.ResultCache = (*SearchCache)(nil)
