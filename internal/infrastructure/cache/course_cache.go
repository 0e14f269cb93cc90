// Package cache implements the in-memory read-model cache for course
// projections. It is the only shared mutable structure that is not a store:
// entries are independent, so a sharded per-key lock is enough - no global
// lock across courses.
package cache

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/pkg/clock"
)

// DefaultTTL is how long a cached course projection stays valid.
const DefaultTTL = 30 * time.Minute

// shardCount must be a power of two.
const shardCount = 16

// CourseInfoCache is an in-memory course.InfoCache with TTL and explicit
// invalidation. The clock is injected so expiry is testable without sleeps.
type CourseInfoCache struct {
	shards [shardCount]*cacheShard
	ttl    time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	info      *course.Info
	expiresAt time.Time
}

// CourseInfoCacheConfig contains configuration for the cache.
type CourseInfoCacheConfig struct {
	// TTL for entries; DefaultTTL when zero.
	TTL time.Duration

	// Clock is the time source; wall clock when nil.
	Clock clock.Clock

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewCourseInfoCache creates a new in-memory course cache.
func NewCourseInfoCache(config CourseInfoCacheConfig) *CourseInfoCache {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Clock == nil {
		config.Clock = clock.NewSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &CourseInfoCache{
		ttl:    config.TTL,
		clock:  config.Clock,
		logger: config.Logger,
	}
	for i := range c.shards {
		c.shards[i] = &cacheShard{entries: make(map[string]cacheEntry)}
	}
	return c
}

func (c *CourseInfoCache) shardFor(courseID string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(courseID))
	return c.shards[h.Sum32()&(shardCount-1)]
}

// Get returns the cached projection or course.ErrCacheMiss.
// Expired entries count as misses and are removed lazily.
func (c *CourseInfoCache) Get(_ context.Context, courseID string) (*course.Info, error) {
	shard := c.shardFor(courseID)
	now := c.clock.Now()

	shard.mu.RLock()
	entry, ok := shard.entries[courseID]
	shard.mu.RUnlock()

	if !ok {
		return nil, course.ErrCacheMiss
	}
	if now.After(entry.expiresAt) {
		shard.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := shard.entries[courseID]; still && now.After(cur.expiresAt) {
			delete(shard.entries, courseID)
		}
		shard.mu.Unlock()
		return nil, course.ErrCacheMiss
	}

	clone := *entry.info
	return &clone, nil
}

// Set stores a projection with the configured TTL.
func (c *CourseInfoCache) Set(_ context.Context, info *course.Info) error {
	if info == nil || info.ID == "" {
		return course.ErrCourseNotFound
	}

	shard := c.shardFor(info.ID)
	clone := *info
	clone.CachedAt = c.clock.Now()

	shard.mu.Lock()
	shard.entries[info.ID] = cacheEntry{
		info:      &clone,
		expiresAt: clone.CachedAt.Add(c.ttl),
	}
	shard.mu.Unlock()

	return nil
}

// Invalidate evicts a single course immediately.
func (c *CourseInfoCache) Invalidate(_ context.Context, courseID string) error {
	shard := c.shardFor(courseID)

	shard.mu.Lock()
	delete(shard.entries, courseID)
	shard.mu.Unlock()

	c.logger.Debug("evicted course from cache", "course_id", courseID)
	return nil
}

// Len returns the number of live entries, expired ones included.
func (c *CourseInfoCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHED QUERY
// ══════════════════════════════════════════════════════════════════════════════

// CachedQuery wraps a course.Query with the cache: reads hit the cache first
// and fall back to the owning store's query handler on a miss, back-filling
// the cache with the result.
type CachedQuery struct {
	cache  course.InfoCache
	query  course.Query
	logger *slog.Logger
}

// NewCachedQuery creates a cache-through course query.
func NewCachedQuery(cache course.InfoCache, query course.Query, logger *slog.Logger) *CachedQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedQuery{cache: cache, query: query, logger: logger}
}

// GetCourse returns the projection, from cache when possible.
func (q *CachedQuery) GetCourse(ctx context.Context, courseID string) (*course.Info, error) {
	if info, err := q.cache.Get(ctx, courseID); err == nil {
		return info, nil
	}

	info, err := q.query.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := q.cache.Set(ctx, info); err != nil {
		q.logger.Warn("failed to back-fill course cache", "course_id", courseID, "error", err)
	}
	return info, nil
}

// Exists reports course existence, from cache when possible.
func (q *CachedQuery) Exists(ctx context.Context, courseID string) (bool, error) {
	if _, err := q.cache.Get(ctx, courseID); err == nil {
		return true, nil
	}
	return q.query.Exists(ctx, courseID)
}

// GetName returns the course name, from cache when possible.
func (q *CachedQuery) GetName(ctx context.Context, courseID string) (string, error) {
	if info, err := q.cache.Get(ctx, courseID); err == nil {
		return info.Name, nil
	}
	return q.query.GetName(ctx, courseID)
}

// GetLessonIds always asks the owning store: the lesson set drives course
// completion, and a stale set could complete an enrollment too early.
func (q *CachedQuery) GetLessonIds(ctx context.Context, courseID string) ([]string, error) {
	return q.query.GetLessonIds(ctx, courseID)
}
