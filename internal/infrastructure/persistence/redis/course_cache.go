package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE INFO CACHE
// Redis-backed course.InfoCache. Semantics match the in-process cache; the
// Redis server owns expiry instead of a local clock.
// ══════════════════════════════════════════════════════════════════════════════

// CourseInfoCache implements course.InfoCache on top of Redis.
type CourseInfoCache struct {
	cache *Cache
}

// NewCourseInfoCache creates a new CourseInfoCache.
func NewCourseInfoCache(cache *Cache) *CourseInfoCache {
	return &CourseInfoCache{cache: cache}
}

// Get returns the cached projection or course.ErrCacheMiss.
func (c *CourseInfoCache) Get(ctx context.Context, courseID string) (*course.Info, error) {
	if courseID == "" {
		return nil, course.ErrCacheMiss
	}

	var info course.Info
	err := c.cache.Get(ctx, CourseKey(courseID), &info)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, course.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis: get course %s: %w", courseID, err)
	}

	return &info, nil
}

// Set stores a projection with the standard TTL.
func (c *CourseInfoCache) Set(ctx context.Context, info *course.Info) error {
	if info == nil {
		return ErrCacheNilValue
	}

	if err := c.cache.Set(ctx, CourseKey(info.ID), info, TTLCourseInfo); err != nil {
		return fmt.Errorf("redis: set course %s: %w", info.ID, err)
	}

	return nil
}

// Invalidate evicts a single course.
func (c *CourseInfoCache) Invalidate(ctx context.Context, courseID string) error {
	if courseID == "" {
		return nil
	}

	if err := c.cache.Delete(ctx, CourseKey(courseID)); err != nil {
		return fmt.Errorf("redis: invalidate course %s: %w", courseID, err)
	}

	return nil
}
