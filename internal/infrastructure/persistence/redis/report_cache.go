package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/retry"
)

// Key prefixes for report entries, relative to the cache namespace.
const (
	PrefixReport      = "report:"
	PrefixTranscript  = PrefixReport + "gpa:"
	PrefixCourseStats = PrefixReport + "course:"
)

// TTLReport is the default lifetime of a cached report.
const TTLReport = 10 * time.Minute

// TranscriptKey generates a cache key for a student's transcript.
func TranscriptKey(studentID string) string {
	return PrefixTranscript + studentID
}

// CourseSummaryKey generates a cache key for a course summary.
// The code is normalized so "cs101" and "CS101" share an entry.
func CourseSummaryKey(code string) string {
	return PrefixCourseStats + course.NormalizeCode(code)
}

// ReportCache implements records.ReportCache on top of Cache.
//
// Reads go through a circuit breaker: while Redis is failing every Get reports
// a miss and every Set is skipped, so callers fall back to the store.
// Invalidations bypass the breaker and are retried.
type ReportCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	retries retry.Policy
	logger  *slog.Logger
}

// NewReportCache creates a new ReportCache. A nil breaker disables tripping.
func NewReportCache(cache *Cache, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) *ReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportCache{
		cache:   cache,
		breaker: breaker,
		retries: retry.Cache(),
		logger:  logger.With("component", "report_cache"),
	}
}

var _ records.ReportCache = (*ReportCache)(nil)

// GetTranscript returns the cached transcript of a student.
func (r *ReportCache) GetTranscript(ctx context.Context, studentID string) (*records.Transcript, error) {
	var t records.Transcript
	if err := r.get(ctx, TranscriptKey(studentID), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetTranscript caches a transcript for the given TTL.
func (r *ReportCache) SetTranscript(ctx context.Context, t *records.Transcript, ttl time.Duration) error {
	if t == nil {
		return ErrCacheNilValue
	}
	return r.set(ctx, TranscriptKey(t.StudentID), t, ttl)
}

// GetCourseSummary returns the cached summary of a course.
func (r *ReportCache) GetCourseSummary(ctx context.Context, courseCode string) (*records.CourseSummary, error) {
	var s records.CourseSummary
	if err := r.get(ctx, CourseSummaryKey(courseCode), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetCourseSummary caches a course summary for the given TTL.
func (r *ReportCache) SetCourseSummary(ctx context.Context, s *records.CourseSummary, ttl time.Duration) error {
	if s == nil {
		return ErrCacheNilValue
	}
	return r.set(ctx, CourseSummaryKey(s.CourseCode), s, ttl)
}

// InvalidateStudent drops the cached transcript of one student.
func (r *ReportCache) InvalidateStudent(ctx context.Context, studentID string) error {
	return r.invalidate(ctx, func(ctx context.Context) error {
		return r.cache.Delete(ctx, TranscriptKey(studentID))
	})
}

// InvalidateCourse drops the cached summary of one course.
func (r *ReportCache) InvalidateCourse(ctx context.Context, courseCode string) error {
	return r.invalidate(ctx, func(ctx context.Context) error {
		return r.cache.Delete(ctx, CourseSummaryKey(courseCode))
	})
}

// InvalidateTranscripts drops every cached transcript.
func (r *ReportCache) InvalidateTranscripts(ctx context.Context) error {
	return r.invalidate(ctx, func(ctx context.Context) error {
		return r.cache.DeleteByPattern(ctx, PrefixTranscript+"*")
	})
}

// InvalidateCourseSummaries drops every cached course summary.
func (r *ReportCache) InvalidateCourseSummaries(ctx context.Context) error {
	return r.invalidate(ctx, func(ctx context.Context) error {
		return r.cache.DeleteByPattern(ctx, PrefixCourseStats+"*")
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (r *ReportCache) get(ctx context.Context, key string, dest interface{}) error {
	// A miss is a healthy answer; only keep it away from the breaker.
	var miss bool
	err := r.guard(ctx, func(ctx context.Context) error {
		err := r.cache.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	switch {
	case err == nil && !miss:
		return nil
	case err == nil, circuitbreaker.IsRejected(err):
		return records.ErrReportNotCached
	default:
		r.logger.Warn("report cache read failed", "key", key, "error", err)
		return fmt.Errorf("%w: %v", records.ErrReportNotCached, err)
	}
}

func (r *ReportCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	err := r.guard(ctx, func(ctx context.Context) error {
		return r.cache.Set(ctx, key, value, ttl)
	})
	if circuitbreaker.IsRejected(err) {
		return nil
	}
	return err
}

func (r *ReportCache) guard(ctx context.Context, fn func(context.Context) error) error {
	if r.breaker == nil {
		return fn(ctx)
	}
	return r.breaker.Execute(ctx, fn)
}

// invalidate retries connection-level failures; argument errors are returned
// as they are.
func (r *ReportCache) invalidate(ctx context.Context, fn func(context.Context) error) error {
	return r.retries.Do(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || errors.Is(err, ErrCacheKeyEmpty) {
			return err
		}
		return retry.Retryable(err)
	})
}
