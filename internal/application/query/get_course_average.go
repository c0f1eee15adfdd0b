package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
)

// GetCourseAverageQuery names the course. The code is normalized.
type GetCourseAverageQuery struct {
	CourseCode string
	SkipCache  bool
}

// CourseAverageDTO is the course summary plus where it came from.
type CourseAverageDTO struct {
	records.CourseSummary
	FromCache bool `json:"from_cache"`
}

// GetCourseAverageHandler returns the mean raw score of a course.
type GetCourseAverageHandler struct {
	store  *records.Store
	cache  records.ReportCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewGetCourseAverageHandler creates a new handler. cache may be nil.
func NewGetCourseAverageHandler(
	store *records.Store,
	cache records.ReportCache,
	ttl time.Duration,
	logger *slog.Logger,
) *GetCourseAverageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetCourseAverageHandler{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("handler", "get_course_average"),
	}
}

// Handle executes the query. Unknown courses fail with a not-found error.
func (h *GetCourseAverageHandler) Handle(ctx context.Context, q GetCourseAverageQuery) (*CourseAverageDTO, error) {
	if h.cache != nil && !q.SkipCache {
		cached, err := h.cache.GetCourseSummary(ctx, q.CourseCode)
		switch {
		case err == nil && cached.Version == h.store.Version():
			return &CourseAverageDTO{CourseSummary: *cached, FromCache: true}, nil
		case err != nil && !errors.Is(err, records.ErrReportNotCached):
			h.logger.WarnContext(ctx, "course summary cache read failed", "course_code", q.CourseCode, "error", err)
		}
	}

	summary, err := h.store.CourseSummary(q.CourseCode)
	if err != nil {
		return nil, fmt.Errorf("get_course_average: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.SetCourseSummary(ctx, summary, h.ttl); err != nil {
			h.logger.WarnContext(ctx, "course summary cache write failed", "course_code", summary.CourseCode, "error", err)
		}
	}

	return &CourseAverageDTO{CourseSummary: *summary}, nil
}
