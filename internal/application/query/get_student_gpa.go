package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT GPA QUERY
// Returns a student's credit-weighted GPA together with the graded courses
// it was computed from. Read-through cached when a ReportCache is configured.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentGPAQuery names the student. The ID is matched verbatim.
type GetStudentGPAQuery struct {
	StudentID string

	// SkipCache forces a fresh computation.
	SkipCache bool
}

// StudentGPADTO is the transcript plus where it came from.
type StudentGPADTO struct {
	records.Transcript
	FromCache bool `json:"from_cache"`
}

// GetStudentGPAHandler handles GetStudentGPAQuery.
type GetStudentGPAHandler struct {
	store  *records.Store
	cache  records.ReportCache // optional
	ttl    time.Duration
	logger *slog.Logger
}

// NewGetStudentGPAHandler creates a new handler. cache may be nil.
func NewGetStudentGPAHandler(
	store *records.Store,
	cache records.ReportCache,
	ttl time.Duration,
	logger *slog.Logger,
) *GetStudentGPAHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetStudentGPAHandler{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("handler", "get_student_gpa"),
	}
}

// Handle executes the query. Unknown students fail with a not-found error.
func (h *GetStudentGPAHandler) Handle(ctx context.Context, q GetStudentGPAQuery) (*StudentGPADTO, error) {
	if h.cache != nil && !q.SkipCache {
		cached, err := h.cache.GetTranscript(ctx, q.StudentID)
		switch {
		case err == nil && cached.Version == h.store.Version():
			return &StudentGPADTO{Transcript: *cached, FromCache: true}, nil
		case err != nil && !errors.Is(err, records.ErrReportNotCached):
			h.logger.WarnContext(ctx, "transcript cache read failed", "student_id", q.StudentID, "error", err)
		}
	}

	transcript, err := h.store.Transcript(q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_student_gpa: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.SetTranscript(ctx, transcript, h.ttl); err != nil {
			h.logger.WarnContext(ctx, "transcript cache write failed", "student_id", q.StudentID, "error", err)
		}
	}

	return &StudentGPADTO{Transcript: *transcript}, nil
}
