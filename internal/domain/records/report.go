package records

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/grade"
)

// ErrReportNotCached is returned by a ReportCache on a miss.
var ErrReportNotCached = errors.New("records: report not cached")

// Transcript is a student's graded courses and the resulting GPA.
type Transcript struct {
	StudentID    string            `json:"student_id"`
	Name         string            `json:"name"`
	GPA          float64           `json:"gpa"`
	TotalCredits int               `json:"total_credits"`
	Entries      []TranscriptEntry `json:"entries"`
	Version      uint64            `json:"version"`
}

// TranscriptEntry is one graded course on a transcript.
type TranscriptEntry struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	Credits    int     `json:"credits"`
	Value      float64 `json:"value"`
	Letter     string  `json:"letter"`
	Points     float64 `json:"points"`
}

func newTranscriptEntry(g *grade.Grade) TranscriptEntry {
	return TranscriptEntry{
		CourseCode: g.CourseCode(),
		CourseName: g.Course().Name(),
		Credits:    g.Course().Credits(),
		Value:      g.Value(),
		Letter:     g.Letter().String(),
		Points:     g.Points(),
	}
}

// CourseSummary is the average raw score recorded for a course.
type CourseSummary struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name"`
	Credits    int     `json:"credits"`
	Average    float64 `json:"average"`
	GradeCount int     `json:"grade_count"`
	Version    uint64  `json:"version"`
}

// ReportCache stores computed reports so repeated reads skip the aggregation.
// Implemented in infrastructure (Redis). Implementations return
// ErrReportNotCached on a miss.
type ReportCache interface {
	// GetTranscript returns the cached transcript of a student.
	GetTranscript(ctx context.Context, studentID string) (*Transcript, error)

	// SetTranscript caches a transcript for the given TTL.
	SetTranscript(ctx context.Context, t *Transcript, ttl time.Duration) error

	// GetCourseSummary returns the cached summary of a normalized course code.
	GetCourseSummary(ctx context.Context, courseCode string) (*CourseSummary, error)

	// SetCourseSummary caches a course summary for the given TTL.
	SetCourseSummary(ctx context.Context, s *CourseSummary, ttl time.Duration) error

	// InvalidateStudent drops the cached transcript of one student.
	InvalidateStudent(ctx context.Context, studentID string) error

	// InvalidateCourse drops the cached summary of one course.
	InvalidateCourse(ctx context.Context, courseCode string) error

	// InvalidateTranscripts drops every cached transcript.
	InvalidateTranscripts(ctx context.Context) error

	// InvalidateCourseSummaries drops every cached course summary.
	InvalidateCourseSummaries(ctx context.Context) error
}
