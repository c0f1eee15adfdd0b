// Package jobs contains the scheduled jobs of the gradebook server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WARM REPORTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// WarmReportsJob recomputes every transcript and course summary and writes
// them to the report cache, so the first read after a write burst is a hit.
// Nothing is written when the store has not changed since the last run.
type WarmReportsJob struct {
	store  *records.Store
	cache  records.ReportCache
	ttl    time.Duration
	logger *slog.Logger

	warmedVersion atomic.Uint64
	warmedOnce    atomic.Bool
	lastStats     atomic.Pointer[WarmStats]
}

// WarmStats describes one run.
type WarmStats struct {
	Version     uint64
	Transcripts int
	Summaries   int
	Skipped     bool
	Duration    time.Duration
}

// NewWarmReportsJob creates a new WarmReportsJob.
func NewWarmReportsJob(store *records.Store, cache records.ReportCache, ttl time.Duration, logger *slog.Logger) *WarmReportsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &WarmReportsJob{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("job", "warm_reports"),
	}
}

// Name returns the job name.
func (j *WarmReportsJob) Name() string {
	return "warm_reports"
}

// Description returns a human-readable description.
func (j *WarmReportsJob) Description() string {
	return "Recomputes GPA transcripts and course averages into the report cache"
}

// Run executes the job.
func (j *WarmReportsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	version := j.store.Version()

	if j.warmedOnce.Load() && j.warmedVersion.Load() == version {
		j.lastStats.Store(&WarmStats{Version: version, Skipped: true})
		return nil
	}

	stats := &WarmStats{Version: version}

	for _, st := range j.store.Students() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := j.store.Transcript(st.ID())
		if shared.IsNotFound(err) {
			continue // removed since the listing
		}
		if err != nil {
			return fmt.Errorf("warm transcript %s: %w", st.ID(), err)
		}
		if err := j.cache.SetTranscript(ctx, t, j.ttl); err != nil {
			return fmt.Errorf("warm transcript %s: %w", st.ID(), err)
		}
		stats.Transcripts++
	}

	for _, c := range j.store.Courses() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := j.store.CourseSummary(c.Code())
		if shared.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("warm course summary %s: %w", c.Code(), err)
		}
		if err := j.cache.SetCourseSummary(ctx, s, j.ttl); err != nil {
			return fmt.Errorf("warm course summary %s: %w", c.Code(), err)
		}
		stats.Summaries++
	}

	stats.Duration = time.Since(startedAt)
	j.warmedVersion.Store(version)
	j.warmedOnce.Store(true)
	j.lastStats.Store(stats)

	j.logger.Debug("reports warmed",
		"version", version,
		"transcripts", stats.Transcripts,
		"summaries", stats.Summaries,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastStats returns the stats of the most recent run, or nil before the first.
func (j *WarmReportsJob) LastStats() *WarmStats {
	return j.lastStats.Load()
}
