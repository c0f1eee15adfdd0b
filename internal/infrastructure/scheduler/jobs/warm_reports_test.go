package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/redis"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReportCache(t *testing.T) *redis.ReportCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewReportCache(redis.NewCacheFromClient(client, "test:"), nil, discardLogger())
}

func seededStore(t *testing.T) *records.Store {
	t.Helper()
	store := records.NewStore()
	require.NoError(t, store.AddStudent(student.MustNew("S001", "Alice", "alice@example.com")))
	require.NoError(t, store.AddStudent(student.MustNew("S002", "Bob", "bob@example.com")))
	require.NoError(t, store.AddCourse(course.MustNew("CS101", "Intro", 3)))
	require.NoError(t, store.AddCourse(course.MustNew("MATH101", "Calc", 4)))
	_, err := store.RecordGrade("S001", "CS101", 95)
	require.NoError(t, err)
	_, err = store.RecordGrade("S001", "MATH101", 85)
	require.NoError(t, err)
	return store
}

func TestWarmReportsJob_FillsCache(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	cache := newReportCache(t)
	job := NewWarmReportsJob(store, cache, time.Minute, discardLogger())

	require.NoError(t, job.Run(ctx))

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Transcripts)
	assert.Equal(t, 2, stats.Summaries)
	assert.False(t, stats.Skipped)

	tr, err := cache.GetTranscript(ctx, "S001")
	require.NoError(t, err)
	assert.InDelta(t, 24.0/7.0, tr.GPA, 1e-9)
	assert.Equal(t, store.Version(), tr.Version)

	tr, err = cache.GetTranscript(ctx, "S002")
	require.NoError(t, err)
	assert.Zero(t, tr.GPA)

	summary, err := cache.GetCourseSummary(ctx, "cs101")
	require.NoError(t, err)
	assert.InDelta(t, 95.0, summary.Average, 1e-9)
}

func TestWarmReportsJob_SkipsUnchangedStore(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	cache := newReportCache(t)
	job := NewWarmReportsJob(store, cache, time.Minute, discardLogger())

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))
	assert.True(t, job.LastStats().Skipped)

	_, err := store.RecordGrade("S002", "CS101", 70)
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))
	assert.False(t, job.LastStats().Skipped)

	summary, err := cache.GetCourseSummary(ctx, "CS101")
	require.NoError(t, err)
	assert.InDelta(t, 82.5, summary.Average, 1e-9)
	assert.Equal(t, 2, summary.GradeCount)
}

func TestWarmReportsJob_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewWarmReportsJob(seededStore(t), newReportCache(t), time.Minute, discardLogger())
	err := job.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, job.LastStats())
}
