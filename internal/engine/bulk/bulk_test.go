package bulk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mailvetter/internal/engine/cache"
	"mailvetter/internal/engine/coordinator"
	"mailvetter/internal/engine/models"
)

func newTestScheduler() *Scheduler {
	co := coordinator.New(nil, nil, nil, nil, nil, models.DefaultOptions())
	s := New(co, cache.New())
	s.ChunkSize = 2
	s.Concurrency = 2
	s.ChunkPause = time.Millisecond
	return s
}

func TestRun_DeduplicatesCaseInsensitively(t *testing.T) {
	s := newTestScheduler()
	results, summary := s.Run(context.Background(), []string{
		"Jane@Example.com", "jane@example.com", "not-an-email",
	})

	assert.Equal(t, 3, summary.TotalSubmitted)
	assert.Equal(t, 1, summary.Deduplicated)
	assert.Len(t, results, 2)
}

func TestRun_IsolatesPerItemFailure(t *testing.T) {
	s := newTestScheduler()
	results, summary := s.Run(context.Background(), []string{"", "not-an-email", "also-bad"})

	assert.Equal(t, 3, summary.Processed)
	for _, r := range results {
		assert.NotNil(t, r)
		assert.False(t, r.SyntaxValid)
	}
}

func TestRun_ChunksAcrossMultipleBatches(t *testing.T) {
	s := newTestScheduler()
	inputs := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	results, summary := s.Run(context.Background(), inputs)

	assert.Len(t, results, 5)
	assert.Equal(t, 5, summary.Processed)
}

func TestRunWithOptions_UsesRequestBatchSize(t *testing.T) {
	s := newTestScheduler()
	opts := models.DefaultOptions()
	opts.BatchSize = 1
	inputs := []string{"a@x.com", "b@x.com", "c@x.com"}

	results, summary := s.RunWithOptions(context.Background(), inputs, opts)

	assert.Len(t, results, 3)
	assert.Equal(t, 3, summary.Processed)
}

func TestRun_SummaryCountsDisposableAndTypos(t *testing.T) {
	s := newTestScheduler()
	results, summary := s.Run(context.Background(), []string{"not-an-email", "also-bad"})

	assert.Len(t, results, 2)
	assert.Equal(t, 0, summary.DisposableCount)
	assert.Equal(t, 0, summary.TypoCount)
	assert.NotEmpty(t, summary.TopReasons)
	for _, rc := range summary.TopReasons {
		assert.NotEmpty(t, rc.Reason)
		assert.Greater(t, rc.Count, 0)
	}
}

func TestRun_RecommendsWhenMostlyInvalid(t *testing.T) {
	s := newTestScheduler()
	_, summary := s.Run(context.Background(), []string{"bad-1", "bad-2", "bad-3"})

	assert.Equal(t, 3, summary.Invalid)
	assert.NotEmpty(t, summary.Recommendations)
}

func TestValidateIsolated_ServesFromBulkCache(t *testing.T) {
	s := newTestScheduler()
	cached := &models.ValidationResult{Input: "jane@example.com", Status: models.StatusValid, Score: 99}
	s.Cache.Set(cache.NamespaceBulk, "jane@example.com", cached, cache.TTLBulk)

	results, _ := s.Run(context.Background(), []string{"jane@example.com"})

	assert.Same(t, cached, results[0])
}
