// Package bulk implements spec.md §4.9: the Bulk Scheduler that
// deduplicates a batch of addresses, chunks it, and runs each chunk
// through the Coordinator with bounded concurrency and inter-chunk
// pacing, isolating any single item's failure from the rest of the run.
//
// Grounded on mailvetter's internal/worker/runner.go for the
// process-one-item-in-isolation shape (every failure is logged and
// skipped rather than aborting the run) and cmd/api/upload.go for the
// CSV-to-job-list pipeline, generalized from the teacher's
// one-item-per-Redis-BLPOP loop into an in-process, bounded-concurrency
// worker pool that never leaves the caller's process.
package bulk

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mailvetter/internal/engine/cache"
	"mailvetter/internal/engine/coordinator"
	"mailvetter/internal/engine/models"
)

const (
	defaultChunkSize   = 10
	defaultConcurrency = 10
	defaultChunkPause  = 250 * time.Millisecond
)

// DomainCount is one entry of a Summary's domain breakdown.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ReasonCount is one entry of a Summary's common-reason breakdown.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Summary aggregates the outcome of one bulk run, per spec.md §4.9.
type Summary struct {
	TotalSubmitted  int
	Deduplicated    int
	Processed       int
	Valid           int
	Risky           int
	Invalid         int
	Errored         int
	DisposableCount int
	TypoCount       int
	AverageScore    float64
	TopDomains      []DomainCount
	TopReasons      []ReasonCount
	Recommendations []string
}

// tally accumulates the cross-item statistics Summary needs at the end
// of a run; it is guarded by the same mutex runChunk uses for the plain
// status counters.
type tally struct {
	domainCounts map[string]int
	reasonCounts map[string]int
	totalScore   int64
	scoredCount  int
}

// Scheduler runs batches of addresses through a Coordinator. Cache, when
// set, backs spec.md §4.9's per-address bulk cache under
// cache.NamespaceBulk with cache.TTLBulk — an address repeated across
// separate bulk runs is served from the cache instead of re-run through
// the pipeline.
type Scheduler struct {
	Coordinator *coordinator.Coordinator
	Cache       *cache.Store
	ChunkSize   int
	Concurrency int
	ChunkPause  time.Duration
}

func New(c *coordinator.Coordinator, cacheStore *cache.Store) *Scheduler {
	return &Scheduler{
		Coordinator: c,
		Cache:       cacheStore,
		ChunkSize:   defaultChunkSize,
		Concurrency: defaultConcurrency,
		ChunkPause:  defaultChunkPause,
	}
}

// Run dedups inputs case-insensitively, splits them into fixed-size
// chunks, and validates each chunk with bounded concurrency under the
// Scheduler's configured default options.
func (s *Scheduler) Run(ctx context.Context, inputs []string) ([]*models.ValidationResult, Summary) {
	opts := models.DefaultOptions()
	if s.Coordinator != nil {
		opts = s.Coordinator.Opts
	}
	// Chunk by the Scheduler's own ChunkSize rather than the options'.
	opts.BatchSize = 0
	return s.RunWithOptions(ctx, inputs, opts)
}

// RunWithOptions is Run, but validates every address with opts instead
// of the Coordinator's configured defaults, and uses opts.BatchSize as
// the chunk size when it is set, per spec.md §6's per-request
// "batchSize" option. It returns one result per deduplicated input, in
// submission order, plus a summary.
func (s *Scheduler) RunWithOptions(ctx context.Context, inputs []string, opts models.Options) ([]*models.ValidationResult, Summary) {
	summary := Summary{TotalSubmitted: len(inputs)}

	seen := make(map[string]struct{}, len(inputs))
	deduped := make([]string, 0, len(inputs))
	for _, in := range inputs {
		key := strings.ToLower(strings.TrimSpace(in))
		if _, ok := seen[key]; ok {
			summary.Deduplicated++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, in)
	}

	results := make([]*models.ValidationResult, len(deduped))

	chunkSize := opts.BatchSize
	if chunkSize <= 0 {
		chunkSize = s.ChunkSize
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	t := &tally{domainCounts: make(map[string]int), reasonCounts: make(map[string]int)}

	for start := 0; start < len(deduped); start += chunkSize {
		end := start + chunkSize
		if end > len(deduped) {
			end = len(deduped)
		}
		s.runChunk(ctx, deduped[start:end], results[start:end], concurrency, &summary, t, opts)

		if end < len(deduped) && s.ChunkPause > 0 {
			select {
			case <-time.After(s.ChunkPause):
			case <-ctx.Done():
				finalizeSummary(&summary, t)
				return results, summary
			}
		}
	}

	finalizeSummary(&summary, t)
	return results, summary
}

func (s *Scheduler) runChunk(ctx context.Context, chunk []string, out []*models.ValidationResult, concurrency int, summary *Summary, t *tally, opts models.Options) {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, input := range chunk {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, input string) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = s.validateIsolated(ctx, input, opts)
			mu.Lock()
			tallyResult(out[i], summary, t)
			mu.Unlock()
		}(i, input)
	}

	wg.Wait()
}

// validateIsolated runs one address through the Coordinator, recovering
// from a panic in any single item so it never takes the rest of the
// chunk down with it, and consulting the bulk cache first when one is
// configured.
func (s *Scheduler) validateIsolated(ctx context.Context, input string, opts models.Options) (result *models.ValidationResult) {
	defer func() {
		if p := recover(); p != nil {
			result = &models.ValidationResult{
				Input:  input,
				Status: models.StatusError,
				Reason: "validation panicked",
			}
		}
	}()

	cacheKey := strings.ToLower(strings.TrimSpace(input))
	if s.Cache != nil {
		if v, ok := s.Cache.Get(cache.NamespaceBulk, cacheKey); ok {
			return v.(*models.ValidationResult)
		}
	}

	result = s.Coordinator.ValidateWithOptions(ctx, input, opts)

	if s.Cache != nil {
		s.Cache.Set(cache.NamespaceBulk, cacheKey, result, cache.TTLBulk)
	}
	return result
}

// tallyResult folds one item's result into the running summary counters
// and the domain/reason/score tally. Callers must hold the summary's
// mutex.
func tallyResult(r *models.ValidationResult, summary *Summary, t *tally) {
	summary.Processed++
	switch r.Status {
	case models.StatusValid:
		summary.Valid++
	case models.StatusRisky:
		summary.Risky++
	case models.StatusInvalid:
		summary.Invalid++
	default:
		summary.Errored++
	}

	if r.Disposable {
		summary.DisposableCount++
	}
	if r.TypoDetected {
		summary.TypoCount++
	}

	t.totalScore += int64(r.Score)
	t.scoredCount++

	if domain := domainOf(r.NormalizedEmail); domain != "" {
		t.domainCounts[domain]++
	}
	if r.Reason != "" {
		t.reasonCounts[r.Reason]++
	}
}

// finalizeSummary computes the aggregate fields that need every item's
// tally at once: average score, the top-10 domain breakdown, the top-5
// common-reason breakdown, and the ratio-derived recommendations list.
func finalizeSummary(summary *Summary, t *tally) {
	if t.scoredCount > 0 {
		summary.AverageScore = float64(t.totalScore) / float64(t.scoredCount)
	}
	summary.TopDomains = topDomains(t.domainCounts, 10)
	summary.TopReasons = topReasons(t.reasonCounts, 5)
	summary.Recommendations = recommendations(summary)
}

func domainOf(normalizedEmail string) string {
	idx := strings.LastIndex(normalizedEmail, "@")
	if idx == -1 {
		return ""
	}
	return normalizedEmail[idx+1:]
}

func topDomains(counts map[string]int, n int) []DomainCount {
	entries := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		entries = append(entries, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Domain < entries[j].Domain
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func topReasons(counts map[string]int, n int) []ReasonCount {
	entries := make([]ReasonCount, 0, len(counts))
	for reason, count := range counts {
		entries = append(entries, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Reason < entries[j].Reason
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// recommendations derives spec.md §4.9's ratio-based warnings, e.g.
// ">10% disposable -> warning".
func recommendations(summary *Summary) []string {
	var recs []string
	if summary.Processed == 0 {
		return recs
	}

	if float64(summary.DisposableCount)/float64(summary.Processed) > 0.10 {
		recs = append(recs, "More than 10% of addresses use disposable providers; consider blocking known disposable domains at signup.")
	}
	if float64(summary.TypoCount)/float64(summary.Processed) > 0.10 {
		recs = append(recs, "More than 10% of addresses look like typos of a popular provider; consider prompting users to confirm.")
	}
	if float64(summary.Invalid)/float64(summary.Processed) > 0.20 {
		recs = append(recs, "More than 20% of addresses are invalid; review where this list was collected.")
	}
	return recs
}
