// Package engine wires every pipeline stage into one ready-to-use
// Coordinator and Scheduler, so cmd/api and cmd/worker share a single
// construction path instead of duplicating it.
package engine

import (
	"time"

	"mailvetter/internal/config"
	"mailvetter/internal/engine/bulk"
	"mailvetter/internal/engine/cache"
	"mailvetter/internal/engine/coordinator"
	"mailvetter/internal/engine/disposable"
	"mailvetter/internal/engine/health"
	"mailvetter/internal/engine/models"
	"mailvetter/internal/engine/resolver"
	"mailvetter/internal/engine/smtp"
	"mailvetter/internal/engine/typo"
)

// Engine bundles the Coordinator with the Bulk Scheduler that drives it,
// plus the shared cache both depend on.
type Engine struct {
	Cache       *cache.Store
	Coordinator *coordinator.Coordinator
	Scheduler   *bulk.Scheduler
}

// Build constructs every stage from cfg and returns a ready Engine.
func Build(cfg *config.Config) *Engine {
	c := cache.New()

	opts := models.DefaultOptions()
	opts.CheckSMTP = cfg.EnableSMTP
	opts.SMTPFromDomain = cfg.SMTPFromDomain
	opts.SMTPTimeoutMs = cfg.SMTPTimeoutMs
	if cfg.BatchSize > 0 {
		opts.BatchSize = cfg.BatchSize
	}

	co := coordinator.New(
		disposable.Load(cfg.DisposableListPath, c),
		resolver.New(c),
		typo.New(c),
		smtp.New(cfg.SMTPFromDomain, time.Duration(cfg.SMTPTimeoutMs)*time.Millisecond),
		health.New(),
		opts,
	)

	sched := bulk.New(co, c)
	sched.ChunkSize = opts.BatchSize

	return &Engine{
		Cache:       c,
		Coordinator: co,
		Scheduler:   sched,
	}
}
