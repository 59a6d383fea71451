package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mailvetter/internal/config"
	"mailvetter/internal/engine"
	"mailvetter/internal/engine/bulk"
	"mailvetter/internal/engine/cache"
	"mailvetter/internal/engine/models"
	"mailvetter/internal/proxy"
	"mailvetter/internal/queue"
	"mailvetter/internal/store"
)

const maxBulkEmails = 1000

var eng *engine.Engine

func main() {
	cfg := config.Load()
	config.ConfigureLogger(cfg)

	logrus.Infof("connecting to redis at %s", cfg.RedisAddr)
	if err := queue.Init(cfg.RedisAddr); err != nil {
		logrus.Fatalf("failed to connect to redis: %v", err)
	}
	logrus.Info("connected to redis queue")

	logrus.Info("connecting to database")
	if err := store.Init(cfg.DBURL); err != nil {
		logrus.Fatalf("failed to connect to db: %v", err)
	}
	logrus.Info("connected to postgres, migrations applied")

	if len(cfg.ProxyList) > 0 {
		if err := proxy.Init(cfg.ProxyList, cfg.ProxyConcurrency, cfg.SMTPProxyEnabled); err != nil {
			logrus.Fatalf("failed to initialize proxy manager: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"proxies":     len(cfg.ProxyList),
			"maxConcurrent": cap(proxy.Semaphore),
			"smtp":        cfg.SMTPProxyEnabled,
		}).Info("proxy rotation enabled")
	} else {
		logrus.Info("no proxies configured, running with direct connections")
	}

	eng = engine.Build(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache.StartCleanup(ctx.Done(), 5*time.Minute, eng.Cache)
	logrus.Info("cache eviction goroutine started (interval: 5m)")

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/validate", enableCORS(requireAPIKey(validateHandler)))
	mux.HandleFunc("/v1/validate/bulk", enableCORS(requireAPIKey(bulkValidateHandler)))
	mux.HandleFunc("/upload", enableCORS(requireAPIKey(uploadHandler)))
	mux.HandleFunc("/status", enableCORS(requireAPIKey(statusHandler)))
	mux.HandleFunc("/results", enableCORS(requireAPIKey(resultsHandler)))
	mux.HandleFunc("/info", enableCORS(infoHandler))
	mux.Handle("/", http.FileServer(http.Dir("./static")))

	server := &http.Server{
		Addr:         ":8080",
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logrus.Info("mailvetter engine running on :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	logrus.Info("shutdown signal received, draining in-flight requests")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("graceful shutdown failed: %v", err)
	}
	logrus.Info("server shut down cleanly")
}

// enableCORS sets permissive CORS headers for frontend access.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// validateRequest is the wire shape of a POST /v1/validate body.
type validateRequest struct {
	Email   string              `json:"email"`
	Options *models.OptionsInput `json:"options"`
}

// apiError is the structured error envelope the /v1/validate handlers
// return on failure, per spec.md §6. The job endpoints (/upload,
// /status, /results) reply with plain http.Error text instead.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// apiSuccess is the structured success envelope the /v1/validate
// handlers return on success, per spec.md §6.
type apiSuccess struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiError{Error: msg, Code: code})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiSuccess{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// validateHandler implements spec.md §6's synchronous single-address
// endpoint: POST {"email":"...","options":{...}}, returning
// {"success":true,"data":<ValidationResult>,"timestamp":"..."}.
func validateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "INVALID_JSON")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email address is required", "MISSING_EMAIL")
		return
	}

	opts := req.Options.Resolve(eng.Coordinator.Opts)
	result := eng.Coordinator.ValidateWithOptions(r.Context(), req.Email, opts)

	writeSuccess(w, result)
}

// bulkValidateRequest is the wire shape for a synchronous (small) bulk
// request; large batches should use /upload instead, which hands the
// work to the queue and worker pool.
type bulkValidateRequest struct {
	Emails  []string              `json:"emails"`
	Options *models.OptionsInput `json:"options"`
}

type bulkValidateResponse struct {
	Summary bulkSummaryJSON `json:"summary"`
	Results []interface{}   `json:"results"`
}

type bulkSummaryJSON struct {
	TotalSubmitted  int               `json:"total_submitted"`
	Deduplicated    int               `json:"deduplicated"`
	Processed       int               `json:"processed"`
	Valid           int               `json:"valid"`
	Risky           int               `json:"risky"`
	Invalid         int               `json:"invalid"`
	Errored         int               `json:"errored"`
	DisposableCount int               `json:"disposable_count"`
	TypoCount       int               `json:"typo_count"`
	AverageScore    float64           `json:"average_score"`
	TopDomains      []bulk.DomainCount `json:"top_domains"`
	TopReasons      []bulk.ReasonCount `json:"top_reasons"`
	Recommendations []string          `json:"recommendations"`
}

// bulkValidateHandler runs a small, synchronous batch directly through
// the in-process Bulk Scheduler, per spec.md §4.9. Large uploads should
// go through /upload instead, which defers to the queue and worker pool.
func bulkValidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
		return
	}

	var req bulkValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "INVALID_JSON")
		return
	}
	if len(req.Emails) == 0 {
		writeError(w, http.StatusBadRequest, "'emails' must be a non-empty array", "EMPTY_EMAILS")
		return
	}
	if len(req.Emails) > maxBulkEmails {
		writeError(w, http.StatusBadRequest, "Maximum 1000 emails allowed per bulk request", "TOO_MANY_EMAILS")
		return
	}

	// spec.md §6: checkSMTP is skipped automatically in bulk unless a
	// request explicitly re-enables it, so an unqualified large batch
	// never opens one SMTP connection per address by default.
	bulkBase := eng.Coordinator.Opts
	bulkBase.CheckSMTP = false
	opts := req.Options.Resolve(bulkBase)
	results, summary := eng.Scheduler.RunWithOptions(r.Context(), req.Emails, opts)

	resp := bulkValidateResponse{
		Summary: bulkSummaryJSON{
			TotalSubmitted:  summary.TotalSubmitted,
			Deduplicated:    summary.Deduplicated,
			Processed:       summary.Processed,
			Valid:           summary.Valid,
			Risky:           summary.Risky,
			Invalid:         summary.Invalid,
			Errored:         summary.Errored,
			DisposableCount: summary.DisposableCount,
			TypoCount:       summary.TypoCount,
			AverageScore:    summary.AverageScore,
			TopDomains:      summary.TopDomains,
			TopReasons:      summary.TopReasons,
			Recommendations: summary.Recommendations,
		},
		Results: make([]interface{}, len(results)),
	}
	for i, r := range results {
		resp.Results[i] = r
	}

	writeSuccess(w, resp)
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	guide := map[string]interface{}{
		"service": "mailvetter",
		"capabilities": []string{
			"rfc5321/5322 syntax validation",
			"mx and a-record resolution",
			"smtp envelope probing with catch-all detection",
			"disposable domain classification",
			"typo suggestion",
			"spf/dmarc domain health",
			"bulk validation",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(guide)
}
