package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caassistant/autoledger/internal/api/handlers"
	"github.com/caassistant/autoledger/internal/api/middleware"
	"github.com/caassistant/autoledger/internal/classify"
	"github.com/caassistant/autoledger/internal/extract"
	"github.com/caassistant/autoledger/internal/jobs"
	"github.com/caassistant/autoledger/internal/jobs/inmemory"
	"github.com/caassistant/autoledger/internal/ledger"
	"github.com/caassistant/autoledger/internal/logger"
	"github.com/caassistant/autoledger/internal/pipeline"
	"github.com/caassistant/autoledger/internal/statement"
)

func main() {
	// Parse command-line flags
	var (
		port               = flag.String("port", "8080", "HTTP server port")
		overallTimeout     = flag.Duration("timeout", pipeline.DefaultOverallTimeout, "Overall processing budget per statement")
		classifyTimeout    = flag.Duration("classify-timeout", classify.DefaultTimeout, "Per-request classification timeout")
		classifyConcurrent = flag.Int("classify-concurrency", classify.DefaultConcurrency, "Maximum concurrent classification requests")
		workers            = flag.Int("workers", 5, "Number of background job workers")
		queueSize          = flag.Int("queue-size", 100, "Job queue buffer size")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	// The classifier is capability-optional: without a credential the
	// pipeline still runs and flagged transactions carry the fallback
	// sentinel.
	var suggester classify.Suggester
	classifierConfigured := os.Getenv("GEMINI_API_KEY") != ""
	if classifierConfigured {
		gemini, err := classify.NewGeminiSuggester(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Classifier unavailable - flagged transactions will use the fallback sentinel")
			classifierConfigured = false
		} else {
			suggester = gemini
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - classification disabled")
	}

	service := pipeline.NewService(
		extract.NewPDF(),
		statement.NewParser(statement.DefaultRules),
		suggester,
		ledger.DefaultChart(),
		pipeline.Options{
			OverallTimeout: *overallTimeout,
			Classify: classify.Options{
				Concurrency: *classifyConcurrent,
				Timeout:     *classifyTimeout,
			},
		},
	)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(*queueSize, *workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		processJob, ok := job.(*jobs.ProcessStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", processJob.JobID).
			Str("filename", processJob.Filename).
			Msg("Processing statement job")

		// The worker owns the spooled upload from here on.
		defer os.Remove(processJob.Path)

		doc, err := os.ReadFile(processJob.Path)
		if err != nil {
			processJob.ErrorKind = "internal_error"
			return fmt.Errorf("read spooled upload: %w", err)
		}

		result, err := service.Process(logger.WithContext(ctx, log), doc)
		if err != nil {
			var kindErr pipeline.KindError
			if errors.As(err, &kindErr) {
				processJob.ErrorKind = kindErr.Kind()
			}
			log.Error().
				Err(err).
				Str("job_id", processJob.JobID).
				Msg("Statement job failed")
			return err
		}

		processJob.Result = result

		log.Info().
			Str("job_id", processJob.JobID).
			Int("transactions", result.Summary.TotalTransactions).
			Msg("Statement job completed")

		return nil
	}

	go func() {
		log.Info().Int("workers", *workers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	// Initialize handlers
	statementsHandler := handlers.NewStatementsHandler(service, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	healthHandler := handlers.NewHealthHandler(classifierConfigured)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/autoledger/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Process(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/autoledger/enqueue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Enqueue(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "bad_request", "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		healthHandler.Health(w, r)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "AutoLedger API is running",
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
