package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kfreiman/piigate/internal/mcp"
	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/kfreiman/piigate/internal/observability"
	"github.com/kfreiman/piigate/internal/scan"
	"github.com/kfreiman/piigate/internal/search"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/spf13/afero"
)

const (
	serviceName     = "piigate"
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
)

// Server wires the message service, document scanner and MCP server behind
// one HTTP router
type Server struct {
	config         Config
	service        *messaging.Service
	scanner        *scan.Scanner
	metrics        *observability.Metrics
	storageManager *storage.StorageManager
	index          *search.MessageIndex
	mcpServer      *mcp.Server
	logger         *slog.Logger
}

// NewServer creates a server with the given configuration
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		metrics: observability.NewMetrics(),
		logger:  logger,
	}

	var store messaging.Store
	switch cfg.StorageBackend {
	case StorageFile:
		sm, err := storage.NewStorageManager(storage.StorageConfig{
			BasePath:   cfg.StoragePath,
			DefaultTTL: cfg.MessageTTL,
			Logger:     logger,
		})
		if err != nil {
			logger.ErrorContext(context.Background(), "failed to initialize storage manager",
				"error", err,
			)
			return nil, fmt.Errorf("storage init: %w", err)
		}
		s.storageManager = sm
		store = messaging.NewFileStore(sm).WithLogger(logger)
	default:
		store = messaging.NewMemoryStore()
	}

	s.service = messaging.NewService(store).
		WithLogger(logger).
		WithObserver(s.metrics)

	if cfg.SearchEnabled {
		index, err := search.NewMessageIndex()
		if err != nil {
			return nil, fmt.Errorf("search index init: %w", err)
		}
		s.index = index.WithLogger(logger)
		s.service.WithIndex(s.index)

		// Persisted messages are not in the in-memory index yet
		if s.storageManager != nil {
			if _, err := s.service.Reindex(context.Background()); err != nil {
				logger.WarnContext(context.Background(), "failed to rebuild search index",
					"error", err,
				)
			}
		}
	}

	// Path scans only ever see files under ScanRoot, read-only
	scanFS := storage.NewMemMapFileSystem()
	if cfg.ScanRoot != "" {
		scanFS = storage.NewAferoFileSystem(afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.ScanRoot)))
	}
	s.scanner = scan.NewScanner(scanFS).
		WithLogger(logger).
		WithObserver(s.metrics)

	s.mcpServer = mcp.NewServer(mcp.Deps{
		Service:        s.service,
		Scanner:        s.scanner,
		ScanPaths:      cfg.ScanRoot != "",
		StorageManager: s.storageManager,
		Logger:         logger,
	})

	return s, nil
}

// Service returns the message service
func (s *Server) Service() *messaging.Service {
	return s.service
}

// Router returns the HTTP handler with every route mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.indexHandler)
	r.Get("/health/live", s.LivenessHandler)
	r.Get("/health/ready", s.ReadinessHandler)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/mcp", s.mcpServer.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)
		r.Post("/redact", s.handleRedact)
		r.Post("/scan", s.handleScan)
		r.Get("/search", s.handleSearch)

		r.Get("/threads", s.handleListThreads)
		r.Post("/threads", s.handleCreateThread)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Get("/threads/{id}/messages", s.handleHistory)
		r.Post("/threads/{id}/messages", s.handleSend)
		r.Post("/threads/{id}/read", s.handleMarkRead)
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if s.storageManager != nil && s.config.MessageTTL > 0 {
		mcp.StartCleanupRoutine(ctx, s.storageManager, cleanupInterval, s.config.MessageTTL, s.logger)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting server",
			"port", s.config.Port,
			"storage_backend", s.config.StorageBackend,
			"search_enabled", s.config.SearchEnabled,
			"scan_root", s.config.ScanRoot,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the search index
func (s *Server) Close() error {
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// indexHandler returns the server information page
func (s *Server) indexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "piigate\n\n")
	fmt.Fprintf(w, "Endpoints:\n")
	fmt.Fprintf(w, "  POST /api/v1/classify                - Check text for PII\n")
	fmt.Fprintf(w, "  POST /api/v1/redact                  - Mask sensitive substrings\n")
	fmt.Fprintf(w, "  POST /api/v1/scan                    - Scan document text line by line\n")
	fmt.Fprintf(w, "  GET  /api/v1/search?q=               - Search redacted message history\n")
	fmt.Fprintf(w, "  GET  /api/v1/threads                 - List threads\n")
	fmt.Fprintf(w, "  POST /api/v1/threads                 - Create a thread\n")
	fmt.Fprintf(w, "  GET  /api/v1/threads/{id}/messages   - Thread history (redacted by default)\n")
	fmt.Fprintf(w, "  POST /api/v1/threads/{id}/messages   - Send a message\n")
	fmt.Fprintf(w, "  POST /api/v1/threads/{id}/read       - Mark a thread read\n")
	fmt.Fprintf(w, "  POST /mcp                            - MCP streamable HTTP transport\n")
	fmt.Fprintf(w, "  GET  /health/live                    - Liveness probe\n")
	fmt.Fprintf(w, "  GET  /health/ready                   - Readiness probe\n")
	fmt.Fprintf(w, "  GET  /metrics                        - Prometheus metrics\n")
}
