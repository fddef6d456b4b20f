package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sheetsense/sheetsense/internal/api/handlers"
	"github.com/sheetsense/sheetsense/internal/api/middleware"
	"github.com/sheetsense/sheetsense/internal/config"
	"github.com/sheetsense/sheetsense/internal/openai"
	"github.com/sheetsense/sheetsense/internal/service"
	"github.com/sheetsense/sheetsense/internal/store"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg    *config.Config
	store  store.VectorStore
	server *http.Server
}

// NewApp builds and wires all components. It does not start the HTTP server;
// call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, vectorStore store.VectorStore) (*App, error) {
	modelClient := openai.NewClient(cfg.ModelRuntimeURL, cfg.ModelRuntimeAPIKey,
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithGenerationModel(cfg.TextGenerationModel),
		openai.WithMaxAnswerTokens(cfg.MaxAnswerTokens),
	)

	var queryCache *lru.Cache[string, []float32]

	if cfg.QueryCacheSize > 0 {
		var err error

		queryCache, err = lru.New[string, []float32](cfg.QueryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create query cache: %w", err)
		}
	}

	queryService := service.NewQueryService(service.QueryServiceParams{
		EmbeddingClient:  modelClient,
		GenerationClient: modelClient,
		Store:            vectorStore,
		TopK:             cfg.TopK,
		QueryCache:       queryCache,
		Logger:           slog.Default(),
	})
	embeddingService := service.NewEmbeddingService(modelClient)
	healthService := service.NewHealthService(
		modelClient, cfg.EmbeddingModel, cfg.TextGenerationModel, vectorStore,
	)

	server := newHTTPServer(cfg,
		handlers.NewHealthHandler(healthService),
		handlers.NewQueryHandler(queryService),
		handlers.NewEmbeddingHandler(embeddingService),
	)

	return &App{
		cfg:    cfg,
		store:  vectorStore,
		server: server,
	}, nil
}

// newHTTPServer builds the HTTP server and mux.
// Handler chain: RequestID -> Logging -> Timeout -> MaxBody(mux) so access logs
// carry request_id and each request's context is deadline-bounded.
func newHTTPServer(
	cfg *config.Config,
	health *handlers.HealthHandler,
	query *handlers.QueryHandler,
	embedding *handlers.EmbeddingHandler,
) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Check)
	mux.HandleFunc("POST /query", query.Answer)
	mux.HandleFunc("POST /compute_embedding", embedding.Compute)
	mux.HandleFunc("POST /compute_batch_embedding", embedding.ComputeBatch)

	requestTimeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	var handler http.Handler = mux
	handler = middleware.MaxBody(cfg.MaxRequestBodyBytes)(handler)
	handler = middleware.Timeout(requestTimeout)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	const (
		readTimeout = 15 * time.Second
		idleTimeout = 60 * time.Second
		writeSlack  = 5 * time.Second
	)

	// Generation dominates request latency; the write timeout must outlive the
	// per-request deadline or slow answers are cut off mid-response.
	writeTimeout := requestTimeout + writeSlack
	if requestTimeout <= 0 {
		writeTimeout = idleTimeout
	}

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled (e.g. signal)
// or the server fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port, "vector_store", a.cfg.VectorStore)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the server, then closes the store client. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) error {
	defer func() {
		if err := a.store.Close(ctx); err != nil {
			slog.Error("store close during shutdown", "error", err)
		}
	}()

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
