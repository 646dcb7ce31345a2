package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexforge/word-discovery-platform/internal/server"
	"github.com/lexforge/word-discovery-platform/pkg/config"
	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
	"github.com/lexforge/word-discovery-platform/pkg/health"
	"github.com/lexforge/word-discovery-platform/pkg/kafka"
	"github.com/lexforge/word-discovery-platform/pkg/logger"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
	"github.com/lexforge/word-discovery-platform/pkg/postgres"
	"github.com/lexforge/word-discovery-platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting vocab server", "port", cfg.Server.Port)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(ctx)
		}()
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := server.NewStore(db)

	var cache *server.TokenizeCache
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, serving without tokenize cache", "error", err)
	} else {
		defer redisClient.Close()
		cache = server.NewTokenizeCache(redisClient, cfg.Redis, m)
	}

	handler := server.NewHandler(store, cache, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := handler.Reload(ctx); err != nil {
		if errors.Is(err, apperrors.ErrVocabularyNotFound) {
			slog.Warn("no vocabulary run persisted yet, waiting for events")
		} else {
			slog.Error("initial vocabulary load failed", "error", err)
			os.Exit(1)
		}
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.VocabUpdated, handleVocabUpdated(handler))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("vocab event consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("vocabulary", func(ctx context.Context) health.ComponentHealth {
		if !handler.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no vocabulary loaded"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tokenize", handler.Tokenize)
	mux.HandleFunc("/v1/vocabulary", handler.Vocabulary)
	mux.HandleFunc("/healthz/live", checker.LiveHandler())
	mux.HandleFunc("/healthz/ready", checker.ReadyHandler())

	var root http.Handler = mux
	if m != nil {
		root = server.Metrics(m)(root)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("vocab server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down vocab server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("vocab server stopped")
}

// handleVocabUpdated reloads the vocabulary whenever a discovery run is
// announced.
func handleVocabUpdated(handler *server.Handler) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[struct {
			RunID int64 `json:"run_id"`
		}](value)
		if err != nil {
			return err
		}
		slog.Info("vocab update event received", "run_id", event.RunID)
		return handler.Reload(ctx)
	}
}
