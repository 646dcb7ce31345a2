package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexforge/word-discovery-platform/internal/corpus"
	"github.com/lexforge/word-discovery-platform/internal/counter"
	"github.com/lexforge/word-discovery-platform/internal/discover"
	"github.com/lexforge/word-discovery-platform/internal/server"
	"github.com/lexforge/word-discovery-platform/pkg/config"
	"github.com/lexforge/word-discovery-platform/pkg/kafka"
	"github.com/lexforge/word-discovery-platform/pkg/logger"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
	"github.com/lexforge/word-discovery-platform/pkg/postgres"
	"github.com/lexforge/word-discovery-platform/pkg/progress"
	"github.com/lexforge/word-discovery-platform/pkg/resilience"
)

const progressPeriod = 100000

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	filePattern := flag.String("input", "", "glob over raw input text files (overrides config)")
	outputFile := flag.String("output", "", "output vocabulary file (overrides config)")
	order := flag.Int("order", 0, "n-gram order (overrides config)")
	minCount := flag.Int64("min-count", 0, "absolute frequency floor (overrides config)")
	skipCount := flag.Bool("skip-count", false, "reuse existing corpus, vocab, and ngram files")
	persist := flag.Bool("persist", false, "save the run to postgres")
	publish := flag.Bool("publish", false, "publish a vocab.updated event after persisting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *filePattern != "" {
		cfg.Corpus.FilePattern = *filePattern
	}
	if *outputFile != "" {
		cfg.Discovery.OutputFile = *outputFile
	}
	if *order > 0 {
		cfg.Discovery.Order = *order
	}
	if *minCount > 0 {
		cfg.Discovery.MinCount = *minCount
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting word discovery",
		"order", cfg.Discovery.Order,
		"min_count", cfg.Discovery.MinCount,
		"corpus_pattern", cfg.Corpus.FilePattern,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source corpus.Source = corpus.NewGlobSource(cfg.Corpus.FilePattern)
	if cfg.Corpus.InMemory {
		materialized, err := corpus.Materialize(source)
		if err != nil {
			slog.Error("failed to load corpus", "error", err)
			os.Exit(1)
		}
		slog.Info("corpus loaded in memory", "sentences", materialized.Len())
		source = materialized
	}

	if !*skipCount {
		if err := corpus.Export(source, cfg.Discovery.CorpusFile, progress.NewTracker("exporting corpus", 10000)); err != nil {
			slog.Error("failed to export corpus", "error", err)
			os.Exit(1)
		}
		cnt := counter.New(cfg.Counter)
		err = cnt.Count(ctx, cfg.Discovery.CorpusFile, cfg.Discovery.Order, cfg.Discovery.VocabFile, cfg.Discovery.NgramFile)
		if err != nil {
			slog.Error("external counting failed", "error", err)
			os.Exit(1)
		}
	}

	pipeline := discover.New(cfg.Discovery, source, m)
	pipeline.ProgressPeriod = progressPeriod
	entries, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("discovery pipeline failed", "error", err)
		os.Exit(1)
	}

	if err := discover.WriteVocabulary(cfg.Discovery.OutputFile, entries); err != nil {
		slog.Error("failed to write vocabulary", "error", err)
		os.Exit(1)
	}
	slog.Info("vocabulary written",
		"output", cfg.Discovery.OutputFile,
		"tokens", len(entries),
	)

	if *persist {
		if err := persistRun(ctx, cfg, entries, *publish); err != nil {
			slog.Error("failed to persist run", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("word discovery finished")
}

// persistRun saves the run to postgres and optionally announces it on Kafka.
// Both writes are retried; the discovery itself never is.
func persistRun(ctx context.Context, cfg *config.Config, entries []discover.Entry, publish bool) error {
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	store := server.NewStore(db)

	var runID int64
	err = resilience.Retry(ctx, "save-vocabulary-run", resilience.RetryConfig{}, func() error {
		var saveErr error
		runID, saveErr = store.SaveRun(ctx, cfg.Corpus.FilePattern, entries)
		return saveErr
	})
	if err != nil {
		return err
	}

	if !publish {
		return nil
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.VocabUpdated)
	defer producer.Close()
	event := discover.VocabUpdatedEvent{
		RunID:      runID,
		Corpus:     cfg.Corpus.FilePattern,
		EntryCount: len(entries),
		FinishedAt: time.Now().UTC(),
	}
	return resilience.Retry(ctx, "publish-vocab-updated", resilience.RetryConfig{}, func() error {
		return producer.Publish(ctx, kafka.Event{
			Key:   fmt.Sprintf("run-%d", runID),
			Value: event,
		})
	})
}
