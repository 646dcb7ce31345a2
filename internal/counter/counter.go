// Package counter invokes the external n-gram counting binary. Counting is
// opaque to the pipeline: only the exit status matters, and a failed run is
// fatal and never retried.
package counter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/lexforge/word-discovery-platform/pkg/config"
	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
)

// Counter runs the external count_ngrams binary over an exported corpus.
type Counter struct {
	binary string
	memory float64
	logger *slog.Logger
}

// New creates a Counter from configuration.
func New(cfg config.CounterConfig) *Counter {
	return &Counter{
		binary: cfg.Binary,
		memory: cfg.Memory,
		logger: slog.Default().With("component", "counter"),
	}
}

// Args returns the argument list passed to the counting binary.
func (c *Counter) Args(order int, vocabFile string) []string {
	return []string{
		"-o", fmt.Sprintf("%d", order),
		fmt.Sprintf("--memory=%d%%", int(c.memory*100)),
		"--write_vocab_list", vocabFile,
	}
}

// Count feeds the corpus file to the counting binary and captures its binary
// record output in ngramFile. The vocabulary table is written by the counter
// itself via --write_vocab_list. A non-zero exit aborts the pipeline.
func (c *Counter) Count(ctx context.Context, corpusFile string, order int, vocabFile, ngramFile string) error {
	in, err := os.Open(corpusFile)
	if err != nil {
		return fmt.Errorf("opening corpus file %s: %w", corpusFile, err)
	}
	defer in.Close()

	out, err := os.Create(ngramFile)
	if err != nil {
		return fmt.Errorf("creating n-gram file %s: %w", ngramFile, err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, c.binary, c.Args(order, vocabFile)...)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	c.logger.Info("counting n-grams",
		"binary", c.binary,
		"order", order,
		"corpus", corpusFile,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCountingFailed, err)
	}
	return out.Sync()
}
