package discover

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lexforge/word-discovery-platform/internal/corpus"
	"github.com/lexforge/word-discovery-platform/internal/ngram"
	"github.com/lexforge/word-discovery-platform/internal/trie"
	"github.com/lexforge/word-discovery-platform/pkg/config"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
	"github.com/lexforge/word-discovery-platform/pkg/progress"
)

// Entry is one discovered token with its occurrence count.
type Entry struct {
	Token string `json:"token"`
	Count int64  `json:"count"`
}

// Pipeline orchestrates the discovery stages strictly sequentially: each
// stage fully consumes its input before the next begins, and every data
// structure has a single owning stage.
type Pipeline struct {
	cfg     config.DiscoveryConfig
	source  corpus.Source
	logger  *slog.Logger
	metrics *metrics.Metrics
	// ProgressPeriod controls how often batch stages report progress;
	// zero disables reporting.
	ProgressPeriod int64
}

// New creates a Pipeline over an exported-and-counted corpus. metrics may be
// nil when no collector is registered.
func New(cfg config.DiscoveryConfig, source corpus.Source, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		source:  source,
		logger:  slog.Default().With("component", "discover"),
		metrics: m,
	}
}

// Run executes decode → PMI filter → trie build → corpus tokenization →
// frequency threshold → backward validation, and returns the discovered
// vocabulary sorted by count descending. Ties are broken by token for
// deterministic output.
func (p *Pipeline) Run(ctx context.Context) ([]Entry, error) {
	vocab, err := ngram.LoadVocabulary(p.cfg.VocabFile)
	if err != nil {
		return nil, err
	}

	stats, err := p.decode(vocab)
	if err != nil {
		return nil, err
	}

	minPMI, err := p.cfg.MinPMI.ForOrder(p.cfg.Order)
	if err != nil {
		return nil, err
	}
	accepted, err := p.stageFilter(stats, minPMI)
	if err != nil {
		return nil, err
	}

	fragments := p.stageBuildTrie(accepted)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := p.stageTokenize(fragments)
	if err != nil {
		return nil, err
	}

	return p.stageSelect(candidates, accepted), nil
}

func (p *Pipeline) decode(vocab *ngram.Vocabulary) (*ngram.Stats, error) {
	start := time.Now()
	decoder := ngram.NewDecoder(vocab, p.cfg.Order, p.cfg.MinCount)
	decoder.Metrics = p.metrics
	if p.ProgressPeriod > 0 {
		decoder.Tracker = progress.NewTracker("loading ngrams", p.ProgressPeriod)
	}
	stats, err := decoder.DecodeFile(p.cfg.NgramFile)
	if err != nil {
		return nil, err
	}
	p.observeStage("decode", start)
	p.logger.Info("n-gram records decoded",
		"order", stats.Order,
		"total", stats.Total,
		"unigrams", len(stats.Counts[0]),
	)
	return stats, nil
}

func (p *Pipeline) stageFilter(stats *ngram.Stats, minPMI []float64) (map[string]struct{}, error) {
	start := time.Now()
	accepted, err := ngram.FilterPMI(stats, minPMI)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		byOrder := make(map[int]int)
		for gram := range accepted {
			byOrder[len([]rune(gram))]++
		}
		for order, n := range byOrder {
			p.metrics.NgramsRetained.WithLabelValues(fmt.Sprintf("%d", order)).Set(float64(n))
		}
	}
	p.observeStage("pmi_filter", start)
	p.logger.Info("pmi filter applied", "retained", len(accepted))
	return accepted, nil
}

func (p *Pipeline) stageBuildTrie(accepted map[string]struct{}) *trie.Trie {
	start := time.Now()
	var tracker *progress.Tracker
	if p.ProgressPeriod > 0 {
		tracker = progress.NewTracker("building ngram trie", p.ProgressPeriod)
	}
	fragments := trie.New()
	for gram := range accepted {
		fragments.Insert(gram)
		tracker.Step()
	}
	tracker.Finish()
	p.observeStage("build_trie", start)
	return fragments
}

func (p *Pipeline) stageTokenize(fragments *trie.Trie) (map[string]int64, error) {
	start := time.Now()
	var tracker *progress.Tracker
	if p.ProgressPeriod > 0 {
		tracker = progress.NewTracker("discovering words", p.ProgressPeriod)
	}
	candidates := make(map[string]int64)
	err := p.source.ForEach(func(sentence string) error {
		tracker.Step()
		for _, fragment := range fragments.Tokenize(sentence) {
			candidates[fragment]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tokenizing corpus: %w", err)
	}
	tracker.Finish()
	if p.metrics != nil {
		p.metrics.Candidates.WithLabelValues("raw").Set(float64(len(candidates)))
	}
	p.observeStage("tokenize", start)
	p.logger.Info("corpus tokenized", "candidates", len(candidates))
	return candidates, nil
}

// stageSelect applies the frequency floor, the backward validation pass, and
// the final ordering.
func (p *Pipeline) stageSelect(candidates map[string]int64, accepted map[string]struct{}) []Entry {
	start := time.Now()
	frequent := make(map[string]int64, len(candidates))
	for token, count := range candidates {
		if count >= p.cfg.MinCount {
			frequent[token] = count
		}
	}
	if p.metrics != nil {
		p.metrics.Candidates.WithLabelValues("frequency").Set(float64(len(frequent)))
	}

	validated := Validate(frequent, accepted, p.cfg.Order)
	if p.metrics != nil {
		p.metrics.Candidates.WithLabelValues("validated").Set(float64(len(validated)))
	}

	entries := make([]Entry, 0, len(validated))
	for token, count := range validated {
		entries = append(entries, Entry{Token: token, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Token < entries[j].Token
	})
	p.observeStage("select", start)
	p.logger.Info("vocabulary selected",
		"frequent", len(frequent),
		"validated", len(validated),
	)
	return entries
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// WriteVocabulary writes entries as `token<space>count` lines, one per
// discovered token, already sorted by count descending.
func WriteVocabulary(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %d\n", e.Token, e.Count); err != nil {
			return fmt.Errorf("writing output file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing output file %s: %w", path, err)
	}
	return f.Sync()
}
