package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lexforge/word-discovery-platform/internal/discover"
	"github.com/lexforge/word-discovery-platform/internal/trie"
	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
)

// vocabState is one immutable loaded vocabulary. Reloads swap the whole
// state atomically so in-flight requests keep a consistent view.
type vocabState struct {
	runID     int64
	entries   []discover.Entry
	fragments *trie.Trie
}

// VocabLoader loads discovery runs from persistent storage.
type VocabLoader interface {
	LoadLatest(ctx context.Context) (int64, []discover.Entry, error)
}

// Handler serves tokenization and vocabulary lookups over HTTP.
type Handler struct {
	loader  VocabLoader
	cache   *TokenizeCache
	metrics *metrics.Metrics
	logger  *slog.Logger
	state   atomic.Pointer[vocabState]
}

// NewHandler creates a Handler. cache and metrics may be nil; the loader is
// required.
func NewHandler(loader VocabLoader, cache *TokenizeCache, m *metrics.Metrics) *Handler {
	return &Handler{
		loader:  loader,
		cache:   cache,
		metrics: m,
		logger:  slog.Default().With("component", "vocab-handler"),
	}
}

// Reload loads the latest vocabulary run, rebuilds the fragment trie, and
// swaps it in. The previous vocabulary stays live until the swap.
func (h *Handler) Reload(ctx context.Context) error {
	runID, entries, err := h.loader.LoadLatest(ctx)
	if err != nil {
		if h.metrics != nil {
			h.metrics.VocabReloadsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	fragments := trie.New()
	for _, e := range entries {
		fragments.Insert(e.Token)
	}
	h.state.Store(&vocabState{
		runID:     runID,
		entries:   entries,
		fragments: fragments,
	})
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Warn("cache invalidation failed after reload", "error", err)
		}
	}
	if h.metrics != nil {
		h.metrics.VocabReloadsTotal.WithLabelValues("success").Inc()
		h.metrics.VocabularySize.Set(float64(len(entries)))
	}
	h.logger.Info("vocabulary reloaded", "run_id", runID, "tokens", len(entries))
	return nil
}

// Ready reports whether a vocabulary has been loaded.
func (h *Handler) Ready() bool {
	return h.state.Load() != nil
}

// tokenizeRequest is the body of POST /v1/tokenize.
type tokenizeRequest struct {
	Sentence string `json:"sentence"`
}

// tokenizeResponse echoes the sentence with its fragments.
type tokenizeResponse struct {
	Sentence  string   `json:"sentence"`
	Fragments []string `json:"fragments"`
	Cached    bool     `json:"cached"`
	RunID     int64    `json:"run_id"`
}

// Tokenize handles POST /v1/tokenize.
func (h *Handler) Tokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusMethodNotAllowed, "use POST"))
		return
	}
	state := h.state.Load()
	if state == nil {
		writeError(w, apperrors.New(apperrors.ErrVocabularyNotFound, http.StatusServiceUnavailable, "no vocabulary loaded"))
		return
	}

	var req tokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body"))
		return
	}

	compute := func() []string {
		start := time.Now()
		fragments := state.fragments.Tokenize(req.Sentence)
		if h.metrics != nil {
			h.metrics.TokenizeLatency.Observe(time.Since(start).Seconds())
		}
		return fragments
	}

	var fragments []string
	var cached bool
	if h.cache != nil {
		fragments, cached = h.cache.GetOrCompute(r.Context(), req.Sentence, compute)
	} else {
		fragments = compute()
	}

	writeJSON(w, http.StatusOK, tokenizeResponse{
		Sentence:  req.Sentence,
		Fragments: fragments,
		Cached:    cached,
		RunID:     state.runID,
	})
}

// vocabularyResponse is the body of GET /v1/vocabulary.
type vocabularyResponse struct {
	RunID   int64            `json:"run_id"`
	Total   int              `json:"total"`
	Entries []discover.Entry `json:"entries"`
}

// Vocabulary handles GET /v1/vocabulary. The optional limit query parameter
// truncates the count-descending entry list.
func (h *Handler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusMethodNotAllowed, "use GET"))
		return
	}
	state := h.state.Load()
	if state == nil {
		writeError(w, apperrors.New(apperrors.ErrVocabularyNotFound, http.StatusServiceUnavailable, "no vocabulary loaded"))
		return
	}

	entries := state.entries
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a non-negative integer"))
			return
		}
		if limit < len(entries) {
			entries = entries[:limit]
		}
	}

	writeJSON(w, http.StatusOK, vocabularyResponse{
		RunID:   state.runID,
		Total:   len(state.entries),
		Entries: entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatusCode(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
