// Package corpus locates and pre-processes raw input text, and exports it in
// the space-joined format the external n-gram counter consumes.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lexforge/word-discovery-platform/pkg/progress"
)

// nonTarget matches runs of characters outside the target classes (CJK
// unified ideographs, digits, ASCII letters, space). Each run becomes a
// sentence break.
var nonTarget = regexp.MustCompile(`[^\x{4e00}-\x{9fa5}0-9a-zA-Z ]+`)

// Source yields pre-processed sentences. ForEach may be called any number of
// times; every call performs a fresh pass over the same sentences, so lazy
// and materialized sources are interchangeable.
type Source interface {
	ForEach(fn func(sentence string) error) error
}

// GlobSource streams sentences from the files matching a glob pattern,
// re-opening them on every pass.
type GlobSource struct {
	pattern string
}

// NewGlobSource creates a Source over all files matching pattern.
func NewGlobSource(pattern string) *GlobSource {
	return &GlobSource{pattern: pattern}
}

// ForEach reads every matched file, cleans it, and yields each non-empty
// sentence. Returns an error if the pattern matches no files.
func (s *GlobSource) ForEach(fn func(sentence string) error) error {
	paths, err := filepath.Glob(s.pattern)
	if err != nil {
		return fmt.Errorf("globbing corpus pattern %s: %w", s.pattern, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("corpus pattern %s matched no files", s.pattern)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading corpus file %s: %w", path, err)
		}
		for _, sentence := range CleanDocument(string(data)) {
			if err := fn(sentence); err != nil {
				return err
			}
		}
	}
	return nil
}

// MemorySource holds all sentences in memory.
type MemorySource struct {
	sentences []string
}

// NewMemorySource creates a Source over a fixed sentence list.
func NewMemorySource(sentences []string) *MemorySource {
	return &MemorySource{sentences: sentences}
}

// ForEach yields every sentence in order.
func (s *MemorySource) ForEach(fn func(sentence string) error) error {
	for _, sentence := range s.sentences {
		if err := fn(sentence); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of held sentences.
func (s *MemorySource) Len() int {
	return len(s.sentences)
}

// Materialize drains a Source into a MemorySource, trading memory for
// single-pass file I/O. Results are identical either way.
func Materialize(src Source) (*MemorySource, error) {
	var sentences []string
	err := src.ForEach(func(sentence string) error {
		sentences = append(sentences, sentence)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewMemorySource(sentences), nil
}

// CleanDocument normalizes ideographic spaces, replaces runs of non-target
// characters with sentence breaks, and returns the non-empty sentences.
func CleanDocument(doc string) []string {
	doc = strings.ReplaceAll(doc, "　", " ")
	doc = strings.TrimSpace(doc)
	doc = nonTarget.ReplaceAllString(doc, "\n")
	var sentences []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences
}

// Export writes the corpus in the counter's input format: one sentence per
// line, characters joined by single spaces.
func Export(src Source, path string, tracker *progress.Tracker) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating corpus file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	err = src.ForEach(func(sentence string) error {
		tracker.Step()
		runes := []rune(sentence)
		for i, r := range runes {
			if i > 0 {
				if _, err := w.WriteRune(' '); err != nil {
					return err
				}
			}
			if _, err := w.WriteRune(r); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("exporting corpus to %s: %w", path, err)
	}
	tracker.Finish()
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing corpus file %s: %w", path, err)
	}
	return f.Sync()
}
