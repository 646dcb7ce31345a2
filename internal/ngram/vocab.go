// Package ngram consumes the output of the external n-gram counter: the
// NUL-separated vocabulary table and the packed binary count records. It
// turns them into per-order frequency maps and filters them down to a set of
// cohesive n-grams by pointwise mutual information.
package ngram

import (
	"fmt"
	"os"
	"strings"
)

// reservedSymbols is the number of sentinel entries at the front of the
// counter's vocabulary table (unknown-word and sentence-boundary markers).
// Record indices pointing at them are excluded from decoded n-grams.
const reservedSymbols = 3

// Vocabulary is the counter's symbol table. A symbol's integer index is its
// position in the table. Immutable once loaded.
type Vocabulary struct {
	symbols []string
}

// LoadVocabulary reads a NUL-separated UTF-8 symbol table from disk.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary table %s: %w", path, err)
	}
	return NewVocabulary(strings.Split(string(data), "\x00")), nil
}

// NewVocabulary builds a Vocabulary from an ordered symbol list.
func NewVocabulary(symbols []string) *Vocabulary {
	return &Vocabulary{symbols: symbols}
}

// Len returns the number of symbols in the table.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Symbol returns the symbol at the given index and whether the index refers
// to a real symbol rather than a reserved sentinel.
func (v *Vocabulary) Symbol(index int32) (string, bool) {
	if index < reservedSymbols {
		return "", false
	}
	return v.symbols[index], true
}
