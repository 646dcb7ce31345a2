package trie

import (
	"reflect"
	"testing"
)

func build(words ...string) *Trie {
	t := New()
	for _, w := range words {
		t.Insert(w)
	}
	return t
}

func TestInsertContains(t *testing.T) {
	tr := build("ab", "abc", "b")

	if got := tr.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	for _, w := range []string{"ab", "abc", "b"} {
		if !tr.Contains(w) {
			t.Errorf("Contains(%q) = false, want true", w)
		}
	}
	// "a" is a prefix but was never inserted itself.
	for _, w := range []string{"a", "abcd", "c", ""} {
		if tr.Contains(w) {
			t.Errorf("Contains(%q) = true, want false", w)
		}
	}

	tr.Insert("ab")
	if got := tr.Len(); got != 3 {
		t.Errorf("Len() after duplicate insert = %d, want 3", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		sentence string
		want     []string
	}{
		{
			name:     "longest match wins",
			words:    []string{"the", "there", "here"},
			sentence: "there",
			want:     []string{"there"},
		},
		{
			name:     "unmatched tail becomes its own fragment",
			words:    []string{"the", "there"},
			sentence: "thereby",
			want:     []string{"there", "by"},
		},
		{
			name:     "mid-window match extends the fragment",
			words:    []string{"ab", "bcd"},
			sentence: "abcd",
			want:     []string{"abcd"},
		},
		{
			name:     "unmatched prefix closes when a match begins",
			words:    []string{"bx"},
			sentence: "xbx",
			want:     []string{"x", "bx"},
		},
		{
			name:     "adjacent single-rune matches stay separate",
			words:    []string{"a"},
			sentence: "aa",
			want:     []string{"a", "a"},
		},
		{
			name:     "no match lumps the whole sentence",
			words:    []string{"q"},
			sentence: "xyz",
			want:     []string{"xyz"},
		},
		{
			name:     "overlapping matches chain cleanly",
			words:    []string{"ab", "bc", "abc"},
			sentence: "abcabcabcabc",
			want:     []string{"abc", "abc", "abc", "abc"},
		},
		{
			name:     "empty sentence yields one empty fragment",
			words:    []string{"a"},
			sentence: "",
			want:     []string{""},
		},
		{
			name:     "multibyte runes are matched by rune not byte",
			words:    []string{"自然", "语言", "自然语言"},
			sentence: "自然语言处理",
			want:     []string{"自然语言", "处理"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(tt.words...)
			got := tr.Tokenize(tt.sentence)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.sentence, got, tt.want)
			}
		})
	}
}

func TestTokenizeEmptyTrie(t *testing.T) {
	tr := New()
	got := tr.Tokenize("abc")
	want := []string{"abc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize on empty trie = %v, want %v", got, want)
	}
}
