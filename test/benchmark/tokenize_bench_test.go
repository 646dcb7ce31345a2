package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lexforge/word-discovery-platform/internal/trie"
)

// sampleVocab approximates a discovered vocabulary: overlapping fragments of
// two to four runes so tokenization exercises both window extension and
// unmatched runs.
var sampleVocab = []string{
	"th", "the", "there", "here", "her",
	"in", "ing", "tion", "ation",
	"re", "dis", "over", "under",
	"自然", "语言", "自然语言", "处理", "模型",
}

var sampleTexts = map[string]string{
	"short": "there is information in the distribution",
	"mixed": "自然语言处理模型 over the underlying distribution 自然语言",
	"long": strings.Repeat(`the information retrieval operation considers there
        to be an underlying distribution over tokens whose cohesion determines
        segmentation 自然语言处理 depends on the same distributional evidence `, 20),
}

func buildTrie() *trie.Trie {
	t := trie.New()
	for _, w := range sampleVocab {
		t.Insert(w)
	}
	return t
}

func BenchmarkTokenize(b *testing.B) {
	tr := buildTrie()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				fragments := tr.Tokenize(text)
				_ = fragments
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	tr := buildTrie()
	text := sampleTexts["mixed"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			fragments := tr.Tokenize(text)
			_ = fragments
		}
	})
}

func BenchmarkTrieInsert(b *testing.B) {
	words := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		words = append(words, fmt.Sprintf("w%d词%d", i%97, i))
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tr := trie.New()
		for _, w := range words {
			tr.Insert(w)
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	tr := buildTrie()
	sizes := []int{10, 100, 500, 1000, 5000}
	base := "there is an underlying distribution 自然语言处理 "
	for _, size := range sizes {
		runes := []rune(strings.Repeat(base, size/len(base)+1))
		if size < len(runes) {
			runes = runes[:size]
		}
		text := string(runes)
		b.Run(fmt.Sprintf("runes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				fragments := tr.Tokenize(text)
				_ = fragments
			}
		})
	}
}
