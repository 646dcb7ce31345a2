package counter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lexforge/word-discovery-platform/pkg/config"
	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
)

func TestArgs(t *testing.T) {
	c := New(config.CounterConfig{Binary: "count_ngrams", Memory: 0.5})
	got := c.Args(4, "corpus.chars")
	want := []string{"-o", "4", "--memory=50%", "--write_vocab_list", "corpus.chars"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestCountPipesCorpusThroughBinary(t *testing.T) {
	dir := t.TempDir()
	corpusFile := filepath.Join(dir, "corpus")
	if err := os.WriteFile(corpusFile, []byte("a b c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ngramFile := filepath.Join(dir, "corpus.ngrams")

	// A script that ignores its flags and copies stdin to stdout stands in
	// for the real counter.
	script := filepath.Join(dir, "fake_counter")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := New(config.CounterConfig{Binary: script, Memory: 0.5})
	err := c.Count(context.Background(), corpusFile, 4, filepath.Join(dir, "corpus.chars"), ngramFile)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	data, err := os.ReadFile(ngramFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a b c\n" {
		t.Errorf("counter output = %q, want %q", string(data), "a b c\n")
	}
}

func TestCountFailure(t *testing.T) {
	dir := t.TempDir()
	corpusFile := filepath.Join(dir, "corpus")
	if err := os.WriteFile(corpusFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(config.CounterConfig{Binary: "false", Memory: 0.5})
	err := c.Count(context.Background(), corpusFile, 4,
		filepath.Join(dir, "corpus.chars"), filepath.Join(dir, "corpus.ngrams"))
	if !errors.Is(err, apperrors.ErrCountingFailed) {
		t.Fatalf("Count() error = %v, want ErrCountingFailed", err)
	}
}

func TestCountMissingCorpus(t *testing.T) {
	dir := t.TempDir()
	c := New(config.CounterConfig{Binary: "cat", Memory: 0.5})
	err := c.Count(context.Background(), filepath.Join(dir, "absent"), 4,
		filepath.Join(dir, "corpus.chars"), filepath.Join(dir, "corpus.ngrams"))
	if err == nil {
		t.Fatal("Count() with a missing corpus file should fail")
	}
}
