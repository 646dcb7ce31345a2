package ngram

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
	"github.com/lexforge/word-discovery-platform/pkg/progress"
)

// Stats holds the per-order frequency maps accumulated from one pass over
// the binary record stream.
type Stats struct {
	Order int
	// Counts[j] maps an n-gram of rune length j+1 to its total count.
	// The maps are nested prefix aggregates: a single record contributes
	// to every shorter-order map through its prefixes.
	Counts []map[string]int64
	// Total is the sum of counts of all records that passed the minimum
	// count. It stands in for the true corpus size as the PMI normalizer,
	// a deliberate bias correction inherited from the counting setup.
	Total int64
}

// Count returns the count for an n-gram of any order, or 0 if unseen.
func (s *Stats) Count(gram string) int64 {
	n := len([]rune(gram))
	if n == 0 || n > s.Order {
		return 0
	}
	return s.Counts[n-1][gram]
}

// Decoder reads the counter's packed binary records: `order` native-endian
// 4-byte signed token indices followed by one native-endian 8-byte signed
// count per record.
type Decoder struct {
	vocab    *Vocabulary
	order    int
	minCount int64

	// optional observers
	Tracker *progress.Tracker
	Metrics *metrics.Metrics
}

// NewDecoder creates a Decoder for records of the given order. Records whose
// count is below minCount are dropped without decoding their indices.
func NewDecoder(vocab *Vocabulary, order int, minCount int64) *Decoder {
	return &Decoder{vocab: vocab, order: order, minCount: minCount}
}

// DecodeFile decodes a binary n-gram file from disk.
func (d *Decoder) DecodeFile(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening n-gram file %s: %w", path, err)
	}
	defer f.Close()
	stats, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding n-gram file %s: %w", path, err)
	}
	return stats, nil
}

// Decode consumes the record stream until EOF, accumulating every kept
// record's prefixes into the per-order count maps. A trailing partial record
// is treated as clean end-of-stream, not an error.
func (d *Decoder) Decode(r io.Reader) (*Stats, error) {
	stats := &Stats{
		Order:  d.order,
		Counts: make([]map[string]int64, d.order),
	}
	for j := range stats.Counts {
		stats.Counts[j] = make(map[string]int64)
	}

	recordSize := d.order*4 + 8
	buf := make([]byte, recordSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("reading n-gram record: %w", err)
		}
		d.Tracker.Step()
		if d.Metrics != nil {
			d.Metrics.RecordsDecodedTotal.Inc()
		}

		count := int64(binary.NativeEndian.Uint64(buf[d.order*4:]))
		if count < d.minCount {
			continue
		}
		gram, err := d.decodeIndices(buf)
		if err != nil {
			return nil, err
		}
		if d.Metrics != nil {
			d.Metrics.RecordsKeptTotal.Inc()
		}

		stats.Total += count
		runes := []rune(gram)
		for j := 0; j < len(runes) && j < d.order; j++ {
			stats.Counts[j][string(runes[:j+1])] += count
		}
	}
	d.Tracker.Finish()
	return stats, nil
}

// decodeIndices resolves the record's leading index block against the
// vocabulary table, skipping reserved sentinel indices. The result can be
// shorter than `order` symbols.
func (d *Decoder) decodeIndices(record []byte) (string, error) {
	var sb strings.Builder
	for k := 0; k < d.order; k++ {
		index := int32(binary.NativeEndian.Uint32(record[k*4 : k*4+4]))
		if int(index) >= d.vocab.Len() {
			return "", fmt.Errorf("%w: token index %d out of range (vocabulary has %d symbols)",
				apperrors.ErrCorruptRecord, index, d.vocab.Len())
		}
		if symbol, ok := d.vocab.Symbol(index); ok {
			sb.WriteString(symbol)
		}
	}
	return sb.String(), nil
}
