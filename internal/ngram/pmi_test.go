package ngram

import (
	"errors"
	"testing"

	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
)

func statsWith(order int, total int64, counts ...map[string]int64) *Stats {
	s := &Stats{Order: order, Total: total, Counts: counts}
	return s
}

func TestFilterPMIIndependenceBoundary(t *testing.T) {
	// "ab" occurs exactly as often as independence predicts:
	// total*v / (f(a)*f(b)) = 10000*1 / (100*100) = 1, so log pmi = 0.
	stats := statsWith(2, 10000,
		map[string]int64{"a": 100, "b": 100},
		map[string]int64{"ab": 1},
	)

	accepted, err := FilterPMI(stats, []float64{0, 0})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["ab"]; !ok {
		t.Errorf("log pmi = 0 must pass a threshold of 0")
	}

	accepted, err = FilterPMI(stats, []float64{0, 0.1})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["ab"]; ok {
		t.Errorf("log pmi = 0 must fail a threshold above 0")
	}
}

func TestFilterPMIRejectsNonCooccurring(t *testing.T) {
	// Frequent parts, vanishing joint count: the denominator dominates and
	// log pmi goes negative.
	stats := statsWith(2, 10000,
		map[string]int64{"c": 5000, "d": 5000},
		map[string]int64{"cd": 1},
	)
	accepted, err := FilterPMI(stats, []float64{0, 0})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["cd"]; ok {
		t.Errorf("independent parts must be rejected at any threshold >= 0")
	}
}

func TestFilterPMIAbsentSubstringDefaultsToTotal(t *testing.T) {
	// Neither "x" nor "y" was counted. Both factors default to total, so
	// the score is v/total < 1 and the candidate is rejected rather than
	// causing a division by zero.
	stats := statsWith(2, 10000,
		map[string]int64{},
		map[string]int64{"xy": 50},
	)
	accepted, err := FilterPMI(stats, []float64{0, 0})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["xy"]; ok {
		t.Errorf("unseen substrings must depress the score below the threshold")
	}
}

func TestFilterPMIWeakestLink(t *testing.T) {
	// "abc" has one strong boundary (ab|c) and one weak boundary (a|bc).
	// The minimum over split points must govern.
	stats := statsWith(3, 10000,
		map[string]int64{"a": 5000, "b": 10, "c": 10},
		map[string]int64{"ab": 10, "bc": 5000},
		map[string]int64{"abc": 10},
	)
	// a|bc: 10000*10/(5000*5000) = 4e-6 -> weak
	// ab|c: 10000*10/(10*10)     = 1000 -> strong
	accepted, err := FilterPMI(stats, []float64{0, 0, 0})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["abc"]; ok {
		t.Errorf("a single weak boundary must disqualify the n-gram")
	}
	// "bc" itself is strong: 10000*5000/(10*10) = 5e5.
	if _, ok := accepted["bc"]; !ok {
		t.Errorf("\"bc\" should be retained")
	}
}

func TestFilterPMIPerOrderThresholds(t *testing.T) {
	// log(10000*20/(20*20)) = log(500) ~ 6.2: passes order-2's threshold
	// of 2 but not a trigram threshold set to 7.
	stats := statsWith(3, 10000,
		map[string]int64{"a": 20, "b": 20, "c": 20},
		map[string]int64{"ab": 20, "bc": 20},
		map[string]int64{"abc": 20},
	)
	accepted, err := FilterPMI(stats, []float64{0, 2, 7})
	if err != nil {
		t.Fatalf("FilterPMI() error = %v", err)
	}
	if _, ok := accepted["ab"]; !ok {
		t.Errorf("\"ab\" should pass the order-2 threshold")
	}
	if _, ok := accepted["abc"]; ok {
		t.Errorf("\"abc\" should fail the stricter order-3 threshold")
	}
}

func TestFilterPMIDegenerateTotal(t *testing.T) {
	stats := statsWith(2, 0,
		map[string]int64{},
		map[string]int64{},
	)
	_, err := FilterPMI(stats, []float64{0, 0})
	if !errors.Is(err, apperrors.ErrDegenerateCorpus) {
		t.Fatalf("FilterPMI() error = %v, want ErrDegenerateCorpus", err)
	}
}

func TestFilterPMIThresholdCountMismatch(t *testing.T) {
	stats := statsWith(3, 100,
		map[string]int64{"a": 1},
		map[string]int64{},
		map[string]int64{},
	)
	_, err := FilterPMI(stats, []float64{0})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("FilterPMI() error = %v, want ErrInvalidInput", err)
	}
}
