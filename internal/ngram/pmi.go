package ngram

import (
	"fmt"
	"math"

	apperrors "github.com/lexforge/word-discovery-platform/pkg/errors"
)

// FilterPMI keeps the n-grams whose cohesion clears the per-order log-PMI
// thresholds. For each candidate the score is the minimum pointwise mutual
// information over all of its internal split points, so an n-gram is only as
// solid as its weakest boundary.
//
// A substring absent from its count map contributes a factor of Total, which
// treats unseen parts as maximally rare and depresses the score instead of
// dividing by zero. Unigrams are never filtered; they pass through implicitly
// as length-1 substrings.
//
// minPMI must hold one threshold per order; index i applies to n-grams of
// rune length i+1. The returned set holds membership only, with no order or
// score attached.
func FilterPMI(stats *Stats, minPMI []float64) (map[string]struct{}, error) {
	if stats.Total <= 0 {
		return nil, fmt.Errorf("%w (check min_count and corpus size)", apperrors.ErrDegenerateCorpus)
	}
	if len(minPMI) < stats.Order {
		return nil, fmt.Errorf("%w: %d PMI thresholds for order %d",
			apperrors.ErrInvalidInput, len(minPMI), stats.Order)
	}

	total := float64(stats.Total)
	accepted := make(map[string]struct{})
	for i := stats.Order - 1; i >= 1; i-- {
		for gram, count := range stats.Counts[i] {
			runes := []rune(gram)
			minScore := math.Inf(1)
			for j := 0; j < i; j++ {
				left := total
				if c, ok := stats.Counts[j][string(runes[:j+1])]; ok {
					left = float64(c)
				}
				right := total
				if c, ok := stats.Counts[i-j-1][string(runes[j+1:])]; ok {
					right = float64(c)
				}
				score := total * float64(count) / (left * right)
				if score < minScore {
					minScore = score
				}
			}
			if math.Log(minScore) >= minPMI[i] {
				accepted[gram] = struct{}{}
			}
		}
	}
	return accepted, nil
}
