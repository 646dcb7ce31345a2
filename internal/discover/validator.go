// Package discover runs the word discovery pipeline: decode n-gram counts,
// filter by PMI, tokenize the corpus with a fragment trie, and validate the
// surviving candidates against the accepted n-gram evidence.
package discover

// Validate applies the backward consistency check to frequency-thresholded
// candidates. A long discovered token is only trustworthy if every
// order-length slice of it was independently accepted as a cohesive n-gram:
//
//   - shorter than 3 runes: always retained, too short to validate.
//   - between 3 runes and order: retained iff the candidate itself is an
//     accepted n-gram.
//   - longer than order: retained iff every contiguous window of exactly
//     order runes is accepted. One unsupported window disqualifies the
//     candidate.
func Validate(candidates map[string]int64, accepted map[string]struct{}, order int) map[string]int64 {
	result := make(map[string]int64, len(candidates))
	for token, count := range candidates {
		runes := []rune(token)
		switch n := len(runes); {
		case n < 3:
			result[token] = count
		case n <= order:
			if _, ok := accepted[token]; ok {
				result[token] = count
			}
		default:
			supported := true
			for k := 0; k+order <= n; k++ {
				if _, ok := accepted[string(runes[k:k+order])]; !ok {
					supported = false
					break
				}
			}
			if supported {
				result[token] = count
			}
		}
	}
	return result
}
