// Package trie implements the fragment trie used to tokenize sentences by
// greedy longest-overlap match against a set of discovered n-grams.
package trie

// node is one trie position. Children are stored as indices into the arena,
// so the structure has no pointer cycles and a terminal is an explicit flag
// rather than a sentinel key.
type node struct {
	children map[rune]int32
	terminal bool
}

// Trie is an arena-backed prefix tree over runes. Build it once with Insert,
// then it is read-only and safe for concurrent Tokenize calls.
type Trie struct {
	nodes []node
	words int
}

// New creates an empty Trie containing only the root node.
func New() *Trie {
	return &Trie{
		nodes: []node{{children: make(map[rune]int32)}},
	}
}

// Insert adds a word to the trie, creating intermediate nodes as needed and
// marking the final node terminal.
func (t *Trie) Insert(word string) {
	cur := int32(0)
	for _, r := range word {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			next = int32(len(t.nodes))
			t.nodes = append(t.nodes, node{children: make(map[rune]int32)})
			t.nodes[cur].children[r] = next
		}
		cur = next
	}
	if !t.nodes[cur].terminal {
		t.nodes[cur].terminal = true
		t.words++
	}
}

// Len returns the number of distinct words inserted.
func (t *Trie) Len() int {
	return t.words
}

// Contains reports whether the exact word was inserted.
func (t *Trie) Contains(word string) bool {
	cur := int32(0)
	for _, r := range word {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			return false
		}
		cur = next
	}
	return t.nodes[cur].terminal
}

// Tokenize partitions a sentence into an ordered sequence of fragments in a
// single left-to-right pass with no backtracking.
//
// It maintains a sliding [start, end) window. Scanning from every position,
// each terminal reached remembers the furthest match boundary: end only
// advances when a strictly longer terminal match is found starting at or
// after start. When the scan position reaches a remembered boundary the
// fragment [start, end) is emitted and a new window begins there. A match
// starting mid-window can still extend end before the current fragment
// closes, so this is not plain greedy longest-match from each fixed start.
//
// Runs with no match at all stay open until a match begins or the sentence
// ends, and are emitted as a single fragment. The final fragment is always
// emitted, so an empty sentence yields one empty fragment.
func (t *Trie) Tokenize(sentence string) []string {
	runes := []rune(sentence)
	result := make([]string, 0, 4)
	start, end := 0, 1
	matched := false
	for i := range runes {
		if i == end {
			if matched {
				result = append(result, string(runes[start:end]))
				start = i
				matched = false
			}
			end = i + 1
		}
		cur := int32(0)
		for j := i; j < len(runes); j++ {
			next, ok := t.nodes[cur].children[runes[j]]
			if !ok {
				break
			}
			cur = next
			if t.nodes[cur].terminal {
				if !matched {
					if start < i {
						result = append(result, string(runes[start:i]))
					}
					start = i
					matched = true
				}
				if j+1 > end {
					end = j + 1
				}
			}
		}
	}
	return append(result, string(runes[start:]))
}
