package discover

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	accepted := map[string]struct{}{
		"ab":  {},
		"bc":  {},
		"abc": {},
		"bcd": {},
	}

	tests := []struct {
		name       string
		candidates map[string]int64
		order      int
		want       map[string]int64
	}{
		{
			name:       "short tokens always survive",
			candidates: map[string]int64{"a": 7, "xy": 3, "": 1},
			order:      4,
			want:       map[string]int64{"a": 7, "xy": 3, "": 1},
		},
		{
			name:       "mid-length tokens need direct acceptance",
			candidates: map[string]int64{"abc": 9, "abd": 4},
			order:      4,
			want:       map[string]int64{"abc": 9},
		},
		{
			name:       "long tokens need every window accepted",
			candidates: map[string]int64{"abcd": 6, "abcx": 5},
			order:      3,
			want:       map[string]int64{"abcd": 6},
		},
		{
			name:       "one bad window disqualifies the token",
			candidates: map[string]int64{"abc": 10, "abd": 10},
			order:      2,
			want:       map[string]int64{"abc": 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.candidates, accepted, tt.order)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateRuneWindows(t *testing.T) {
	// Windows slide over runes, not bytes.
	accepted := map[string]struct{}{
		"自然语": {},
		"然语言": {},
	}
	candidates := map[string]int64{"自然语言": 12}
	got := Validate(candidates, accepted, 3)
	if got["自然语言"] != 12 {
		t.Errorf("Validate() dropped a token whose rune windows are all accepted: %v", got)
	}
}
