package collect

import (
	"slices"
	"strings"
)

// NaturalLess orders paths case-insensitively with digit runs compared
// numerically, so "part2.md" sorts before "part10.md".
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalCompare compares a and b in natural order. Paths whose keys are
// equal ("01.md" and "1.md") fall back to a byte comparison.
func NaturalCompare(a, b string) int {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := ka[i].compare(kb[i]); c != 0 {
			return c
		}
	}
	if c := len(ka) - len(kb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortNatural sorts paths in place in natural order.
func SortNatural(paths []string) {
	slices.SortFunc(paths, NaturalCompare)
}

// chunk is a run of digits or a run of non-digits.
type chunk struct {
	text    string
	numeric bool
}

func (c chunk) compare(o chunk) int {
	if c.numeric && o.numeric {
		return compareDigits(c.text, o.text)
	}
	return strings.Compare(c.text, o.text)
}

// compareDigits compares two digit strings by value without parsing,
// so arbitrarily long runs cannot overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// naturalKey splits s into alternating text and digit chunks. The first
// chunk is always text (possibly empty) so keys line up position by position.
func naturalKey(s string) []chunk {
	s = strings.ToLower(s)
	key := make([]chunk, 0, 4)
	start := 0
	inDigits := false
	for i := 0; i < len(s); i++ {
		d := s[i] >= '0' && s[i] <= '9'
		if d != inDigits {
			key = append(key, chunk{text: s[start:i], numeric: inDigits})
			start = i
			inDigits = d
		}
	}
	return append(key, chunk{text: s[start:], numeric: inDigits})
}
