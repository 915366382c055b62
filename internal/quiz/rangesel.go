package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// Range selects a contiguous slice of a deck by inclusive 1-based bounds.
// The zero value with All set selects the whole deck.
type Range struct {
	Start, End int
	All        bool
}

// AllItems selects the full deck.
var AllItems = Range{All: true}

func (r Range) String() string {
	if r.All {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Bounds resolves r against a deck of n items and returns half-open slice
// bounds.
func (r Range) Bounds(n int) (lo, hi int, err error) {
	if n == 0 {
		return 0, 0, &RangeError{Start: r.Start, End: r.End, Len: n, Reason: "deck is empty"}
	}
	if r.All {
		return 0, n, nil
	}
	if r.Start < 1 || r.Start > r.End || r.End > n {
		return 0, 0, &RangeError{Start: r.Start, End: r.End, Len: n}
	}
	return r.Start - 1, r.End, nil
}

// ParseRange parses "all", "N" or "N-M".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllItems, nil
	}
	lo, hi, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad start %q", ErrInvalidRange, lo)
	}
	end := start
	if found {
		end, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return Range{}, fmt.Errorf("%w: bad end %q", ErrInvalidRange, hi)
		}
	}
	if start < 1 || end < start {
		return Range{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}
