// Package heads tracks which attention heads are visible and combines their
// weights.
package heads

import (
	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// Set is the set of active heads for one layer display. At least one head is
// always active while the set is non-empty.
type Set struct {
	active []bool
}

// NewSet returns a set of n heads, all active.
func NewSet(n int) *Set {
	s := &Set{active: make([]bool, n)}
	for i := range s.active {
		s.active[i] = true
	}
	return s
}

// NewSetFrom returns a set of n heads with only heads active. Out-of-range
// entries are skipped and reported; if nothing valid remains every head is
// active.
func NewSetFrom(n int, heads []int) (*Set, error) {
	if len(heads) == 0 {
		return NewSet(n), nil
	}
	s := &Set{active: make([]bool, n)}
	var firstErr error
	for _, h := range heads {
		if h < 0 || h >= n {
			if firstErr == nil {
				firstErr = herrors.InvalidHeadIndex(h, n).MarkRecovered()
			}
			continue
		}
		s.active[h] = true
	}
	if s.Count() == 0 {
		return NewSet(n), firstErr
	}
	return s, firstErr
}

// Len returns the total number of heads.
func (s *Set) Len() int { return len(s.active) }

// Count returns the number of active heads.
func (s *Set) Count() int {
	n := 0
	for _, a := range s.active {
		if a {
			n++
		}
	}
	return n
}

// IsActive reports whether head i is active.
func (s *Set) IsActive(i int) bool {
	return i >= 0 && i < len(s.active) && s.active[i]
}

// Active returns the active head indices in ascending order.
func (s *Set) Active() []int {
	out := make([]int, 0, len(s.active))
	for i, a := range s.active {
		if a {
			out = append(out, i)
		}
	}
	return out
}

// All reports whether every head is active.
func (s *Set) All() bool {
	return s.Count() == len(s.active)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{active: append([]bool(nil), s.active...)}
}

// Equal reports whether both sets have the same heads active.
func (s *Set) Equal(o *Set) bool {
	if len(s.active) != len(o.active) {
		return false
	}
	for i := range s.active {
		if s.active[i] != o.active[i] {
			return false
		}
	}
	return true
}

// Toggle flips head i. Turning off the last active head is rejected and the
// set is left unchanged.
func (s *Set) Toggle(i int) error {
	if i < 0 || i >= len(s.active) {
		return herrors.InvalidHeadIndex(i, len(s.active)).MarkRecovered()
	}
	if s.active[i] && s.Count() == 1 {
		return herrors.LastActiveHead(i).MarkRecovered()
	}
	s.active[i] = !s.active[i]
	return nil
}

// DoubleClick isolates head i, or restores every head when i is already the
// only active head.
func (s *Set) DoubleClick(i int) error {
	if i < 0 || i >= len(s.active) {
		return herrors.InvalidHeadIndex(i, len(s.active)).MarkRecovered()
	}
	if s.active[i] && s.Count() == 1 {
		for j := range s.active {
			s.active[j] = true
		}
		return nil
	}
	for j := range s.active {
		s.active[j] = j == i
	}
	return nil
}

// BoxWidth returns the width of one head's share of a token highlight box.
func (s *Set) BoxWidth(total float64) float64 {
	n := s.Count()
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// BoxOffset returns the x offset of head i's share within a token highlight
// box: the number of active heads before i times BoxWidth.
func (s *Set) BoxOffset(i int, total float64) float64 {
	before := 0
	for j := 0; j < i && j < len(s.active); j++ {
		if s.active[j] {
			before++
		}
	}
	return float64(before) * s.BoxWidth(total)
}

// Aggregate returns the mean weight from -> to over the active heads of one
// layer ([head][from][to]). An empty set yields 0. The stacked ArcOpacity
// values of the active heads for the same pair sum to Aggregate.
func Aggregate(layer [][][]float64, s *Set, from, to int) float64 {
	n := s.Count()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for h, a := range s.active {
		if !a || h >= len(layer) {
			continue
		}
		sum += layer[h][from][to]
	}
	return sum / float64(n)
}

// ArcOpacity returns the stroke opacity of head i's arc for weight. Arcs of
// all active heads stack, so each contributes weight/|active|.
func ArcOpacity(weight float64, s *Set, i int) float64 {
	if !s.IsActive(i) {
		return 0
	}
	return weight / float64(s.Count())
}
