package heads

import (
	"math"
	"testing"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// -----------------------------------------------------------------------------
// Set Tests
// -----------------------------------------------------------------------------

func TestNewSet_AllActive(t *testing.T) {
	s := NewSet(4)
	if s.Count() != 4 || !s.All() {
		t.Errorf("expected 4 active heads, got %d", s.Count())
	}
}

func TestNewSetFrom(t *testing.T) {
	s, err := NewSetFrom(4, []int{1, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Active(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected [1 3], got %v", got)
	}

	s, err = NewSetFrom(4, []int{9})
	if !herrors.IsCode(err, herrors.ErrInvalidHeadIndex) || !herrors.IsRecovered(err) {
		t.Errorf("expected recovered %s, got %v", herrors.ErrInvalidHeadIndex, err)
	}
	if !s.All() {
		t.Error("expected fallback to all heads when no valid head remains")
	}
}

func TestToggle_LastHeadRejected(t *testing.T) {
	s := NewSet(3)
	if err := s.Toggle(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Toggle(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Toggle(2)
	if !herrors.IsCode(err, herrors.ErrLastActiveHead) {
		t.Fatalf("expected %s, got %v", herrors.ErrLastActiveHead, err)
	}
	if s.Count() != 1 || !s.IsActive(2) {
		t.Errorf("expected head 2 to stay active, got %v", s.Active())
	}

	// Toggling an inactive head back on is always allowed.
	if err := s.Toggle(0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 active heads, got %d", s.Count())
	}
}

func TestToggle_NeverEmpty(t *testing.T) {
	s := NewSet(5)
	for round := 0; round < 3; round++ {
		for i := 0; i < 5; i++ {
			_ = s.Toggle(i)
			if s.Count() == 0 {
				t.Fatalf("set became empty after toggling %d", i)
			}
		}
	}
}

func TestDoubleClick_Laws(t *testing.T) {
	s := NewSet(4)

	// Isolate when several are active.
	if err := s.DoubleClick(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Active(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected only head 2, got %v", got)
	}

	// Sole active head restores all.
	if err := s.DoubleClick(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.All() {
		t.Errorf("expected all heads active, got %v", s.Active())
	}

	// Double-clicking an inactive head isolates it.
	_ = s.DoubleClick(0)
	_ = s.DoubleClick(3)
	if got := s.Active(); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected only head 3, got %v", got)
	}

	// Twice on the sole head returns to all active, then isolates again.
	_ = s.DoubleClick(3)
	_ = s.DoubleClick(3)
	if got := s.Active(); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected isolate after reset, got %v", got)
	}
}

func TestToggle_OutOfRange(t *testing.T) {
	s := NewSet(2)
	err := s.Toggle(5)
	if !herrors.IsCode(err, herrors.ErrInvalidHeadIndex) {
		t.Errorf("expected %s, got %v", herrors.ErrInvalidHeadIndex, err)
	}
	if !s.All() {
		t.Error("set should be unchanged")
	}
}

// -----------------------------------------------------------------------------
// Aggregate Tests
// -----------------------------------------------------------------------------

func uniformLayer(heads, n int) [][][]float64 {
	layer := make([][][]float64, heads)
	for h := range layer {
		layer[h] = make([][]float64, n)
		for i := range layer[h] {
			layer[h][i] = []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
		}
	}
	return layer
}

func TestAggregate_UniformThird(t *testing.T) {
	// The cat sat / Le chat assis, 2 heads, uniform attention.
	layer := uniformLayer(2, 3)
	s := NewSet(2)
	for from := 0; from < 3; from++ {
		for to := 0; to < 3; to++ {
			if got := Aggregate(layer, s, from, to); math.Abs(got-1.0/3) > 1e-12 {
				t.Errorf("Aggregate(%d, %d) = %v, want 1/3", from, to, got)
			}
		}
	}
}

func TestAggregate_NormalizesByActiveCount(t *testing.T) {
	layer := [][][]float64{
		{{1.0, 0.0}},
		{{0.0, 1.0}},
		{{0.5, 0.5}},
	}
	s := NewSet(3)
	_ = s.Toggle(1)

	if got := Aggregate(layer, s, 0, 0); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if got := Aggregate(layer, s, 0, 1); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
}

func TestAggregate_Bounds(t *testing.T) {
	weights := []float64{0, 0.1, 0.5, 0.9, 1}
	layer := make([][][]float64, len(weights))
	for h, w := range weights {
		layer[h] = [][]float64{{w}}
	}
	s := NewSet(len(weights))
	for mask := 1; mask < 1<<len(weights); mask++ {
		for i := range weights {
			s.active[i] = mask&(1<<i) != 0
		}
		got := Aggregate(layer, s, 0, 0)
		if got < 0 || got > 1 {
			t.Errorf("mask %b: aggregate %v out of [0,1]", mask, got)
		}
	}
}

func TestAggregate_EqualsStackedArcs(t *testing.T) {
	layer := [][][]float64{
		{{0.9, 0.1}},
		{{0.2, 0.8}},
		{{0.6, 0.4}},
	}
	s := NewSet(3)
	_ = s.Toggle(0)

	for to := 0; to < 2; to++ {
		stacked := 0.0
		for h := range layer {
			stacked += ArcOpacity(layer[h][0][to], s, h)
		}
		if got := Aggregate(layer, s, 0, to); math.Abs(got-stacked) > 1e-12 {
			t.Errorf("to %d: aggregate %v, stacked arcs %v", to, got, stacked)
		}
	}
}

func TestAggregate_EmptySet(t *testing.T) {
	s := &Set{active: []bool{false, false}}
	if got := Aggregate(uniformLayer(2, 1), s, 0, 0); got != 0 {
		t.Errorf("expected 0 for empty set, got %v", got)
	}
	if got := s.BoxWidth(110); got != 0 {
		t.Errorf("expected 0 box width for empty set, got %v", got)
	}
}

func TestArcOpacityAndBoxes(t *testing.T) {
	s := NewSet(4)
	_ = s.Toggle(1)

	if got := ArcOpacity(0.9, s, 0); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("expected 0.3, got %v", got)
	}
	if got := ArcOpacity(0.9, s, 1); got != 0 {
		t.Errorf("expected 0 for inactive head, got %v", got)
	}

	width := s.BoxWidth(120)
	if width != 40 {
		t.Errorf("expected box width 40, got %v", width)
	}
	offsets := []float64{s.BoxOffset(0, 120), s.BoxOffset(2, 120), s.BoxOffset(3, 120)}
	want := []float64{0, 40, 80}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offset %d: expected %v, got %v", i, want[i], offsets[i])
		}
	}
}

// -----------------------------------------------------------------------------
// Color Tests
// -----------------------------------------------------------------------------

func TestLighten(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#000000", "#999999"},
		{"#ffffff", "#ffffff"},
		{"#808080", "#cccccc"},
		{"not-a-color", "not-a-color"},
	}
	for _, tt := range tests {
		if got := Lighten(tt.in); got != tt.want {
			t.Errorf("Lighten(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	r, g, b, _ := parseHex(Lighten(Color(0)))
	_, _, l := rgbToHSL(r, g, b)
	_, _, l0 := rgbToHSL(parseHex3(Color(0)))
	if l <= l0 {
		t.Errorf("expected lighter colour, got l=%v from %v", l, l0)
	}
}

func parseHex3(c string) (float64, float64, float64) {
	r, g, b, _ := parseHex(c)
	return r, g, b
}

func TestColor_Cycles(t *testing.T) {
	if Color(0) != Color(10) {
		t.Error("expected palette to cycle every 10 heads")
	}
}

func TestRGBA(t *testing.T) {
	c, ok := RGBA("#1f77b4")
	if !ok || c.R != 0x1f || c.G != 0x77 || c.B != 0xb4 || c.A != 255 {
		t.Errorf("unexpected colour %+v", c)
	}
	if c, ok := RGBA("#fff"); !ok || c.R != 255 || c.B != 255 {
		t.Errorf("expected white, got %+v", c)
	}
	if _, ok := RGBA("blue"); ok {
		t.Error("expected named colour rejected")
	}
}
