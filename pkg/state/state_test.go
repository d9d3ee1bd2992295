package state

import (
	"testing"

	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/layout"
)

func tensor(layers, heads, left, right int) dataset.Tensor4 {
	t := make(dataset.Tensor4, layers)
	for l := range t {
		t[l] = make([][][]float64, heads)
		for h := range t[l] {
			t[l][h] = make([][]float64, left)
			for i := range t[l][h] {
				t[l][h][i] = make([]float64, right)
			}
		}
	}
	return t
}

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromFilters(
		&dataset.Filter{Name: "all", LeftTokens: tokens(5), RightTokens: tokens(5), Attention: tensor(3, 4, 5, 5)},
		&dataset.Filter{Name: "ab", LeftTokens: tokens(2), RightTokens: tokens(3), Attention: tensor(3, 4, 2, 3)},
	)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func newState(t *testing.T, view string) *State {
	t.Helper()
	s, err := New(testData(t), Init{View: view})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func intp(i int) *int { return &i }

// -----------------------------------------------------------------------------
// Initial State Tests
// -----------------------------------------------------------------------------

func TestNew_Defaults(t *testing.T) {
	s := newState(t, dataset.ViewHead)
	if s.Filter != "all" || s.Layer != 0 || !s.Heads.All() || s.Hovered != nil || s.Mode != Collapsed {
		t.Errorf("unexpected initial state: %+v", s.Snapshot())
	}

	m := newState(t, dataset.ViewModel)
	if m.Mode != Thumbnail || m.Drilldown != nil {
		t.Errorf("expected thumbnail mode, got %v", m.Mode)
	}
}

func TestNew_ClampsHostValues(t *testing.T) {
	s, err := New(testData(t), Init{View: dataset.ViewNeuron, Filter: "ab", Layer: intp(9), Head: intp(-2)})
	if !herrors.IsCode(err, herrors.ErrInvalidLayerIndex) || !herrors.IsRecovered(err) {
		t.Fatalf("expected recovered %s, got %v", herrors.ErrInvalidLayerIndex, err)
	}
	if s.Filter != "ab" || s.Layer != 2 || s.Head != 0 {
		t.Errorf("expected clamped state, got filter=%s layer=%d head=%d", s.Filter, s.Layer, s.Head)
	}

	s, err = New(testData(t), Init{View: dataset.ViewHead, Filter: "zz", Heads: []int{1, 2}})
	if !herrors.IsCode(err, herrors.ErrInvalidFilter) {
		t.Errorf("expected %s, got %v", herrors.ErrInvalidFilter, err)
	}
	if s.Filter != "all" || s.Heads.Count() != 2 {
		t.Errorf("unexpected state %+v", s.Snapshot())
	}
}

// -----------------------------------------------------------------------------
// Transition Tests
// -----------------------------------------------------------------------------

func TestHoverUnhover(t *testing.T) {
	s := newState(t, dataset.ViewHead)

	c := s.Hover(layout.Right, 3)
	if c.Scope != ScopeHighlight || c.Err != nil {
		t.Fatalf("unexpected change %+v", c)
	}
	if s.Hovered == nil || s.Hovered.Side != layout.Right || s.Hovered.Index != 3 {
		t.Errorf("unexpected hover %+v", s.Hovered)
	}

	c = s.Unhover()
	if c.Scope != ScopeHighlight || s.Hovered != nil {
		t.Errorf("expected hover cleared, got %+v", c)
	}
	if c = s.Unhover(); c.Scope != ScopeNone {
		t.Errorf("expected no-op second unhover, got %v", c.Scope)
	}
}

func TestHover_OutOfRange(t *testing.T) {
	s := newState(t, dataset.ViewHead)
	c := s.Hover(layout.Left, 5)
	if c.Scope != ScopeNone || !herrors.IsCode(c.Err, herrors.ErrInvalidTokenIndex) {
		t.Errorf("expected rejected hover, got %+v", c)
	}
	if s.Hovered != nil {
		t.Error("state changed on rejected hover")
	}
}

func TestHover_ModelViewNeedsDetail(t *testing.T) {
	s := newState(t, dataset.ViewModel)
	if c := s.Hover(layout.Left, 0); c.Scope != ScopeNone || c.Err == nil {
		t.Errorf("expected rejected hover without detail, got %+v", c)
	}
	s.ActivateThumbnail(1, 1)
	if c := s.Hover(layout.Left, 0); c.Scope != ScopeHighlight {
		t.Errorf("expected hover inside detail, got %+v", c)
	}
}

func TestToggleHead(t *testing.T) {
	s := newState(t, dataset.ViewHead)
	if c := s.ToggleHead(1); c.Scope != ScopeOpacity {
		t.Errorf("expected opacity scope, got %v", c.Scope)
	}

	s.DoubleClickHead(2)
	c := s.ToggleHead(2)
	if c.Scope != ScopeNone || !herrors.IsCode(c.Err, herrors.ErrLastActiveHead) {
		t.Errorf("expected rejected toggle, got %+v", c)
	}
	if s.Heads.Count() != 1 {
		t.Errorf("expected one active head, got %d", s.Heads.Count())
	}

	n := newState(t, dataset.ViewNeuron)
	if c := n.ToggleHead(0); !herrors.IsCode(c.Err, herrors.ErrUnsupportedEvent) {
		t.Errorf("expected unsupported event in neuron view, got %+v", c)
	}
}

func TestSelectLayer_Clamps(t *testing.T) {
	s := newState(t, dataset.ViewHead)
	s.Hover(layout.Left, 1)

	c := s.SelectLayer(7)
	if c.Scope != ScopeLayout || !herrors.IsCode(c.Err, herrors.ErrInvalidLayerIndex) {
		t.Errorf("expected clamped layout change, got %+v", c)
	}
	if s.Layer != 2 || s.Hovered != nil {
		t.Errorf("expected layer 2 and cleared hover, got %d %+v", s.Layer, s.Hovered)
	}
	if c := s.SelectLayer(1); c.Err != nil || s.Layer != 1 {
		t.Errorf("unexpected result %+v layer=%d", c, s.Layer)
	}
}

func TestSelectFilter(t *testing.T) {
	s := newState(t, dataset.ViewModel)
	s.ActivateThumbnail(2, 3)
	s.Hover(layout.Left, 4)

	c := s.SelectFilter("ab")
	if c.Scope != ScopeLayout || c.Err != nil {
		t.Fatalf("unexpected change %+v", c)
	}
	if s.Hovered != nil || s.Drilldown != nil || s.Mode != Thumbnail {
		t.Errorf("expected hover and drilldown cleared, got %+v", s.Snapshot())
	}
	if got := s.Shape(); got.LeftLen != 2 || got.RightLen != 3 {
		t.Errorf("expected ab shape, got %+v", got)
	}

	c = s.SelectFilter("nope")
	if c.Scope != ScopeNone || !herrors.IsCode(c.Err, herrors.ErrInvalidFilter) || s.Filter != "ab" {
		t.Errorf("expected rejected filter switch, got %+v filter=%s", c, s.Filter)
	}
}

func TestToggleExpand_PreservesHover(t *testing.T) {
	s := newState(t, dataset.ViewNeuron)
	s.Hover(layout.Left, 2)

	if c := s.ToggleExpand(); c.Scope != ScopeView || s.Mode != Expanded {
		t.Fatalf("expected expanded, got %+v %v", c, s.Mode)
	}
	if s.Hovered == nil || s.Hovered.Index != 2 {
		t.Errorf("expected hover preserved, got %+v", s.Hovered)
	}
	s.ToggleExpand()
	if s.Mode != Collapsed || s.Hovered == nil {
		t.Errorf("expected collapsed with hover, got %v %+v", s.Mode, s.Hovered)
	}
}

func TestActivateThumbnail(t *testing.T) {
	s := newState(t, dataset.ViewModel)

	c := s.ActivateThumbnail(1, 2)
	if c.Scope != ScopeDetail || s.Mode != Detail || *s.Drilldown != (Target{1, 2}) {
		t.Fatalf("expected detail for (1,2), got %+v", s.Snapshot())
	}

	s.ActivateThumbnail(0, 0)
	if *s.Drilldown != (Target{0, 0}) {
		t.Errorf("expected target replaced, got %+v", s.Drilldown)
	}

	c = s.ActivateThumbnail(0, 0)
	if c.Scope != ScopeDetail || s.Drilldown != nil || s.Mode != Thumbnail {
		t.Errorf("expected detail cleared, got %+v", s.Snapshot())
	}

	c = s.ActivateThumbnail(10, 1)
	if !herrors.IsCode(c.Err, herrors.ErrInvalidLayerIndex) || s.Drilldown.Layer != 2 {
		t.Errorf("expected clamped target, got %+v %+v", c, s.Drilldown)
	}
}

func TestCollapse(t *testing.T) {
	s := newState(t, dataset.ViewModel)
	s.ActivateThumbnail(0, 1)
	if c := s.Collapse(); c.Scope != ScopeDetail || s.Drilldown != nil {
		t.Errorf("expected detail closed, got %+v", c)
	}
	if c := s.Collapse(); c.Scope != ScopeNone {
		t.Errorf("expected no-op, got %+v", c)
	}
}

func TestEmptySequenceRecovered(t *testing.T) {
	ds, err := dataset.FromFilters(
		&dataset.Filter{Name: "all", LeftTokens: tokens(2), RightTokens: tokens(2), Attention: tensor(1, 2, 2, 2)},
		&dataset.Filter{Name: "empty", Attention: tensor(1, 2, 0, 0)},
	)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	s, err := New(ds, Init{View: dataset.ViewHead})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := s.SelectFilter("empty")
	if c.Scope != ScopeLayout || !herrors.IsCode(c.Err, herrors.ErrEmptySequence) || !herrors.IsRecovered(c.Err) {
		t.Errorf("expected recovered empty sequence, got %+v", c)
	}
}

func TestClone_Independent(t *testing.T) {
	s := newState(t, dataset.ViewHead)
	s.Hover(layout.Left, 1)
	c := s.Clone()
	c.ToggleHead(0)
	c.Unhover()
	if !s.Heads.All() || s.Hovered == nil {
		t.Error("clone mutation leaked into original")
	}
}
