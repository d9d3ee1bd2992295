// Package state holds the selection state of one visualization instance and
// the transitions that mutate it.
//
// Every transition returns a Change naming the smallest repaint scope that
// reflects it. Selection errors never leave the state unusable: they are
// clamped or rejected and returned as recovered errors on the Change.
package state

import (
	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/heads"
	"github.com/r3d91ll/heddle/pkg/layout"
)

// Mode is the display mode of the active view.
type Mode int

const (
	Collapsed Mode = iota // neuron view, attention lines only
	Expanded              // neuron view, full mechanics
	Thumbnail             // model view, grid only
	Detail                // model view, grid plus detail panel
)

func (m Mode) String() string {
	switch m {
	case Expanded:
		return "expanded"
	case Thumbnail:
		return "thumbnail"
	case Detail:
		return "detail"
	default:
		return "collapsed"
	}
}

// Scope is the part of the scene a Change invalidates, from narrowest to
// widest.
type Scope int

const (
	ScopeNone      Scope = iota
	ScopeHighlight       // hover highlight attributes
	ScopeOpacity         // head visibility and arc opacity
	ScopeView            // collapsed/expanded swap
	ScopeDetail          // detail panel placement
	ScopeLayout          // full rebuild
)

func (s Scope) String() string {
	switch s {
	case ScopeHighlight:
		return "highlight"
	case ScopeOpacity:
		return "opacity"
	case ScopeView:
		return "view"
	case ScopeDetail:
		return "detail"
	case ScopeLayout:
		return "layout"
	default:
		return "none"
	}
}

// Change describes the effect of one transition.
type Change struct {
	Scope Scope
	// Err is a recovered error, set when the request was clamped or rejected.
	Err error
}

// Token is a hovered token.
type Token struct {
	Side  layout.Side
	Index int
}

// Target is a (layer, head) drilldown target.
type Target struct {
	Layer int `json:"layer"`
	Head  int `json:"head"`
}

// Init carries host defaults for a new State.
type Init struct {
	View          string
	Filter        string
	Layer         *int
	Head          *int
	Heads         []int
	Bidirectional bool
}

// State is the single source of truth for what an instance shows.
type State struct {
	View          string
	Filter        string
	Layer         int
	Head          int
	Heads         *heads.Set
	Hovered       *Token
	Mode          Mode
	Drilldown     *Target
	Bidirectional bool

	data *dataset.Dataset
}

// New creates the initial state: the preferred filter (or the first one),
// layer 0 unless the host chose one, all heads active unless the host chose
// some, no hover, collapsed or thumbnail mode. Out-of-range host values are
// clamped and the first such problem is returned as a recovered error.
func New(data *dataset.Dataset, init Init) (*State, error) {
	s := &State{
		View:          init.View,
		Filter:        data.DefaultFilter(init.Filter),
		Bidirectional: init.Bidirectional,
		data:          data,
	}
	if s.View == dataset.ViewModel {
		s.Mode = Thumbnail
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if init.Filter != "" && init.Filter != s.Filter {
		keep(herrors.InvalidFilter(init.Filter).MarkRecovered())
	}

	shape := s.Shape()
	if init.Layer != nil {
		s.Layer, _ = clampIndex(*init.Layer, shape.NumLayers)
		if s.Layer != *init.Layer {
			keep(herrors.InvalidLayerIndex(*init.Layer, shape.NumLayers).MarkRecovered())
		}
	}
	if init.Head != nil {
		s.Head, _ = clampIndex(*init.Head, shape.NumHeads)
		if s.Head != *init.Head {
			keep(herrors.InvalidHeadIndex(*init.Head, shape.NumHeads).MarkRecovered())
		}
	}
	set, err := heads.NewSetFrom(shape.NumHeads, init.Heads)
	keep(err)
	s.Heads = set
	keep(s.emptyErr())
	return s, firstErr
}

// Data returns the dataset the state selects from.
func (s *State) Data() *dataset.Dataset { return s.data }

// Shape returns the shape of the active filter.
func (s *State) Shape() dataset.Shape {
	shape, _ := s.data.Shape(s.Filter)
	return shape
}

// ActiveFilter returns the active filter.
func (s *State) ActiveFilter() *dataset.Filter {
	f, _ := s.data.GetFilter(s.Filter)
	return f
}

// Hover marks token index on side as hovered.
func (s *State) Hover(side layout.Side, index int) Change {
	shape := s.Shape()
	n := shape.LeftLen
	if side == layout.Right {
		n = shape.RightLen
	}
	if index < 0 || index >= n {
		return Change{Err: herrors.InvalidTokenIndex(side.String(), index, n).MarkRecovered()}
	}
	switch s.View {
	case dataset.ViewModel:
		if s.Drilldown == nil || side != layout.Left {
			return Change{Err: herrors.UnsupportedEvent("hover", "model thumbnail").MarkRecovered()}
		}
	case dataset.ViewNeuron:
		if side != layout.Left {
			return Change{Err: herrors.UnsupportedEvent("hover on right token", s.View).MarkRecovered()}
		}
	}
	s.Hovered = &Token{Side: side, Index: index}
	return Change{Scope: ScopeHighlight}
}

// Unhover clears the hovered token.
func (s *State) Unhover() Change {
	if s.Hovered == nil {
		return Change{}
	}
	s.Hovered = nil
	return Change{Scope: ScopeHighlight}
}

// ToggleHead flips head i in the active head set.
func (s *State) ToggleHead(i int) Change {
	if s.View != dataset.ViewHead {
		return Change{Err: herrors.UnsupportedEvent("click", s.View).MarkRecovered()}
	}
	if err := s.Heads.Toggle(i); err != nil {
		return Change{Err: err}
	}
	return Change{Scope: ScopeOpacity}
}

// DoubleClickHead isolates head i, or restores every head.
func (s *State) DoubleClickHead(i int) Change {
	if s.View != dataset.ViewHead {
		return Change{Err: herrors.UnsupportedEvent("dblclick", s.View).MarkRecovered()}
	}
	if err := s.Heads.DoubleClick(i); err != nil {
		return Change{Err: err}
	}
	return Change{Scope: ScopeOpacity}
}

// SelectLayer switches the displayed layer, clamping out-of-range values.
func (s *State) SelectLayer(i int) Change {
	if s.View == dataset.ViewModel {
		return Change{Err: herrors.UnsupportedEvent("layer", s.View).MarkRecovered()}
	}
	n := s.Shape().NumLayers
	layer, ok := clampIndex(i, n)
	var err error
	if !ok {
		err = herrors.InvalidLayerIndex(i, n).MarkRecovered()
	}
	s.Layer = layer
	s.Hovered = nil
	return Change{Scope: ScopeLayout, Err: err}
}

// SelectHead switches the displayed head of the neuron view, clamping
// out-of-range values.
func (s *State) SelectHead(i int) Change {
	if s.View != dataset.ViewNeuron {
		return Change{Err: herrors.UnsupportedEvent("head", s.View).MarkRecovered()}
	}
	n := s.Shape().NumHeads
	head, ok := clampIndex(i, n)
	var err error
	if !ok {
		err = herrors.InvalidHeadIndex(i, n).MarkRecovered()
	}
	s.Head = head
	s.Hovered = nil
	return Change{Scope: ScopeLayout, Err: err}
}

// SelectFilter swaps the active filter. Hover and drilldown are cleared and
// layer/head are re-clamped to the new shape. Unknown names leave the state
// unchanged.
func (s *State) SelectFilter(name string) Change {
	if !s.data.HasFilter(name) {
		return Change{Err: herrors.InvalidFilter(name).MarkRecovered()}
	}
	s.Filter = name
	s.Hovered = nil
	s.Drilldown = nil
	if s.View == dataset.ViewModel {
		s.Mode = Thumbnail
	}

	shape := s.Shape()
	s.Layer, _ = clampIndex(s.Layer, shape.NumLayers)
	s.Head, _ = clampIndex(s.Head, shape.NumHeads)
	if s.Heads.Len() != shape.NumHeads {
		s.Heads = heads.NewSet(shape.NumHeads)
	}
	return Change{Scope: ScopeLayout, Err: s.emptyErr()}
}

// ToggleExpand swaps the neuron view between collapsed and expanded. The
// hovered token survives the swap.
func (s *State) ToggleExpand() Change {
	if s.View != dataset.ViewNeuron {
		return Change{Err: herrors.UnsupportedEvent("expand", s.View).MarkRecovered()}
	}
	if s.Mode == Expanded {
		s.Mode = Collapsed
	} else {
		s.Mode = Expanded
	}
	return Change{Scope: ScopeView}
}

// Collapse leaves the expanded or detail mode, if active.
func (s *State) Collapse() Change {
	switch {
	case s.Mode == Expanded:
		s.Mode = Collapsed
		return Change{Scope: ScopeView}
	case s.Mode == Detail:
		s.Mode = Thumbnail
		s.Drilldown = nil
		s.Hovered = nil
		return Change{Scope: ScopeDetail}
	}
	return Change{}
}

// ActivateThumbnail opens the detail panel for (layer, head), or closes it
// when (layer, head) is already open.
func (s *State) ActivateThumbnail(layer, head int) Change {
	if s.View != dataset.ViewModel {
		return Change{Err: herrors.UnsupportedEvent("thumbnail", s.View).MarkRecovered()}
	}
	shape := s.Shape()
	l, lok := clampIndex(layer, shape.NumLayers)
	h, hok := clampIndex(head, shape.NumHeads)
	var err error
	switch {
	case !lok:
		err = herrors.InvalidLayerIndex(layer, shape.NumLayers).MarkRecovered()
	case !hok:
		err = herrors.InvalidHeadIndex(head, shape.NumHeads).MarkRecovered()
	}
	if shape.NumLayers == 0 || shape.NumHeads == 0 {
		return Change{Err: err}
	}

	s.Hovered = nil
	if s.Drilldown != nil && s.Drilldown.Layer == l && s.Drilldown.Head == h {
		s.Drilldown = nil
		s.Mode = Thumbnail
	} else {
		s.Drilldown = &Target{Layer: l, Head: h}
		s.Mode = Detail
	}
	return Change{Scope: ScopeDetail, Err: err}
}

// Reset clears every transient selection: hover, drilldown and expansion.
func (s *State) Reset() {
	s.Hovered = nil
	s.Drilldown = nil
	if s.View == dataset.ViewModel {
		s.Mode = Thumbnail
	} else {
		s.Mode = Collapsed
	}
}

// Clone returns an independent copy sharing the read-only dataset.
func (s *State) Clone() *State {
	c := *s
	c.Heads = s.Heads.Clone()
	if s.Hovered != nil {
		h := *s.Hovered
		c.Hovered = &h
	}
	if s.Drilldown != nil {
		d := *s.Drilldown
		c.Drilldown = &d
	}
	return &c
}

func (s *State) emptyErr() error {
	shape := s.Shape()
	if shape.LeftLen == 0 {
		return herrors.EmptySequence(s.Filter, "left").MarkRecovered()
	}
	if shape.RightLen == 0 {
		return herrors.EmptySequence(s.Filter, "right").MarkRecovered()
	}
	return nil
}

// clampIndex clamps i into [0, n). ok is false when clamping changed i.
func clampIndex(i, n int) (int, bool) {
	if n <= 0 {
		return 0, i == 0
	}
	if i < 0 {
		return 0, false
	}
	if i >= n {
		return n - 1, false
	}
	return i, true
}

// Snapshot is a serializable view of a State.
type Snapshot struct {
	View          string        `json:"view"`
	Filter        string        `json:"filter"`
	Filters       []string      `json:"filters"`
	Layer         int           `json:"layer"`
	Head          int           `json:"head"`
	Heads         []int         `json:"heads"`
	Hovered       *HoverJSON    `json:"hovered,omitempty"`
	Mode          string        `json:"mode"`
	Drilldown     *Target       `json:"drilldown,omitempty"`
	Bidirectional bool          `json:"bidirectional"`
	Shape         dataset.Shape `json:"shape"`
}

// HoverJSON is the serialized form of a hovered token.
type HoverJSON struct {
	Side  string `json:"side"`
	Index int    `json:"index"`
}

// Snapshot returns the current state for transport.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		View:          s.View,
		Filter:        s.Filter,
		Filters:       s.data.FilterNames(),
		Layer:         s.Layer,
		Head:          s.Head,
		Heads:         s.Heads.Active(),
		Mode:          s.Mode.String(),
		Bidirectional: s.Bidirectional,
		Shape:         s.Shape(),
	}
	if s.Hovered != nil {
		snap.Hovered = &HoverJSON{Side: s.Hovered.Side.String(), Index: s.Hovered.Index}
	}
	if s.Drilldown != nil {
		d := *s.Drilldown
		snap.Drilldown = &d
	}
	return snap
}
