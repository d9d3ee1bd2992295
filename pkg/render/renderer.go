package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/r3d91ll/heddle/pkg/dataset"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/state"
)

// IDBackground and IDPlaceholder are the IDs of the elements every build
// starts with.
const (
	IDBackground  = "background"
	IDPlaceholder = "placeholder"
)

// PlaceholderText is shown when the active filter has no tokens.
const PlaceholderText = "No tokens to display"

var sides = [...]layout.Side{layout.Left, layout.Right}

// Renderer paints one State onto one Scene.
type Renderer struct {
	scene   Scene
	engine  *layout.Engine
	palette Palette

	built  bool
	issued map[string]Attrs
	prev   *state.Token

	head   layout.HeadLayout
	model  layout.ModelLayout
	neuron [2]layout.NeuronLayout // collapsed, expanded
	canvas layout.Size
}

// New returns a Renderer drawing onto scene.
func New(scene Scene, engine *layout.Engine, palette Palette) *Renderer {
	if engine == nil {
		engine = layout.Default()
	}
	return &Renderer{
		scene:   scene,
		engine:  engine,
		palette: palette,
		issued:  make(map[string]Attrs),
	}
}

// Scene returns the scene the renderer draws onto.
func (r *Renderer) Scene() Scene { return r.scene }

// Palette returns the active palette.
func (r *Renderer) Palette() Palette { return r.palette }

// Canvas returns the canvas size of the last build.
func (r *Renderer) Canvas() layout.Size { return r.canvas }

// Built reports whether a full build has happened.
func (r *Renderer) Built() bool { return r.built }

// Paint brings the scene in line with s. ScopeLayout, and the first paint,
// rebuild the scene; every other scope updates only the elements whose
// attributes depend on that part of the state.
func (r *Renderer) Paint(s *state.State, scope state.Scope) {
	switch {
	case !r.built || scope == state.ScopeLayout:
		r.build(s)
	case scope == state.ScopeNone:
		return
	default:
		r.refresh(s, scope)
	}
	r.prev = nil
	if s.Hovered != nil {
		t := *s.Hovered
		r.prev = &t
	}
}

// Reset forgets everything drawn and clears the scene.
func (r *Renderer) Reset() {
	r.scene.Clear()
	r.issued = make(map[string]Attrs)
	r.built = false
	r.prev = nil
}

// Attr returns the last value issued for attribute key of element id.
func (r *Renderer) Attr(id, key string) (string, bool) {
	a, ok := r.issued[id]
	if !ok {
		return "", false
	}
	v, ok := a[key]
	return v, ok
}

// Has reports whether element id is currently drawn.
func (r *Renderer) Has(id string) bool {
	_, ok := r.issued[id]
	return ok
}

func (r *Renderer) build(s *state.State) {
	r.scene.Clear()
	r.issued = make(map[string]Attrs)
	r.built = true

	switch s.View {
	case dataset.ViewModel:
		r.buildModel(s)
	case dataset.ViewNeuron:
		r.buildNeuron(s)
	default:
		r.buildHead(s)
	}
}

func (r *Renderer) refresh(s *state.State, scope state.Scope) {
	if s.Shape().Empty() {
		return
	}
	pending := attrSet{}
	switch s.View {
	case dataset.ViewModel:
		switch scope {
		case state.ScopeHighlight:
			r.modelHighlight(s, r.prev, pending)
			r.modelHighlight(s, s.Hovered, pending)
		case state.ScopeDetail:
			r.modelDetail(s, pending)
		}
	case dataset.ViewNeuron:
		switch scope {
		case state.ScopeHighlight:
			r.neuronHighlight(s, r.prev, pending)
			r.neuronHighlight(s, s.Hovered, pending)
		case state.ScopeView:
			r.neuronMode(s, pending)
			r.neuronHighlight(s, r.prev, pending)
			r.neuronHighlight(s, s.Hovered, pending)
		}
	default:
		switch scope {
		case state.ScopeHighlight:
			r.headHighlight(s, r.prev, pending)
			r.headHighlight(s, s.Hovered, pending)
		case state.ScopeOpacity:
			r.headOpacity(s, pending)
			r.headHighlight(s, s.Hovered, pending)
		}
	}
	r.apply(pending)
}

// begin resizes the scene and draws the background.
func (r *Renderer) begin(size layout.Size) {
	r.canvas = size
	r.scene.Resize(size)
	r.draw(Element{
		ID:    IDBackground,
		Kind:  KindRect,
		Attrs: rectAttrs(layout.Rect{W: size.W, H: size.H}).Merge(Attrs{"fill": r.palette.Background}),
	})
}

func (r *Renderer) placeholder(size layout.Size) {
	r.draw(Element{
		ID:   IDPlaceholder,
		Kind: KindText,
		Text: PlaceholderText,
		Attrs: Attrs{
			"x":           num(size.W / 2),
			"y":           num(size.H / 2),
			"text-anchor": "middle",
			"fill":        r.palette.Text,
		},
	})
}

func (r *Renderer) draw(el Element) {
	if el.Attrs == nil {
		el.Attrs = Attrs{}
	}
	r.scene.Draw(el)
	r.issued[el.ID] = el.Attrs.Clone()
}

func (r *Renderer) remove(prefix string) {
	r.scene.Remove(prefix)
	for id := range r.issued {
		if inSubtree(id, prefix) {
			delete(r.issued, id)
		}
	}
}

// apply issues one Update per element whose pending attributes differ from
// what was issued before. Elements that were never drawn are skipped.
func (r *Renderer) apply(pending attrSet) {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		cur, ok := r.issued[id]
		if !ok {
			continue
		}
		diff := Attrs{}
		for k, v := range pending[id] {
			if old, ok := cur[k]; !ok || old != v {
				diff[k] = v
			}
		}
		if len(diff) == 0 {
			continue
		}
		r.scene.Update(id, diff)
		cur.Merge(diff)
	}
}

// attrSet collects pending attribute values per element.
type attrSet map[string]Attrs

func (p attrSet) set(id string, a Attrs) {
	if cur, ok := p[id]; ok {
		cur.Merge(a)
		return
	}
	p[id] = a.Clone()
}

// id joins parts with "/".
func id(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('/')
		}
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// inSubtree reports whether id is prefix or one of its descendants.
func inSubtree(id, prefix string) bool {
	return id == prefix || strings.HasPrefix(id, prefix+"/")
}

func tokensOf(f *dataset.Filter, side layout.Side) []string {
	if side == layout.Right {
		return f.RightTokens
	}
	return f.LeftTokens
}

func hoveredAt(s *state.State, side layout.Side, i int) bool {
	return s.Hovered != nil && s.Hovered.Side == side && s.Hovered.Index == i
}
