package render

import (
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/mechanics"
	"github.com/r3d91ll/heddle/pkg/state"
)

// Neuron view groups. The collapsed and expanded renditions are both built
// up front and swapped by visibility.
const (
	neuronCollapsed = "neuron/collapsed"
	neuronExpanded  = "neuron/expanded"

	neuronProducts = neuronExpanded + "/products"
	neuronDots     = neuronExpanded + "/dots"
	neuronSoftmax  = neuronExpanded + "/softmax"
)

var neuronHeadings = [...]struct{ region, label string }{
	{"queries", "Query q"},
	{"keys", "Key k"},
	{"product", "q × k (elementwise)"},
	{"dot", "q · k"},
	{"softmax", "Softmax"},
}

func neuronTokenID(group string, side layout.Side, i int) string {
	return id(group, "token", side, i)
}
func neuronTokenBgID(group string, side layout.Side, i int) string {
	return id(group, "token-bg", side, i)
}
func neuronToggleID(group string, i int) string { return id(group, "toggle", i) }
func neuronLinesID(group string, i int) string { return id(group, "lines", i) }
func neuronQueryBorderID(i int) string { return id(neuronExpanded, "query-border", i) }
func neuronProductRowID(j int) string { return id(neuronProducts, j) }
func neuronProductID(j, k int) string { return id(neuronProducts, j, k) }
func neuronDotID(j int) string { return id(neuronDots, j) }
func neuronSoftmaxID(j int) string { return id(neuronSoftmax, j) }

// neuronAttn returns the [from][to] matrix of the displayed layer and head.
func neuronAttn(s *state.State) [][]float64 {
	return s.ActiveFilter().Attention[s.Layer][s.Head]
}

func neuronExpandable(s *state.State) bool {
	return s.ActiveFilter().HasVectors()
}

func (r *Renderer) buildNeuron(s *state.State) {
	shape := s.Shape()
	collapsed := r.engine.Neuron(shape, false)
	expanded := r.engine.Neuron(shape, true)
	r.neuron = [2]layout.NeuronLayout{collapsed, expanded}

	canvas := collapsed.Canvas
	if neuronExpandable(s) {
		canvas = expanded.Canvas
	}
	r.begin(canvas)
	if collapsed.Empty {
		r.placeholder(canvas)
		return
	}

	r.draw(Element{ID: neuronCollapsed, Kind: KindGroup, Attrs: r.neuronGroup(s, false)})
	r.buildNeuronTokens(s, neuronCollapsed, collapsed)
	attn := neuronAttn(s)
	for i := 0; i < shape.LeftLen; i++ {
		lines := neuronLinesID(neuronCollapsed, i)
		r.draw(Element{ID: lines, Kind: KindGroup, Parent: neuronCollapsed, Attrs: r.neuronLines(s, i)})
		for j := 0; j < shape.RightLen; j++ {
			r.draw(Element{
				ID:     id(lines, j),
				Kind:   KindArc,
				Parent: lines,
				Attrs: lineAttrs(collapsed.AttentionLine(i, j)).Merge(Attrs{
					"stroke":         r.palette.Attention,
					"stroke-width":   "2",
					"stroke-opacity": num(attn[i][j]),
				}),
			})
		}
	}

	if !neuronExpandable(s) {
		return
	}
	r.buildNeuronExpanded(s, expanded)
}

func (r *Renderer) buildNeuronExpanded(s *state.State, l layout.NeuronLayout) {
	shape := s.Shape()
	f := s.ActiveFilter()
	queries := f.Queries[s.Layer][s.Head]
	keys := f.Keys[s.Layer][s.Head]
	attn := neuronAttn(s)

	r.draw(Element{ID: neuronExpanded, Kind: KindGroup, Attrs: r.neuronGroup(s, true)})
	regions := map[string]layout.Region{
		"queries": l.Queries, "keys": l.Keys, "product": l.Product, "dot": l.Dot, "softmax": l.Softmax,
	}
	for _, h := range neuronHeadings {
		r.draw(Element{
			ID:     id(neuronExpanded, "heading", h.region),
			Kind:   KindText,
			Parent: neuronExpanded,
			Text:   h.label,
			Attrs: Attrs{
				"x":    num(regions[h.region].X),
				"y":    num(l.HeadingY()),
				"fill": r.palette.Text,
			},
		})
	}
	r.buildNeuronTokens(s, neuronExpanded, l)

	for i := 0; i < shape.LeftLen; i++ {
		r.buildVector(id(neuronExpanded, "query", i), l, l.Queries, i, queries[i])
		border := l.Element(l.Queries, i, 0)
		border.W = l.Queries.W
		r.draw(Element{
			ID:     neuronQueryBorderID(i),
			Kind:   KindRect,
			Parent: neuronExpanded,
			Attrs:  rectAttrs(border).Merge(Attrs{"fill": "none", "stroke-width": "2"}).Merge(r.neuronQueryBorder(s, i)),
		})

		lines := neuronLinesID(neuronExpanded, i)
		r.draw(Element{ID: lines, Kind: KindGroup, Parent: neuronExpanded, Attrs: r.neuronQueryKeyLines(s, i)})
		for j := 0; j < shape.RightLen; j++ {
			r.draw(Element{
				ID:     id(lines, j),
				Kind:   KindArc,
				Parent: lines,
				Attrs: lineAttrs(l.QueryKeyLine(i, j)).Merge(Attrs{
					"stroke":         r.palette.Connector,
					"stroke-width":   "2",
					"stroke-opacity": num(attn[i][j]),
				}),
			})
		}
	}
	for j := 0; j < shape.RightLen; j++ {
		r.buildVector(id(neuronExpanded, "key", j), l, l.Keys, j, keys[j])
	}

	c := neuronComputation(s)
	r.draw(Element{ID: neuronProducts, Kind: KindGroup, Parent: neuronExpanded, Attrs: r.neuronMechanicsGroup(s)})
	r.draw(Element{ID: neuronDots, Kind: KindGroup, Parent: neuronExpanded, Attrs: r.neuronMechanicsGroup(s)})
	r.draw(Element{ID: neuronSoftmax, Kind: KindGroup, Parent: neuronExpanded, Attrs: r.neuronMechanicsGroup(s)})
	for j := 0; j < shape.RightLen; j++ {
		r.draw(Element{ID: neuronProductRowID(j), Kind: KindGroup, Parent: neuronProducts, Attrs: r.neuronRow(c, j)})
		for k := 0; k < l.VectorSize; k++ {
			r.draw(Element{
				ID:     neuronProductID(j, k),
				Kind:   KindCell,
				Parent: neuronProductRowID(j),
				Attrs:  rectAttrs(l.Element(l.Product, j, k)).Merge(r.neuronProduct(c, j, k)),
			})
		}
		r.draw(Element{
			ID:     neuronDotID(j),
			Kind:   KindCell,
			Parent: neuronDots,
			Attrs:  rectAttrs(l.DotCell(j)).Merge(r.neuronDot(c, j)),
		})
		r.draw(Element{
			ID:     neuronSoftmaxID(j),
			Kind:   KindRect,
			Parent: neuronSoftmax,
			Attrs:  Attrs{"fill": r.palette.Attention}.Merge(r.neuronSoftmaxBar(c, j)),
		})
	}
}

// buildVector draws the components of one query or key vector.
func (r *Renderer) buildVector(prefix string, l layout.NeuronLayout, region layout.Region, row int, v []float64) {
	for k, x := range v {
		r.draw(Element{
			ID:     id(prefix, k),
			Kind:   KindCell,
			Parent: neuronExpanded,
			Attrs: rectAttrs(l.Element(region, row, k)).Merge(Attrs{
				"fill":    mechanics.Fill(x, r.palette.Positive, r.palette.Negative),
				"opacity": num(mechanics.ElementOpacity(x)),
			}),
		})
	}
}

// buildNeuronTokens draws both token columns of one rendition.
func (r *Renderer) buildNeuronTokens(s *state.State, group string, l layout.NeuronLayout) {
	f := s.ActiveFilter()
	expanded := group == neuronExpanded
	for _, side := range sides {
		toks := tokensOf(f, side)
		for i := range toks {
			box := l.Token(side, i)
			fill := r.palette.HighlightLeft
			if side == layout.Right {
				fill = r.palette.HighlightRight
			}
			r.draw(Element{
				ID:     neuronTokenBgID(group, side, i),
				Kind:   KindRect,
				Parent: group,
				Attrs:  rectAttrs(box).Merge(Attrs{"fill": fill}).Merge(r.neuronTokenBg(s, side, i)),
			})
			x, anchor := box.Right()-5, "end"
			if side == layout.Right {
				x, anchor = box.X+5, "start"
			}
			r.draw(Element{
				ID:     neuronTokenID(group, side, i),
				Kind:   KindToken,
				Parent: group,
				Text:   toks[i],
				Attrs: Attrs{
					"x":                 num(x),
					"y":                 num(box.Y + box.H/2),
					"text-anchor":       anchor,
					"dominant-baseline": "middle",
					"font-size":         num(l.TextSize()),
				}.Merge(r.neuronTokenText(s, side, i)),
			})
		}
	}
	if !neuronExpandable(s) {
		return
	}
	sign := "+"
	if expanded {
		sign = "−"
	}
	for i := range f.LeftTokens {
		t := l.ExpandToggle(i)
		r.draw(Element{
			ID:     neuronToggleID(group, i),
			Kind:   KindText,
			Parent: group,
			Text:   sign,
			Attrs: Attrs{
				"x":    num(t.X + t.W/2),
				"y":    num(t.Y + t.H/2),
				"fill": r.palette.Icon,
			}.Merge(r.neuronToggle(s, i)),
		})
	}
}

// neuronMode swaps the collapsed and expanded renditions.
func (r *Renderer) neuronMode(s *state.State, out attrSet) {
	out.set(neuronCollapsed, r.neuronGroup(s, false))
	out.set(neuronExpanded, r.neuronGroup(s, true))
}

// neuronHighlight sets the hover-dependent attributes touched by tok: the
// per-token elements of tok in both renditions plus every attribute that
// depends only on whether and where anything is hovered.
func (r *Renderer) neuronHighlight(s *state.State, tok *state.Token, out attrSet) {
	shape := s.Shape()
	for i := 0; i < shape.LeftLen; i++ {
		out.set(neuronLinesID(neuronCollapsed, i), r.neuronLines(s, i))
	}
	for _, g := range [...]string{neuronCollapsed, neuronExpanded} {
		for j := 0; j < shape.RightLen; j++ {
			out.set(neuronTokenBgID(g, layout.Right, j), r.neuronTokenBg(s, layout.Right, j))
		}
	}
	if neuronExpandable(s) {
		out.set(neuronProducts, r.neuronMechanicsGroup(s))
		out.set(neuronDots, r.neuronMechanicsGroup(s))
		out.set(neuronSoftmax, r.neuronMechanicsGroup(s))
		c := neuronComputation(s)
		for j := 0; j < shape.RightLen; j++ {
			out.set(neuronProductRowID(j), r.neuronRow(c, j))
			for k := 0; k < shape.VectorSize; k++ {
				out.set(neuronProductID(j, k), r.neuronProduct(c, j, k))
			}
			out.set(neuronDotID(j), r.neuronDot(c, j))
			out.set(neuronSoftmaxID(j), r.neuronSoftmaxBar(c, j))
		}
	}
	if tok == nil || tok.Side != layout.Left {
		return
	}

	i := tok.Index
	for _, g := range [...]string{neuronCollapsed, neuronExpanded} {
		out.set(neuronTokenBgID(g, layout.Left, i), r.neuronTokenBg(s, layout.Left, i))
		out.set(neuronTokenID(g, layout.Left, i), r.neuronTokenText(s, layout.Left, i))
		out.set(neuronToggleID(g, i), r.neuronToggle(s, i))
	}
	out.set(neuronQueryBorderID(i), r.neuronQueryBorder(s, i))
	out.set(neuronLinesID(neuronExpanded, i), r.neuronQueryKeyLines(s, i))
}

func (r *Renderer) neuronGroup(s *state.State, expanded bool) Attrs {
	on := s.Mode == state.Expanded && neuronExpandable(s)
	return Attrs{"visibility": visibility(on == expanded)}
}

func (r *Renderer) neuronTokenBg(s *state.State, side layout.Side, i int) Attrs {
	if s.Hovered == nil {
		return Attrs{"opacity": "0"}
	}
	if side == layout.Left {
		return Attrs{"opacity": opacity(hoveredAt(s, side, i))}
	}
	return Attrs{"opacity": num(neuronAttn(s)[s.Hovered.Index][i])}
}

func (r *Renderer) neuronTokenText(s *state.State, side layout.Side, i int) Attrs {
	if hoveredAt(s, side, i) {
		return Attrs{"fill": r.palette.SelectedText, "font-weight": "bold"}
	}
	return Attrs{"fill": r.palette.Text, "font-weight": "normal"}
}

func (r *Renderer) neuronToggle(s *state.State, i int) Attrs {
	return Attrs{"opacity": opacity(hoveredAt(s, layout.Left, i))}
}

// neuronLines shows every row of collapsed attention lines at rest and only
// the hovered row while hovering.
func (r *Renderer) neuronLines(s *state.State, i int) Attrs {
	return Attrs{"opacity": opacity(s.Hovered == nil || s.Hovered.Index == i)}
}

func (r *Renderer) neuronQueryKeyLines(s *state.State, i int) Attrs {
	return Attrs{"opacity": opacity(hoveredAt(s, layout.Left, i))}
}

func (r *Renderer) neuronQueryBorder(s *state.State, i int) Attrs {
	if hoveredAt(s, layout.Left, i) {
		return Attrs{"stroke": r.palette.Connector}
	}
	return Attrs{"stroke": r.palette.VectorBorder}
}

func (r *Renderer) neuronMechanicsGroup(s *state.State) Attrs {
	return Attrs{"opacity": opacity(s.Hovered != nil)}
}

// neuronComputation breaks down the hovered query row, or returns nil when
// nothing is hovered.
func neuronComputation(s *state.State) *mechanics.Computation {
	if s.Hovered == nil {
		return nil
	}
	f := s.ActiveFilter()
	i := s.Hovered.Index
	c := mechanics.Compute(f.Queries[s.Layer][s.Head], f.Keys[s.Layer][s.Head], neuronAttn(s)[i], i, s.Bidirectional)
	return &c
}

// neuronRow hides key rows the hovered query cannot attend to.
func (r *Renderer) neuronRow(c *mechanics.Computation, j int) Attrs {
	if c == nil {
		return Attrs{"opacity": "1"}
	}
	return Attrs{"opacity": opacity(c.Visible[j])}
}

func (r *Renderer) neuronProduct(c *mechanics.Computation, j, k int) Attrs {
	if c == nil {
		return Attrs{"fill": r.palette.Positive, "opacity": "0"}
	}
	v := c.Products[j][k]
	return Attrs{
		"fill":    mechanics.Fill(v, r.palette.Positive, r.palette.Negative),
		"opacity": num(mechanics.ElementOpacity(v)),
	}
}

func (r *Renderer) neuronDot(c *mechanics.Computation, j int) Attrs {
	if c == nil {
		return Attrs{
			"fill":           r.palette.Positive,
			"fill-opacity":   "0",
			"stroke":         r.palette.Positive,
			"stroke-opacity": "0",
			"opacity":        "1",
		}
	}
	v := c.Dots[j]
	color := mechanics.Fill(v, r.palette.Positive, r.palette.Negative)
	return Attrs{
		"fill":           color,
		"fill-opacity":   num(mechanics.ElementOpacity(v)),
		"stroke":         color,
		"stroke-opacity": num(mechanics.DotBorderOpacity(v)),
		"opacity":        opacity(c.Visible[j]),
	}
}

func (r *Renderer) neuronSoftmaxBar(c *mechanics.Computation, j int) Attrs {
	l := r.neuron[1]
	if c == nil {
		return rectAttrs(l.SoftmaxBar(j, 0)).Merge(Attrs{"opacity": "1"})
	}
	return rectAttrs(l.SoftmaxBar(j, c.Softmax[j])).Merge(Attrs{
		"opacity": opacity(c.Visible[j]),
	})
}
