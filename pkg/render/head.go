package render

import (
	"github.com/r3d91ll/heddle/pkg/heads"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/state"
)

// Head view element IDs.
const headArcs = "head/arcs"

func headCheckboxID(h int) string { return id("head", "checkbox", h) }
func headTokenID(side layout.Side, i int) string { return id("head", "token", side, i) }
func headTokenBgID(side layout.Side, i int) string { return id("head", "token-bg", side, i) }
func headBoxID(l int, side layout.Side, h, i int) string { return id("head", "box", l, side, h, i) }
func headArcID(l, h, from, to int) string { return id(headArcs, l, h, from, to) }

func (r *Renderer) buildHead(s *state.State) {
	shape := s.Shape()
	l := r.engine.Head(shape)
	r.head = l
	r.begin(l.Canvas)
	if l.Empty {
		r.placeholder(l.Canvas)
		return
	}
	f := s.ActiveFilter()

	for h, cb := range l.Checkboxes {
		r.draw(Element{
			ID:    headCheckboxID(h),
			Kind:  KindRect,
			Attrs: rectAttrs(cb).Merge(Attrs{"stroke": heads.Color(h)}).Merge(r.headCheckbox(s, h)),
		})
	}

	for _, side := range sides {
		for i, box := range l.Tokens(side) {
			r.draw(Element{
				ID:    headTokenBgID(side, i),
				Kind:  KindRect,
				Attrs: rectAttrs(box).Merge(Attrs{"fill": r.palette.TokenHover}).Merge(r.headTokenBg(s, side, i)),
			})
		}
		for h := 0; h < shape.NumHeads; h++ {
			for i := range l.Tokens(side) {
				r.draw(Element{
					ID:    headBoxID(s.Layer, side, h, i),
					Kind:  KindRect,
					Attrs: Attrs{"fill": heads.Color(h)}.Merge(r.headBox(s, side, h, i)),
				})
			}
		}
		toks := tokensOf(f, side)
		for i, box := range l.Tokens(side) {
			x, anchor := box.Right()-5, "end"
			if side == layout.Right {
				x, anchor = box.X+5, "start"
			}
			r.draw(Element{
				ID:   headTokenID(side, i),
				Kind: KindToken,
				Text: toks[i],
				Attrs: Attrs{
					"x":                 num(x),
					"y":                 num(box.Y + box.H/2),
					"text-anchor":       anchor,
					"dominant-baseline": "middle",
					"font-size":         num(l.TextSize()),
					"fill":              r.palette.Text,
				},
			})
		}
	}

	r.draw(Element{ID: headArcs, Kind: KindGroup, Attrs: r.headArcGroup(s)})
	for h := 0; h < shape.NumHeads; h++ {
		for i := 0; i < shape.LeftLen; i++ {
			for j := 0; j < shape.RightLen; j++ {
				r.draw(Element{
					ID:     headArcID(s.Layer, h, i, j),
					Kind:   KindArc,
					Parent: headArcs,
					Attrs: lineAttrs(l.Arc(i, j)).Merge(Attrs{
						"stroke":       heads.Color(h),
						"stroke-width": "2",
					}).Merge(r.headArc(s, h, i, j)),
				})
			}
		}
	}
}

// headHighlight sets the hover-dependent attributes of every element that
// hovering tok touches.
func (r *Renderer) headHighlight(s *state.State, tok *state.Token, out attrSet) {
	out.set(headArcs, r.headArcGroup(s))
	if tok == nil {
		return
	}
	shape := s.Shape()
	out.set(headTokenBgID(tok.Side, tok.Index), r.headTokenBg(s, tok.Side, tok.Index))

	other, n := layout.Right, shape.RightLen
	if tok.Side == layout.Right {
		other, n = layout.Left, shape.LeftLen
	}
	for h := 0; h < shape.NumHeads; h++ {
		for j := 0; j < n; j++ {
			out.set(headBoxID(s.Layer, other, h, j), r.headBox(s, other, h, j))
			from, to := tok.Index, j
			if tok.Side == layout.Right {
				from, to = j, tok.Index
			}
			out.set(headArcID(s.Layer, h, from, to), r.headArc(s, h, from, to))
		}
	}
}

// headOpacity sets every attribute that depends on the active head set.
func (r *Renderer) headOpacity(s *state.State, out attrSet) {
	shape := s.Shape()
	for h := 0; h < shape.NumHeads; h++ {
		out.set(headCheckboxID(h), r.headCheckbox(s, h))
		for _, side := range sides {
			for i := range r.head.Tokens(side) {
				out.set(headBoxID(s.Layer, side, h, i), r.headBox(s, side, h, i))
			}
		}
		for i := 0; i < shape.LeftLen; i++ {
			for j := 0; j < shape.RightLen; j++ {
				out.set(headArcID(s.Layer, h, i, j), r.headArc(s, h, i, j))
			}
		}
	}
}

func (r *Renderer) headCheckbox(s *state.State, h int) Attrs {
	fill := heads.Color(h)
	if !s.Heads.IsActive(h) {
		fill = heads.Lighten(fill)
	}
	return Attrs{"fill": fill}
}

func (r *Renderer) headTokenBg(s *state.State, side layout.Side, i int) Attrs {
	return Attrs{"opacity": opacity(hoveredAt(s, side, i))}
}

// headBox places head h's share of the highlight box over token i on side.
// The box lights up with the attention weight when the hovered token is on
// the opposite side; right-side boxes read the transposed matrix.
func (r *Renderer) headBox(s *state.State, side layout.Side, h, i int) Attrs {
	box := r.head.HighlightBox(side, i, s.Heads, h)
	a := Attrs{"y": num(box.Y), "height": num(box.H), "x": num(box.X), "width": num(box.W), "opacity": "0"}
	if !s.Heads.IsActive(h) {
		a["width"] = "0"
		return a
	}
	if s.Hovered == nil || s.Hovered.Side == side {
		return a
	}
	attn := s.ActiveFilter().Attention[s.Layer][h]
	w := attn[i][s.Hovered.Index]
	if side == layout.Right {
		w = attn[s.Hovered.Index][i]
	}
	a["opacity"] = num(w)
	return a
}

func (r *Renderer) headArcGroup(s *state.State) Attrs {
	return Attrs{"visibility": visibility(s.Hovered == nil)}
}

// headArc sets the opacity of one arc and shows it over the hidden group
// while one of its ends is hovered.
func (r *Renderer) headArc(s *state.State, h, from, to int) Attrs {
	w := s.ActiveFilter().Attention[s.Layer][h][from][to]
	vis := "inherit"
	if hoveredAt(s, layout.Left, from) || hoveredAt(s, layout.Right, to) {
		vis = "visible"
	}
	return Attrs{
		"stroke-opacity": num(heads.ArcOpacity(w, s.Heads, h)),
		"visibility":     vis,
	}
}
