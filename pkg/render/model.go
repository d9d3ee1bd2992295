package render

import (
	"fmt"

	"github.com/r3d91ll/heddle/pkg/heads"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/state"
)

// IDDetail is the detail panel. Everything inside the panel shares it as an
// ID prefix, so one Remove closes it.
const IDDetail = "model/detail"

func modelThumbID(l, h int) string { return id("model", "thumb", l, h) }
func modelThumbBgID(l, h int) string { return id("model", "thumb-bg", l, h) }
func modelDetailTokenBgID(i int) string {
	return id(IDDetail, "token-bg", layout.Left, i)
}
func modelDetailLinesID(i int) string { return id(IDDetail, "lines", i) }

func (r *Renderer) buildModel(s *state.State) {
	shape := s.Shape()
	l := r.engine.Model(shape)
	r.model = l
	r.begin(l.Canvas)
	if l.Empty {
		r.placeholder(l.Canvas)
		return
	}
	c := l.Constants()
	data := s.Data()
	attn := s.ActiveFilter().Attention

	r.draw(Element{
		ID:   "model/heading/heads",
		Kind: KindText,
		Text: "Heads",
		Attrs: Attrs{
			"x":           num(l.Axis + (l.Canvas.W-l.Axis)/2),
			"y":           num(c.HeadingTextSize),
			"text-anchor": "middle",
			"font-size":   num(c.HeadingTextSize),
			"fill":        r.palette.Text,
		},
	})
	midY := l.Axis + (l.Canvas.H-l.Axis)/2
	r.draw(Element{
		ID:   "model/heading/layers",
		Kind: KindText,
		Text: "Layers",
		Attrs: Attrs{
			"x":           num(c.HeadingTextSize),
			"y":           num(midY),
			"text-anchor": "middle",
			"font-size":   num(c.HeadingTextSize),
			"fill":        r.palette.Text,
			"transform":   fmt.Sprintf("rotate(-90 %s %s)", num(c.HeadingTextSize), num(midY)),
		},
	})
	for h := 0; h < shape.NumHeads; h++ {
		x, y := l.HeadLabelAt(h)
		r.draw(Element{
			ID:    id("model", "label", "head", h),
			Kind:  KindText,
			Text:  fmt.Sprint(data.HeadLabel(h)),
			Attrs: Attrs{"x": num(x), "y": num(y), "text-anchor": "middle", "font-size": num(c.TextSize), "fill": r.palette.Text},
		})
	}
	for ly := 0; ly < shape.NumLayers; ly++ {
		x, y := l.LayerLabelAt(ly)
		r.draw(Element{
			ID:    id("model", "label", "layer", ly),
			Kind:  KindText,
			Text:  fmt.Sprint(data.LayerLabel(ly)),
			Attrs: Attrs{"x": num(x), "y": num(y), "text-anchor": "end", "dominant-baseline": "middle", "font-size": num(c.TextSize), "fill": r.palette.Text},
		})
	}

	for ly := 0; ly < shape.NumLayers; ly++ {
		for h := 0; h < shape.NumHeads; h++ {
			thumb := modelThumbID(ly, h)
			r.draw(Element{
				ID:    modelThumbBgID(ly, h),
				Kind:  KindRect,
				Attrs: rectAttrs(l.Thumbnail(ly, h)).Merge(Attrs{"stroke": heads.Color(ly)}).Merge(r.modelThumbBg(s, ly, h)),
			})
			r.draw(Element{ID: thumb, Kind: KindGroup})
			for i := 0; i < shape.LeftLen; i++ {
				for j := 0; j < shape.RightLen; j++ {
					r.draw(Element{
						ID:     id(thumb, i, j),
						Kind:   KindArc,
						Parent: thumb,
						Attrs: lineAttrs(l.ThumbnailLine(ly, h, i, j)).Merge(Attrs{
							"stroke":         heads.Color(ly),
							"stroke-width":   "2.2",
							"stroke-opacity": num(attn[ly][h][i][j]),
						}),
					})
				}
			}
		}
	}
	r.buildDetail(s)
}

// buildDetail draws the detail panel for the current drilldown, if any.
func (r *Renderer) buildDetail(s *state.State) {
	if s.Drilldown == nil {
		return
	}
	t := *s.Drilldown
	l := r.model
	d := l.Detail(t.Layer, t.Head)
	c := l.Constants()
	f := s.ActiveFilter()
	attn := f.Attention[t.Layer][t.Head]

	r.draw(Element{
		ID:    IDDetail,
		Kind:  KindPanel,
		Attrs: rectAttrs(d.Panel).Merge(Attrs{"fill": r.palette.Background, "stroke": heads.Color(t.Layer), "stroke-width": "1"}),
	})
	r.draw(Element{
		ID:     id(IDDetail, "heading"),
		Kind:   KindText,
		Parent: IDDetail,
		Text:   fmt.Sprintf("Layer %d Head %d", s.Data().LayerLabel(t.Layer), s.Data().HeadLabel(t.Head)),
		Attrs: Attrs{
			"x":           num(d.Heading.X + d.Heading.W/2),
			"y":           num(d.Heading.Y + c.HeadingTextSize),
			"text-anchor": "middle",
			"font-size":   num(c.HeadingTextSize),
			"fill":        r.palette.Text,
		},
	})
	for _, side := range sides {
		for i, tok := range tokensOf(f, side) {
			box := d.Token(side, i)
			if side == layout.Left {
				r.draw(Element{
					ID:     modelDetailTokenBgID(i),
					Kind:   KindRect,
					Parent: IDDetail,
					Attrs:  rectAttrs(box).Merge(Attrs{"fill": r.palette.ThumbHighlight}).Merge(r.modelDetailTokenBg(s, i)),
				})
			}
			x, anchor := box.Right()-c.TextPadding, "end"
			if side == layout.Right {
				x, anchor = box.X+c.TextPadding, "start"
			}
			r.draw(Element{
				ID:     id(IDDetail, "token", side, i),
				Kind:   KindToken,
				Parent: IDDetail,
				Text:   tok,
				Attrs: Attrs{
					"x":                 num(x),
					"y":                 num(box.Y + box.H/2),
					"text-anchor":       anchor,
					"dominant-baseline": "middle",
					"font-size":         num(c.TextSize),
					"fill":              r.palette.Text,
				},
			})
		}
	}
	for i := range f.LeftTokens {
		lines := modelDetailLinesID(i)
		r.draw(Element{ID: lines, Kind: KindGroup, Parent: IDDetail, Attrs: r.modelDetailLines(s, i)})
		for j := range f.RightTokens {
			r.draw(Element{
				ID:     id(lines, j),
				Kind:   KindArc,
				Parent: lines,
				Attrs: lineAttrs(d.Line(i, j)).Merge(Attrs{
					"stroke":         heads.Color(t.Layer),
					"stroke-width":   "2",
					"stroke-opacity": num(attn[i][j]),
				}),
			})
		}
	}
}

// modelDetail replaces the detail panel and re-marks the selected thumbnail.
func (r *Renderer) modelDetail(s *state.State, out attrSet) {
	r.remove(IDDetail)
	r.buildDetail(s)
	shape := s.Shape()
	for l := 0; l < shape.NumLayers; l++ {
		for h := 0; h < shape.NumHeads; h++ {
			out.set(modelThumbBgID(l, h), r.modelThumbBg(s, l, h))
		}
	}
}

// modelHighlight dims every detail row but the hovered one.
func (r *Renderer) modelHighlight(s *state.State, tok *state.Token, out attrSet) {
	for i := 0; i < s.Shape().LeftLen; i++ {
		out.set(modelDetailLinesID(i), r.modelDetailLines(s, i))
	}
	if tok != nil && tok.Side == layout.Left {
		out.set(modelDetailTokenBgID(tok.Index), r.modelDetailTokenBg(s, tok.Index))
	}
}

func (r *Renderer) modelThumbBg(s *state.State, l, h int) Attrs {
	if s.Drilldown != nil && s.Drilldown.Layer == l && s.Drilldown.Head == h {
		return Attrs{"fill": r.palette.ThumbHighlight, "stroke-opacity": ".8"}
	}
	return Attrs{"fill": r.palette.Background, "stroke-opacity": "0"}
}

func (r *Renderer) modelDetailTokenBg(s *state.State, i int) Attrs {
	return Attrs{"opacity": opacity(hoveredAt(s, layout.Left, i))}
}

func (r *Renderer) modelDetailLines(s *state.State, i int) Attrs {
	return Attrs{"opacity": opacity(s.Hovered == nil || s.Hovered.Index == i)}
}
