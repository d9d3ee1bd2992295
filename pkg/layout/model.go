package layout

import (
	"math"

	"github.com/r3d91ll/heddle/pkg/dataset"
)

// ModelLayout is the geometry of the model view: a layer x head grid of
// thumbnails under two axis labels, plus a detail panel for one thumbnail.
type ModelLayout struct {
	Canvas    Size    `json:"canvas"`
	Empty     bool    `json:"empty"`
	Axis      float64 `json:"axis"`
	RowHeight float64 `json:"row_height"`
	ThumbW    float64 `json:"thumbnail_width"`
	ThumbH    float64 `json:"thumbnail_height"`
	DetailW   float64 `json:"detail_width"`
	DetailH   float64 `json:"detail_height"`
	NumLayers int     `json:"num_layers"`
	NumHeads  int     `json:"num_heads"`

	c ModelConstants
}

// Model lays out the model view for shape.
func (e *Engine) Model(shape dataset.Shape) ModelLayout {
	c := e.C.Model
	l := ModelLayout{
		Empty:     shape.Empty() || shape.NumLayers == 0 || shape.NumHeads == 0,
		Axis:      c.HeadingTextSize + c.HeadingPadding + c.TextSize + c.TextPadding,
		NumLayers: shape.NumLayers,
		NumHeads:  shape.NumHeads,
		DetailW:   c.DetailWidth,
		c:         c,
	}

	surfaceW := math.Max(c.SurfaceWidth, c.DetailWidth)
	if shape.NumHeads > 0 {
		l.RowHeight = c.BaseRowHeight * (float64(c.ReferenceHeadCount) / float64(shape.NumHeads))
		l.ThumbW = (surfaceW - l.Axis) / float64(shape.NumHeads)
	}
	rows := float64(shape.MaxLen())
	l.ThumbH = rows*l.RowHeight + 2*c.ThumbnailPadding
	l.DetailH = rows*c.DetailBoxHeight + 2*c.DetailPadding + c.DetailHeadingHeight

	gridH := float64(shape.NumLayers)*l.ThumbH + l.Axis
	l.Canvas = Size{W: surfaceW, H: math.Max(gridH, l.DetailH+c.BottomMargin)}
	return l
}

// Thumbnail returns the cell of (layer, head). Cells are row-major by layer.
func (l ModelLayout) Thumbnail(layer, head int) Rect {
	return Rect{
		X: l.Axis + float64(head)*l.ThumbW,
		Y: l.Axis + float64(layer)*l.ThumbH,
		W: l.ThumbW,
		H: l.ThumbH,
	}
}

// ThumbnailLine returns the attention line from source row from to target
// row to inside thumbnail (layer, head).
func (l ModelLayout) ThumbnailLine(layer, head, from, to int) Line {
	t := l.Thumbnail(layer, head)
	x1 := t.X + l.c.ThumbnailPadding
	x2 := math.Max(x1, x1+l.ThumbW-l.c.LineInset)
	y1 := t.Y + l.c.ThumbnailPadding
	return Line{
		X1: x1,
		Y1: y1 + (float64(from)+.5)*l.RowHeight,
		X2: x2,
		Y2: y1 + (float64(to)+.5)*l.RowHeight,
	}
}

// HeadLabelAt returns the anchor of the column label for head.
func (l ModelLayout) HeadLabelAt(head int) (x, y float64) {
	return l.Axis + (float64(head)+.5)*l.ThumbW, l.c.HeadingTextSize + l.c.HeadingPadding + l.c.TextSize
}

// LayerLabelAt returns the anchor of the row label for layer.
func (l ModelLayout) LayerLabelAt(layer int) (x, y float64) {
	return l.c.HeadingTextSize + l.c.HeadingPadding + l.c.TextSize, l.Axis + (float64(layer)+.5)*l.ThumbH
}

// Constants returns the constants the layout was built with.
func (l ModelLayout) Constants() ModelConstants { return l.c }

// DetailLayout is the geometry of the drill-down panel for one thumbnail.
type DetailLayout struct {
	Panel   Rect    `json:"panel"`
	Heading Rect    `json:"heading"`
	LeftX   float64 `json:"left_x"`
	AttnX   float64 `json:"attn_x"`
	RightX  float64 `json:"right_x"`
	RowsY   float64 `json:"rows_y"`

	c ModelConstants
}

// Detail places the detail panel for thumbnail (layer, head). The panel
// starts below and to the right of the thumbnail, flips left when it would
// pass the right edge, moves up when it would pass the bottom, and is
// finally clamped inside the canvas.
func (l ModelLayout) Detail(layer, head int) DetailLayout {
	c := l.c
	t := l.Thumbnail(layer, head)
	w, h := l.DetailW, l.DetailH
	maxX := l.Canvas.W
	maxY := l.Canvas.H - c.BottomMargin

	x := t.X + c.ThumbnailPadding + c.DetailXOffsetRatio*l.ThumbW
	if x+w > maxX {
		x = t.X + c.ThumbnailPadding - w + c.FlipOffset
	}
	y := t.Y + c.ThumbnailPadding + c.DetailYOffset
	if y+h > maxY {
		y = maxY - h
	}
	x = clamp(x, 0, l.Canvas.W-w)
	y = clamp(y, 0, l.Canvas.H-h)

	d := DetailLayout{
		Panel: Rect{X: x, Y: y, W: w, H: h},
		c:     c,
	}
	d.Heading = Rect{X: x, Y: y + c.DetailPadding, W: w, H: c.DetailHeadingHeight}
	d.LeftX = x
	d.AttnX = x + c.DetailBoxWidth
	d.RightX = d.AttnX + c.DetailAttentionWidth
	d.RowsY = d.Heading.Bottom()
	return d
}

// Token returns the box of token i on side inside the panel.
func (d DetailLayout) Token(side Side, i int) Rect {
	x := d.LeftX
	if side == Right {
		x = d.RightX
	}
	return Rect{X: x, Y: d.RowsY + float64(i)*d.c.DetailBoxHeight, W: d.c.DetailBoxWidth, H: d.c.DetailBoxHeight}
}

// Line returns the attention line from source row from to target row to.
func (d DetailLayout) Line(from, to int) Line {
	return Line{
		X1: d.AttnX,
		Y1: d.RowsY + (float64(from)+.5)*d.c.DetailBoxHeight,
		X2: d.AttnX + d.c.DetailAttentionWidth,
		Y2: d.RowsY + (float64(to)+.5)*d.c.DetailBoxHeight,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
