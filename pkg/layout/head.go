package layout

import (
	"math"

	"github.com/r3d91ll/heddle/pkg/dataset"
	"github.com/r3d91ll/heddle/pkg/heads"
)

// HeadLayout is the geometry of the head view: a row of head checkboxes,
// two token columns and the arc band between them.
type HeadLayout struct {
	Canvas     Size   `json:"canvas"`
	Empty      bool   `json:"empty"`
	Checkboxes []Rect `json:"checkboxes"`
	Left       []Rect `json:"left"`
	Right      []Rect `json:"right"`

	c HeadConstants
}

// Head lays out the head view for shape.
func (e *Engine) Head(shape dataset.Shape) HeadLayout {
	c := e.C.Head
	l := HeadLayout{
		Empty:      shape.Empty(),
		Checkboxes: make([]Rect, shape.NumHeads),
		c:          c,
	}
	for i := range l.Checkboxes {
		l.Checkboxes[i] = Rect{X: float64(i) * c.CheckboxSize, Y: 0, W: c.CheckboxSize, H: c.CheckboxSize}
	}

	l.Left = tokenColumn(shape.LeftLen, 0, c)
	l.Right = tokenColumn(shape.RightLen, c.BoxWidth+c.MatrixWidth, c)

	rows := shape.MaxLen()
	l.Canvas = Size{
		W: math.Max(2*c.BoxWidth+c.MatrixWidth, float64(shape.NumHeads)*c.CheckboxSize),
		H: float64(rows)*c.BoxHeight + c.TextTop,
	}
	return l
}

func tokenColumn(n int, x float64, c HeadConstants) []Rect {
	col := make([]Rect, n)
	for i := range col {
		col[i] = Rect{X: x, Y: c.TextTop + float64(i)*c.BoxHeight, W: c.BoxWidth, H: c.BoxHeight}
	}
	return col
}

// Tokens returns the token boxes of one side.
func (l HeadLayout) Tokens(side Side) []Rect {
	if side == Right {
		return l.Right
	}
	return l.Left
}

// Arc returns the arc from left token from to right token to.
func (l HeadLayout) Arc(from, to int) Line {
	return Line{
		X1: l.c.BoxWidth,
		Y1: l.c.TextTop + float64(from)*l.c.BoxHeight + l.c.BoxHeight/2,
		X2: l.c.BoxWidth + l.c.MatrixWidth,
		Y2: l.c.TextTop + float64(to)*l.c.BoxHeight + l.c.BoxHeight/2,
	}
}

// HighlightBox returns head's share of the highlight box over token on side.
// Boxes are split evenly among active heads, in head order.
func (l HeadLayout) HighlightBox(side Side, token int, set *heads.Set, head int) Rect {
	x := 0.0
	if side == Right {
		x = l.c.BoxWidth + l.c.MatrixWidth
	}
	return Rect{
		X: x + set.BoxOffset(head, l.c.BoxWidth),
		Y: l.c.TextTop + float64(token)*l.c.BoxHeight,
		W: set.BoxWidth(l.c.BoxWidth),
		H: l.c.BoxHeight,
	}
}

// TextSize returns the token font size.
func (l HeadLayout) TextSize() float64 { return l.c.TextSize }
