package layout

import (
	"math"

	"github.com/r3d91ll/heddle/pkg/dataset"
)

// NeuronLayout is the geometry of the neuron view. Collapsed it shows two
// token columns joined by attention lines; expanded it shows the query,
// key, elementwise-product, dot-product and softmax columns in between.
type NeuronLayout struct {
	Canvas     Size    `json:"canvas"`
	Empty      bool    `json:"empty"`
	Expanded   bool    `json:"expanded"`
	VectorSize int     `json:"vector_size"`
	ElementW   float64 `json:"element_width"`

	LeftText  Region `json:"left_text"`
	Attention Region `json:"attention"`
	Queries   Region `json:"queries"`
	Keys      Region `json:"keys"`
	Product   Region `json:"product"`
	Dot       Region `json:"dot"`
	Softmax   Region `json:"softmax"`
	RightText Region `json:"right_text"`

	c NeuronConstants
}

// Neuron lays out the neuron view for shape.
func (e *Engine) Neuron(shape dataset.Shape, expanded bool) NeuronLayout {
	c := e.C.Neuron
	l := NeuronLayout{
		Empty:      shape.Empty(),
		Expanded:   expanded,
		VectorSize: shape.VectorSize,
		c:          c,
	}
	if shape.VectorSize > 0 {
		l.ElementW = c.MatrixWidth / float64(shape.VectorSize)
	}

	l.LeftText = Region{X: 0, W: c.BoxWidth}
	if expanded {
		l.Queries = Region{X: l.LeftText.End() + c.Padding, W: c.MatrixWidth}
		l.Keys = Region{X: l.Queries.End() + 1.5*c.Padding, W: c.MatrixWidth}
		l.Product = Region{X: l.Keys.End() + c.Padding, W: c.MatrixWidth}
		l.Dot = Region{X: l.Product.End() + c.Padding, W: c.DotWidth}
		l.Softmax = Region{X: l.Dot.End() + c.Padding, W: c.SoftmaxWidth}
		l.RightText = Region{X: l.Softmax.End() + c.Padding, W: c.BoxWidth}
	} else {
		l.Attention = Region{X: l.LeftText.End(), W: c.AttentionWidth}
		l.RightText = Region{X: l.Attention.End() + c.Padding, W: c.BoxWidth}
	}

	l.Canvas = Size{
		W: l.RightText.End(),
		H: float64(shape.MaxLen())*c.BoxHeight + c.HeightPadding,
	}
	return l
}

// RowY returns the top of token row i.
func (l NeuronLayout) RowY(i int) float64 {
	return l.c.HeadingHeight + float64(i)*l.c.BoxHeight
}

// Token returns the box of token i on side.
func (l NeuronLayout) Token(side Side, i int) Rect {
	r := l.LeftText
	if side == Right {
		r = l.RightText
	}
	return Rect{X: r.X, Y: l.RowY(i), W: r.W, H: l.c.BoxHeight}
}

// Element returns component k of the vector drawn for token row i in
// region. Element widths are matrixWidth/vectorSize, unrounded, so the
// components tile the region exactly.
func (l NeuronLayout) Element(region Region, i, k int) Rect {
	return Rect{
		X: region.X + float64(k)*region.W/float64(l.VectorSize),
		Y: l.RowY(i),
		W: region.W / float64(l.VectorSize),
		H: l.c.BoxHeight - 6,
	}
}

// DotCell returns the dot-product cell for key row i.
func (l NeuronLayout) DotCell(i int) Rect {
	side := l.c.BoxHeight - 4
	return Rect{X: l.Dot.X + 1, Y: l.RowY(i), W: side, H: side}
}

// SoftmaxBar returns the softmax bar for key row i with weight w. Bars are
// at least one pixel wide so zero weights stay visible.
func (l NeuronLayout) SoftmaxBar(i int, w float64) Rect {
	return Rect{
		X: l.Softmax.X,
		Y: l.RowY(i) + 2,
		W: math.Max(w*l.c.SoftmaxWidth, 1),
		H: l.c.BoxHeight - 8,
	}
}

// AttentionLine returns the collapsed-view line from left token from to
// right token to.
func (l NeuronLayout) AttentionLine(from, to int) Line {
	half := l.c.BoxHeight / 2
	return Line{
		X1: l.Attention.X,
		Y1: l.RowY(from) + half,
		X2: l.Attention.End(),
		Y2: l.RowY(to) + half,
	}
}

// QueryKeyLine returns the expanded-view connector from query row from to
// key row to.
func (l NeuronLayout) QueryKeyLine(from, to int) Line {
	half := l.c.BoxHeight / 2
	return Line{
		X1: l.Queries.End() + 1,
		Y1: l.RowY(from) + half,
		X2: l.Keys.X - 3,
		Y2: l.RowY(to) + half,
	}
}

// ExpandToggle returns the plus/minus hit box drawn inside left token i.
func (l NeuronLayout) ExpandToggle(i int) Rect {
	return Rect{X: l.LeftText.X + 5, Y: l.RowY(i) + 4, W: 16, H: 16}
}

// HeadingY returns the baseline of the column headings.
func (l NeuronLayout) HeadingY() float64 { return l.c.HeadingHeight - 12 }

// TextSize returns the token font size.
func (l NeuronLayout) TextSize() float64 { return l.c.TextSize }
