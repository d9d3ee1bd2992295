// Package layout converts dataset shapes into screen-space geometry.
//
// Every function here is pure: the same shape and constants always produce
// the same rectangles. Coordinates are in CSS pixels with the origin at the
// top-left of the visualization surface.
package layout

import (
	"github.com/r3d91ll/heddle/pkg/config"
)

// Side identifies the source (left) or target (right) token column.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide parses "left" or "right".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "left", "l":
		return Left, true
	case "right", "r":
		return Right, true
	}
	return Left, false
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Within reports whether r lies inside a w x h surface anchored at the
// origin, allowing for float rounding at the far edges.
func (r Rect) Within(w, h float64) bool {
	const eps = 1e-9
	return r.X >= 0 && r.Y >= 0 && r.Right() <= w+eps && r.Bottom() <= h+eps
}

// Line is a straight segment, used for attention arcs.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Size is a canvas size.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Region is a horizontal band of the mechanics view.
type Region struct {
	X float64 `json:"x"`
	W float64 `json:"w"`
}

// End returns the right edge of the region.
func (r Region) End() float64 { return r.X + r.W }

// HeadConstants size the head view.
type HeadConstants struct {
	TextSize     float64
	BoxWidth     float64
	BoxHeight    float64
	MatrixWidth  float64
	CheckboxSize float64
	TextTop      float64
}

// ModelConstants size the model view.
type ModelConstants struct {
	SurfaceWidth         float64
	ThumbnailPadding     float64
	BaseRowHeight        float64
	ReferenceHeadCount   int
	DetailWidth          float64
	DetailAttentionWidth float64
	DetailBoxWidth       float64
	DetailBoxHeight      float64
	DetailPadding        float64
	DetailHeadingHeight  float64
	HeadingTextSize      float64
	HeadingPadding       float64
	TextSize             float64
	TextPadding          float64
	DetailXOffsetRatio   float64
	DetailYOffset        float64
	FlipOffset           float64
	BottomMargin         float64
	LineInset            float64
}

// NeuronConstants size the neuron view.
type NeuronConstants struct {
	TextSize       float64
	BoxWidth       float64
	BoxHeight      float64
	HeadingHeight  float64
	HeightPadding  float64
	MatrixWidth    float64
	Padding        float64
	DotWidth       float64
	SoftmaxWidth   float64
	AttentionWidth float64
}

// Constants groups the geometry constants of all views.
type Constants struct {
	Head   HeadConstants
	Model  ModelConstants
	Neuron NeuronConstants
}

// Defaults returns the stock geometry.
func Defaults() Constants {
	return Constants{
		Head: HeadConstants{
			TextSize:     15,
			BoxWidth:     110,
			BoxHeight:    22.5,
			MatrixWidth:  115,
			CheckboxSize: 20,
			TextTop:      30,
		},
		Model: ModelConstants{
			SurfaceWidth:         970,
			ThumbnailPadding:     5,
			BaseRowHeight:        7,
			ReferenceHeadCount:   12,
			DetailWidth:          300,
			DetailAttentionWidth: 140,
			DetailBoxWidth:       80,
			DetailBoxHeight:      18,
			DetailPadding:        15,
			DetailHeadingHeight:  25,
			HeadingTextSize:      15,
			HeadingPadding:       5,
			TextSize:             13,
			TextPadding:          5,
			DetailXOffsetRatio:   0.8,
			DetailYOffset:        20,
			FlipOffset:           8,
			BottomMargin:         3,
			LineInset:            14,
		},
		Neuron: NeuronConstants{
			TextSize:       15,
			BoxWidth:       120,
			BoxHeight:      26,
			HeadingHeight:  42,
			HeightPadding:  100,
			MatrixWidth:    200,
			Padding:        25,
			DotWidth:       70,
			SoftmaxWidth:   70,
			AttentionWidth: 150,
		},
	}
}

// FromConfig returns Defaults with the non-zero overrides of cfg applied.
func FromConfig(cfg config.LayoutConfig) Constants {
	c := Defaults()
	if cfg.SurfaceWidth > 0 {
		c.Model.SurfaceWidth = cfg.SurfaceWidth
	}
	if cfg.ReferenceHeadCount > 0 {
		c.Model.ReferenceHeadCount = cfg.ReferenceHeadCount
	}
	if cfg.ThumbnailRowHeight > 0 {
		c.Model.BaseRowHeight = cfg.ThumbnailRowHeight
	}
	if cfg.MatrixWidth > 0 {
		c.Neuron.MatrixWidth = cfg.MatrixWidth
	}
	return c
}

// Engine computes layouts from a fixed set of constants.
type Engine struct {
	C Constants
}

// New returns an Engine using c.
func New(c Constants) *Engine {
	return &Engine{C: c}
}

// Default returns an Engine using Defaults.
func Default() *Engine {
	return New(Defaults())
}
