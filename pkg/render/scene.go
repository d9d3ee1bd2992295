// Package render drives a retained scene graph from the selection state.
//
// A Renderer turns layouts into Elements with stable IDs and pushes them to a
// Scene. After the first build it never redraws on narrow changes: it keeps
// the attributes it has already issued and sends only the differences, so a
// hover costs a handful of Update calls instead of a rebuild.
package render

import (
	"math"
	"strconv"

	"github.com/r3d91ll/heddle/pkg/layout"
)

// Kind classifies scene elements.
type Kind string

const (
	KindGroup Kind = "group"
	KindToken Kind = "token" // token label text
	KindArc   Kind = "arc"   // attention line
	KindCell  Kind = "cell"  // vector component or dot-product cell
	KindPanel Kind = "panel" // detail panel frame
	KindRect  Kind = "rect"  // plain rectangle: backgrounds, boxes, checkboxes
	KindText  Kind = "text"  // headings and labels
)

// Attrs are presentation attributes keyed by their SVG names.
type Attrs map[string]string

// Clone returns a copy of a.
func (a Attrs) Clone() Attrs {
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Merge copies every entry of o into a and returns a.
func (a Attrs) Merge(o Attrs) Attrs {
	for k, v := range o {
		a[k] = v
	}
	return a
}

// Element is one node of the scene.
type Element struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Parent string `json:"parent,omitempty"`
	Attrs  Attrs  `json:"attrs,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Scene is the drawing surface a Renderer targets.
type Scene interface {
	Resize(size layout.Size)
	Draw(el Element)
	Update(id string, attrs Attrs)
	// Remove deletes every element whose ID starts with prefix, along with
	// its children.
	Remove(prefix string)
	Clear()
}

// num formats a coordinate or opacity with at most four decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func rectAttrs(r layout.Rect) Attrs {
	return Attrs{"x": num(r.X), "y": num(r.Y), "width": num(r.W), "height": num(r.H)}
}

func lineAttrs(l layout.Line) Attrs {
	return Attrs{"x1": num(l.X1), "y1": num(l.Y1), "x2": num(l.X2), "y2": num(l.Y2)}
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

func opacity(visible bool) string {
	if visible {
		return "1"
	}
	return "0"
}
