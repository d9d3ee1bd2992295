package render

import (
	"encoding/json"

	"github.com/r3d91ll/heddle/pkg/layout"
)

// Op names.
const (
	OpResize = "resize"
	OpDraw   = "draw"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Op is one recorded scene operation, shaped as a JSON patch for hosts that
// mirror the scene elsewhere.
type Op struct {
	Op      string       `json:"op"`
	ID      string       `json:"id,omitempty"`
	Element *Element     `json:"element,omitempty"`
	Attrs   Attrs        `json:"attrs,omitempty"`
	Size    *layout.Size `json:"size,omitempty"`
}

// OpLog is a Scene that records operations instead of drawing them.
type OpLog struct {
	ops []Op
}

// NewOpLog returns an empty log.
func NewOpLog() *OpLog { return &OpLog{} }

func (l *OpLog) Resize(size layout.Size) {
	l.ops = append(l.ops, Op{Op: OpResize, Size: &size})
}

func (l *OpLog) Draw(el Element) {
	el.Attrs = el.Attrs.Clone()
	l.ops = append(l.ops, Op{Op: OpDraw, ID: el.ID, Element: &el})
}

func (l *OpLog) Update(id string, attrs Attrs) {
	l.ops = append(l.ops, Op{Op: OpUpdate, ID: id, Attrs: attrs.Clone()})
}

func (l *OpLog) Remove(prefix string) {
	l.ops = append(l.ops, Op{Op: OpRemove, ID: prefix})
}

func (l *OpLog) Clear() {
	l.ops = append(l.ops, Op{Op: OpClear})
}

// Ops returns the recorded operations.
func (l *OpLog) Ops() []Op { return l.ops }

// Len returns the number of recorded operations.
func (l *OpLog) Len() int { return len(l.ops) }

// Count returns how many operations named op were recorded.
func (l *OpLog) Count(op string) int {
	n := 0
	for _, o := range l.ops {
		if o.Op == op {
			n++
		}
	}
	return n
}

// Drain returns the recorded operations and empties the log.
func (l *OpLog) Drain() []Op {
	ops := l.ops
	l.ops = nil
	return ops
}

// MarshalJSON encodes the recorded operations as a JSON array.
func (l *OpLog) MarshalJSON() ([]byte, error) {
	if l.ops == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.ops)
}

// multiScene fans every operation out to several scenes.
type multiScene []Scene

// Multi returns a Scene that forwards every operation to each of scenes in
// order.
func Multi(scenes ...Scene) Scene {
	return multiScene(scenes)
}

func (m multiScene) Resize(size layout.Size) {
	for _, s := range m {
		s.Resize(size)
	}
}

func (m multiScene) Draw(el Element) {
	for _, s := range m {
		s.Draw(el)
	}
}

func (m multiScene) Update(id string, attrs Attrs) {
	for _, s := range m {
		s.Update(id, attrs)
	}
}

func (m multiScene) Remove(prefix string) {
	for _, s := range m {
		s.Remove(prefix)
	}
}

func (m multiScene) Clear() {
	for _, s := range m {
		s.Clear()
	}
}
