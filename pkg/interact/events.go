package interact

import (
	"github.com/r3d91ll/heddle/pkg/render"
	"github.com/r3d91ll/heddle/pkg/state"
)

// -----------------------------------------------------------------------------
// Event Types
// -----------------------------------------------------------------------------

// EventType names a pointer or keyboard interaction.
type EventType string

const (
	EventHover     EventType = "hover"     // pointer enters a token
	EventUnhover   EventType = "unhover"   // pointer leaves a token
	EventClick     EventType = "click"     // head checkbox click
	EventDblClick  EventType = "dblclick"  // head checkbox double click
	EventLayer     EventType = "layer"     // layer dropdown
	EventHead      EventType = "head"      // head dropdown (neuron view)
	EventFilter    EventType = "filter"    // attention filter dropdown
	EventExpand    EventType = "expand"    // plus/minus toggle (neuron view)
	EventThumbnail EventType = "thumbnail" // thumbnail click (model view)
	EventKey       EventType = "key"       // keyboard
)

// KeyEscape clears the hover and closes the expanded or detail mode.
const KeyEscape = "Escape"

// IsValid returns true if this is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventHover, EventUnhover, EventClick, EventDblClick, EventLayer,
		EventHead, EventFilter, EventExpand, EventThumbnail, EventKey:
		return true
	default:
		return false
	}
}

// AllEventTypes returns every event type in display order.
func AllEventTypes() []EventType {
	return []EventType{
		EventHover, EventUnhover, EventClick, EventDblClick, EventLayer,
		EventHead, EventFilter, EventExpand, EventThumbnail, EventKey,
	}
}

// Event is one interaction delivered by a host.
type Event struct {
	Type EventType `json:"type"`

	// Hover target.
	Side  string `json:"side,omitempty"`
	Index int    `json:"index,omitempty"`

	// Selection targets: checkbox and thumbnail clicks, dropdowns.
	Layer  int    `json:"layer,omitempty"`
	Head   int    `json:"head,omitempty"`
	Filter string `json:"filter,omitempty"`

	Key string `json:"key,omitempty"`
}

// Result reports the effect of one event.
type Result struct {
	// Scope is the widest repaint the event caused.
	Scope state.Scope `json:"-"`
	// Ops are the scene operations the repaint issued.
	Ops []render.Op `json:"ops"`
	// Recovered is set when the event was clamped or rejected.
	Recovered error `json:"-"`
}

// ScopeName returns the scope as a string, for transport.
func (r Result) ScopeName() string { return r.Scope.String() }
