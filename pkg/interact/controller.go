// Package interact binds host events to selection transitions and repaints.
//
// A Controller owns one mounted visualization: its dataset, its selection
// state and the renderer drawing it. Every event runs the matching state
// transition and hands the resulting scope to the renderer, which issues the
// minimal set of scene operations. Controllers are not safe for concurrent
// use; hosts serialize events per instance.
package interact

import (
	"log"

	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/render"
	"github.com/r3d91ll/heddle/pkg/state"
)

// Controller drives one visualization instance.
type Controller struct {
	id       string
	params   *dataset.Params
	state    *state.State
	renderer *render.Renderer
	svg      *render.SVGScene
	ops      *render.OpLog
	closed   bool
}

// Mount builds the initial state for prepared params and paints it. The
// initial scene operations stay queued until the first Drain. A recovered
// error (clamped host selection, empty filter) is logged and returned
// alongside a usable Controller. So is a layer or head dropped from the
// include lists while preparing the params.
func Mount(p *dataset.Params, engine *layout.Engine, extra ...render.Scene) (*Controller, error) {
	if p == nil || p.Data == nil {
		return nil, herrors.ValidationRequired("params")
	}
	s, err := state.New(p.Data, state.Init{
		View:          p.View,
		Filter:        p.DefaultFilter,
		Layer:         p.Layer,
		Head:          p.Head,
		Heads:         p.Heads,
		Bidirectional: p.IsBidirectional(),
	})
	if err != nil && !herrors.IsRecovered(err) {
		return nil, err
	}

	c := &Controller{
		id:     p.RootDivID,
		params: p,
		state:  s,
		svg:    render.NewSVGScene(),
		ops:    render.NewOpLog(),
	}
	scenes := append([]render.Scene{c.svg, c.ops}, extra...)
	c.renderer = render.New(render.Multi(scenes...), engine, render.PaletteFor(p.DisplayMode))
	c.renderer.Paint(s, state.ScopeLayout)

	if err == nil {
		err = p.Recovered
	} else if p.Recovered != nil {
		log.Printf("[interact] %s: include lists clamped: %v", c.id, p.Recovered)
	}
	if err != nil {
		log.Printf("[interact] %s: mounted with recovered error: %v", c.id, err)
	} else {
		log.Printf("[interact] %s: mounted %s view, filter %q", c.id, p.View, s.Filter)
	}
	return c, err
}

// ID returns the container ID the instance is mounted under.
func (c *Controller) ID() string { return c.id }

// Params returns the prepared params the instance was mounted from.
func (c *Controller) Params() *dataset.Params { return c.params }

// State returns the live selection state. Callers must not mutate it.
func (c *Controller) State() *state.State { return c.state }

// Snapshot returns the selection state for transport.
func (c *Controller) Snapshot() state.Snapshot { return c.state.Snapshot() }

// Canvas returns the current canvas size.
func (c *Controller) Canvas() layout.Size { return c.renderer.Canvas() }

// SVG returns the current scene as an SVG document.
func (c *Controller) SVG() string { return c.svg.Build() }

// Scene returns the retained scene.
func (c *Controller) Scene() *render.SVGScene { return c.svg }

// Renderer returns the renderer.
func (c *Controller) Renderer() *render.Renderer { return c.renderer }

// Palette returns the palette of the instance's display mode.
func (c *Controller) Palette() render.Palette { return c.renderer.Palette() }

// Drain returns the scene operations queued since the last call.
func (c *Controller) Drain() []render.Op {
	ops := c.ops.Drain()
	if ops == nil {
		ops = []render.Op{}
	}
	return ops
}

// Closed reports whether Teardown has run.
func (c *Controller) Closed() bool { return c.closed }

// Handle applies ev and repaints. Rejected or clamped events never fail the
// instance: the error is logged and returned in Result.Recovered.
func (c *Controller) Handle(ev Event) Result {
	if c.closed {
		return Result{Ops: []render.Op{}, Recovered: herrors.VisualizationNotFound(c.id)}
	}
	c.ops.Drain()

	var res Result
	for _, ch := range c.transition(ev) {
		if ch.Scope > res.Scope {
			res.Scope = ch.Scope
		}
		if ch.Err != nil && res.Recovered == nil {
			res.Recovered = ch.Err
		}
		c.renderer.Paint(c.state, ch.Scope)
	}
	res.Ops = c.Drain()

	if res.Recovered != nil {
		log.Printf("[interact] %s: %s recovered: %v", c.id, ev.Type, res.Recovered)
	}
	return res
}

// transition runs the state transitions for ev in order.
func (c *Controller) transition(ev Event) []state.Change {
	s := c.state
	switch ev.Type {
	case EventHover:
		side, ok := layout.ParseSide(ev.Side)
		if !ok {
			return []state.Change{{Err: herrors.ValidationInvalid("side", ev.Side, "must be left or right").MarkRecovered()}}
		}
		return []state.Change{s.Hover(side, ev.Index)}
	case EventUnhover:
		return []state.Change{s.Unhover()}
	case EventClick:
		return []state.Change{s.ToggleHead(ev.Head)}
	case EventDblClick:
		return []state.Change{s.DoubleClickHead(ev.Head)}
	case EventLayer:
		return []state.Change{s.SelectLayer(ev.Layer)}
	case EventHead:
		return []state.Change{s.SelectHead(ev.Head)}
	case EventFilter:
		return []state.Change{s.SelectFilter(ev.Filter)}
	case EventExpand:
		return []state.Change{s.ToggleExpand()}
	case EventThumbnail:
		return []state.Change{s.ActivateThumbnail(ev.Layer, ev.Head)}
	case EventKey:
		if ev.Key != KeyEscape {
			return []state.Change{{Err: herrors.UnsupportedEvent("key "+ev.Key, s.View).MarkRecovered()}}
		}
		return []state.Change{s.Unhover(), s.Collapse()}
	}
	return []state.Change{{Err: herrors.UnsupportedEvent(string(ev.Type), s.View).MarkRecovered()}}
}

// Teardown clears the scene and the transient selection. Later events are
// rejected.
func (c *Controller) Teardown() {
	if c.closed {
		return
	}
	c.state.Reset()
	c.renderer.Reset()
	c.ops.Drain()
	c.closed = true
	log.Printf("[interact] %s: torn down", c.id)
}
