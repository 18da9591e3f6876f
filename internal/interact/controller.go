// Package interact turns pointer and keyboard events into scene mutations:
// selection, dragging and handle-based resizing.
package interact

import (
	"context"
	"iter"
	"math"
	"sync"

	"caption-canvas/internal/element"
	"caption-canvas/internal/render"
	"caption-canvas/internal/scene"
	"caption-canvas/pkg/geometry"
)

// Mode is the controller state.
type Mode int

const (
	Idle Mode = iota
	Selected
	Dragging
	Transforming
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	case Transforming:
		return "transforming"
	}
	return "unknown"
}

// Config tunes gesture behavior.
type Config struct {
	MinSize        float64 // Smallest width, height or diameter a resize may produce
	NudgeStep      float64 // Arrow key step
	NudgeStepShift float64 // Arrow key step with Shift held
}

// DefaultConfig returns the stock gesture settings.
func DefaultConfig() Config {
	return Config{MinSize: 5, NudgeStep: 1, NudgeStepShift: 10}
}

// Controller is the selection and transform state machine for one scene.
type Controller struct {
	mu    sync.Mutex
	scene *scene.Scene
	rc    *render.Context
	cfg   Config

	mode Mode
	id   string

	// Gesture state, captured at pointer-down.
	pressed bool
	start   geometry.Point2D
	origin  element.Element
	handle  render.Handle
}

// New creates a controller in the Idle state.
func New(s *scene.Scene, rc *render.Context, cfg Config) *Controller {
	if cfg.MinSize <= 0 {
		cfg.MinSize = DefaultConfig().MinSize
	}
	if cfg.NudgeStep <= 0 {
		cfg.NudgeStep = DefaultConfig().NudgeStep
	}
	if cfg.NudgeStepShift <= 0 {
		cfg.NudgeStepShift = DefaultConfig().NudgeStepShift
	}
	return &Controller{scene: s, rc: rc, cfg: cfg}
}

// Mode returns the current state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Target returns the id of the element the current state refers to, or "".
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Select selects id programmatically and attaches the overlay to it.
// An unknown id is ignored and returns false.
func (c *Controller) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.resetLocked()
		return true
	}
	if _, ok := c.scene.Element(id); !ok {
		return false
	}
	c.rc.Attach(id)
	if !c.scene.SelectElement(id) {
		c.rc.Detach()
		return false
	}
	c.mode = Selected
	c.id = id
	c.pressed = false
	return true
}

// Handle feeds one event to the state machine and returns the new mode.
func (c *Controller) Handle(ev Event) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Idle {
		if _, ok := c.scene.Element(c.id); !ok {
			c.resetLocked()
		}
	}

	switch ev := ev.(type) {
	case PointerDown:
		c.pointerDown(geometry.Point2D{X: ev.X, Y: ev.Y})
	case PointerMove:
		c.pointerMove(geometry.Point2D{X: ev.X, Y: ev.Y})
	case PointerUp:
		c.pointerUp()
	case KeyPress:
		c.keyPress(ev)
	}
	return c.mode
}

// Consume feeds every event of seq in order.
func (c *Controller) Consume(seq iter.Seq[Event]) {
	for ev := range seq {
		c.Handle(ev)
	}
}

// Run handles events from ch until it is closed or ctx is done.
func (c *Controller) Run(ctx context.Context, ch <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			c.Handle(ev)
		}
	}
}

func (c *Controller) pointerDown(p geometry.Point2D) {
	if c.mode == Selected {
		if e, ok := c.scene.Element(c.id); ok {
			if h, ok := c.rc.HandleAt(e.GetBounds(c.rc), p); ok {
				c.mode = Transforming
				c.pressed = true
				c.start = p
				c.origin = e
				c.handle = h
				return
			}
			// A press inside the selected element keeps it, even when
			// another element is stacked above it.
			if e.HitTest(p.X, p.Y, c.rc) {
				c.pressed = true
				c.start = p
				c.origin = e
				return
			}
		}
	}

	hit, ok := c.scene.ElementAt(p.X, p.Y, c.rc)
	if !ok {
		c.resetLocked()
		return
	}
	id := hit.ElementID()
	// Attach before selecting: selection listeners re-render the frame.
	c.rc.Attach(id)
	if !c.scene.SelectElement(id) {
		c.resetLocked()
		return
	}
	c.mode = Selected
	c.id = id
	c.pressed = true
	c.start = p
	c.origin = hit
}

func (c *Controller) pointerMove(p geometry.Point2D) {
	if !c.pressed {
		return
	}
	switch c.mode {
	case Selected:
		if !c.origin.IsDraggable() {
			return
		}
		c.mode = Dragging
		c.drag(p)
	case Dragging:
		c.drag(p)
	case Transforming:
		if !c.scene.UpdateElement(c.id, c.resize(p)) {
			c.resetLocked()
		}
	}
}

func (c *Controller) drag(p geometry.Point2D) {
	pos := c.origin.Pos().Add(p.Sub(c.start))
	if !c.scene.UpdateElement(c.id, element.Patch{Position: &pos}) {
		c.resetLocked()
	}
}

func (c *Controller) pointerUp() {
	c.pressed = false
	if c.mode == Dragging || c.mode == Transforming {
		c.mode = Selected
	}
}

func (c *Controller) keyPress(k KeyPress) {
	switch k.Key {
	case KeyEscape:
		c.resetLocked()
	case KeyDelete, KeyBackspace:
		if c.mode == Idle {
			return
		}
		c.scene.RemoveElement(c.id)
		c.resetLocked()
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		if c.mode != Selected {
			return
		}
		e, ok := c.scene.Element(c.id)
		if !ok || !e.IsDraggable() {
			return
		}
		step := c.cfg.NudgeStep
		if k.Shift {
			step = c.cfg.NudgeStepShift
		}
		var d geometry.Point2D
		switch k.Key {
		case KeyUp:
			d.Y = -step
		case KeyDown:
			d.Y = step
		case KeyLeft:
			d.X = -step
		case KeyRight:
			d.X = step
		}
		pos := e.Pos().Add(d)
		c.scene.UpdateElement(c.id, element.Patch{Position: &pos})
	}
}

// resize computes the patch for the handle drag from the gesture start to p.
// The handle opposite the dragged one stays fixed.
func (c *Controller) resize(p geometry.Point2D) element.Patch {
	b := c.origin.GetBounds(c.rc)
	fixed := c.handle.Opposite().Anchor(b)
	moving := c.handle.Anchor(b)
	target := moving.Add(p.Sub(c.start))

	sx, sy := 1.0, 1.0
	if c.handle.MovesX() && moving.X != fixed.X {
		sx = math.Max((target.X-fixed.X)/(moving.X-fixed.X), c.cfg.MinSize/b.Width)
	}
	if c.handle.MovesY() && moving.Y != fixed.Y {
		sy = math.Max((target.Y-fixed.Y)/(moving.Y-fixed.Y), c.cfg.MinSize/b.Height)
	}

	if r, ok := c.origin.(element.Rect); ok {
		pos := geometry.ScaleAbout(fixed, sx, sy).Apply(r.Position)
		return element.Patch{
			Position: &pos,
			Width:    element.Ptr(r.Width * sx),
			Height:   element.Ptr(r.Height * sy),
		}
	}

	s := uniformScale(c.handle, sx, sy)
	s = math.Max(s, c.cfg.MinSize/math.Min(b.Width, b.Height))
	pos := geometry.ScaleAbout(fixed, s, s).Apply(c.origin.Pos())
	patch := element.Patch{Position: &pos}
	switch e := c.origin.(type) {
	case element.Circle:
		patch.Radius = element.Ptr(e.Radius * s)
	case element.Polygon:
		patch.Radius = element.Ptr(e.Radius * s)
	case element.Text:
		patch.FontSize = element.Ptr(e.FontSize * s)
	}

	// Measured text does not scale exactly with its font size; pin the
	// opposite anchor of the resized box.
	nb := element.Apply(c.origin, patch).GetBounds(c.rc)
	pos = pos.Add(fixed.Sub(c.handle.Opposite().Anchor(nb)))
	return patch
}

// uniformScale collapses per-axis factors for shapes that keep their aspect.
// Corner handles average both axes; edge handles follow the axis they move.
func uniformScale(h render.Handle, sx, sy float64) float64 {
	switch {
	case h.IsCorner():
		return (sx + sy) / 2
	case h.MovesX():
		return sx
	default:
		return sy
	}
}

func (c *Controller) resetLocked() {
	c.rc.Detach()
	c.scene.SelectElement("")
	c.mode = Idle
	c.id = ""
	c.pressed = false
	c.origin = nil
}
