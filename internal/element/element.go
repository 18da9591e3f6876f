// Package element defines the annotation elements placed on the canvas:
// captions and the three shape kinds.
package element

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"caption-canvas/pkg/geometry"
)

// Kind discriminates element variants.
type Kind string

const (
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindPolygon Kind = "polygon"
)

// ShapeKinds lists the kinds offered by the shape picker.
var ShapeKinds = []Kind{KindRect, KindCircle, KindPolygon}

// ParseKind parses a shape kind input. Text is not a shape and is rejected.
func ParseKind(s string) (Kind, error) {
	for _, k := range ShapeKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown shape kind %q", s)}
}

// ValidationError reports an input that cannot produce an element.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// TextMeasurer measures rendered text. The render context implements it with
// real font metrics.
type TextMeasurer interface {
	MeasureText(content string, fontSize float64) (width, height float64)
}

// Element is the common interface for all annotation elements.
// The set of implementations is closed to this package.
type Element interface {
	// ElementID returns the unique identifier for this element.
	ElementID() string

	// ElementKind returns the variant discriminator.
	ElementKind() Kind

	// Pos returns the anchor position: top-left for text and rect,
	// center for circle and polygon.
	Pos() geometry.Point2D

	// IsDraggable reports whether the element may be moved.
	IsDraggable() bool

	// Color returns the text color for captions and the fill color for shapes.
	Color() string

	// GetBounds returns the axis-aligned bounding box in canvas coordinates.
	GetBounds(m TextMeasurer) geometry.Rect

	// HitTest returns true if the point (x, y) is within this element.
	HitTest(x, y float64, m TextMeasurer) bool

	apply(p Patch) Element
}

// Base holds the attributes shared by every variant.
type Base struct {
	ID        string           `json:"id"`
	Position  geometry.Point2D `json:"position"`
	Draggable bool             `json:"draggable"`
}

func (b Base) ElementID() string { return b.ID }
func (b Base) Pos() geometry.Point2D { return b.Position }
func (b Base) IsDraggable() bool { return b.Draggable }

func (b *Base) patch(p Patch) {
	if p.Position != nil {
		b.Position = *p.Position
	}
	if p.Draggable != nil {
		b.Draggable = *p.Draggable
	}
}

// Text is a freeform caption.
type Text struct {
	Base
	Content   string  `json:"text"`
	FontSize  float64 `json:"fontSize"`
	TextColor string  `json:"fill"`
}

func (t Text) ElementKind() Kind { return KindText }
func (t Text) Color() string { return t.TextColor }

func (t Text) GetBounds(m TextMeasurer) geometry.Rect {
	w, h := measure(m, t.Content, t.FontSize)
	return geometry.Rect{X: t.Position.X, Y: t.Position.Y, Width: w, Height: h}
}

func (t Text) HitTest(x, y float64, m TextMeasurer) bool {
	return t.GetBounds(m).Contains(geometry.Point2D{X: x, Y: y})
}

func (t Text) apply(p Patch) Element {
	t.Base.patch(p)
	if p.Content != nil && strings.TrimSpace(*p.Content) != "" {
		t.Content = *p.Content
	}
	if positive(p.FontSize) {
		t.FontSize = *p.FontSize
	}
	if p.Color != nil {
		t.TextColor = *p.Color
	}
	return t
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Base
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	FillColor string  `json:"fill"`
}

func (r Rect) ElementKind() Kind { return KindRect }
func (r Rect) Color() string { return r.FillColor }

func (r Rect) GetBounds(TextMeasurer) geometry.Rect {
	return geometry.Rect{X: r.Position.X, Y: r.Position.Y, Width: r.Width, Height: r.Height}
}

func (r Rect) HitTest(x, y float64, m TextMeasurer) bool {
	return r.GetBounds(m).Contains(geometry.Point2D{X: x, Y: y})
}

func (r Rect) apply(p Patch) Element {
	r.Base.patch(p)
	if positive(p.Width) {
		r.Width = *p.Width
	}
	if positive(p.Height) {
		r.Height = *p.Height
	}
	if p.Color != nil {
		r.FillColor = *p.Color
	}
	return r
}

// Circle is a disc anchored at its center.
type Circle struct {
	Base
	Radius    float64 `json:"radius"`
	FillColor string  `json:"fill"`
}

func (c Circle) ElementKind() Kind { return KindCircle }
func (c Circle) Color() string { return c.FillColor }

func (c Circle) GetBounds(TextMeasurer) geometry.Rect {
	return geometry.Rect{
		X:      c.Position.X - c.Radius,
		Y:      c.Position.Y - c.Radius,
		Width:  2 * c.Radius,
		Height: 2 * c.Radius,
	}
}

func (c Circle) HitTest(x, y float64, _ TextMeasurer) bool {
	return c.Position.Distance(geometry.Point2D{X: x, Y: y}) <= c.Radius
}

func (c Circle) apply(p Patch) Element {
	c.Base.patch(p)
	if positive(p.Radius) {
		c.Radius = *p.Radius
	}
	if p.Color != nil {
		c.FillColor = *p.Color
	}
	return c
}

// Polygon is a regular polygon anchored at its center with the first vertex
// pointing up.
type Polygon struct {
	Base
	Sides     int     `json:"sides"`
	Radius    float64 `json:"radius"`
	FillColor string  `json:"fill"`
}

func (g Polygon) ElementKind() Kind { return KindPolygon }
func (g Polygon) Color() string { return g.FillColor }

// Vertices returns the polygon corners in canvas coordinates.
func (g Polygon) Vertices() []geometry.Point2D {
	return geometry.RegularPolygonPoints(g.Position, g.Radius, g.Sides)
}

func (g Polygon) GetBounds(TextMeasurer) geometry.Rect {
	return geometry.BoundingBox(g.Vertices())
}

func (g Polygon) HitTest(x, y float64, _ TextMeasurer) bool {
	return geometry.PointInPolygon(geometry.Point2D{X: x, Y: y}, g.Vertices())
}

func (g Polygon) apply(p Patch) Element {
	g.Base.patch(p)
	if positive(p.Radius) {
		g.Radius = *p.Radius
	}
	if p.Sides != nil && *p.Sides >= 3 {
		g.Sides = *p.Sides
	}
	if p.Color != nil {
		g.FillColor = *p.Color
	}
	return g
}

// Patch is a partial attribute update. Nil fields are left untouched, fields
// that do not belong to the target variant are ignored, and non-positive
// sizes are ignored.
type Patch struct {
	Position  *geometry.Point2D
	Draggable *bool
	Color     *string
	Content   *string
	FontSize  *float64
	Width     *float64
	Height    *float64
	Radius    *float64
	Sides     *int
}

// Apply returns e with p merged in. Kind and id never change.
func Apply(e Element, p Patch) Element {
	return e.apply(p)
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// MoveTo returns a patch that only changes position.
func MoveTo(x, y float64) Patch {
	return Patch{Position: &geometry.Point2D{X: x, Y: y}}
}

func positive(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 0)
}

// measure falls back to a fixed advance estimate when no measurer is
// available (headless callers without a render context).
func measure(m TextMeasurer, content string, fontSize float64) (float64, float64) {
	if m != nil {
		return m.MeasureText(content, fontSize)
	}
	return 0.6 * fontSize * float64(utf8.RuneCountInString(content)), fontSize
}
