package element

import (
	"strconv"
	"strings"
	"sync"

	"caption-canvas/pkg/geometry"
)

// Layout holds the default placement and size of newly created elements.
type Layout struct {
	CaptionPosition geometry.Point2D `json:"captionPosition"`
	FontSize        float64          `json:"fontSize"`

	RectPosition geometry.Point2D `json:"rectPosition"`
	RectWidth    float64          `json:"rectWidth"`
	RectHeight   float64          `json:"rectHeight"`

	CirclePosition geometry.Point2D `json:"circlePosition"`
	CircleRadius   float64          `json:"circleRadius"`

	PolygonPosition geometry.Point2D `json:"polygonPosition"`
	PolygonSides    int              `json:"polygonSides"`
	PolygonRadius   float64          `json:"polygonRadius"`
}

// DefaultLayout returns the stock element placement.
func DefaultLayout() Layout {
	return Layout{
		CaptionPosition: geometry.Point2D{X: 50, Y: 50},
		FontSize:        18,

		RectPosition: geometry.Point2D{X: 100, Y: 100},
		RectWidth:    100,
		RectHeight:   50,

		CirclePosition: geometry.Point2D{X: 150, Y: 150},
		CircleRadius:   50,

		PolygonPosition: geometry.Point2D{X: 200, Y: 200},
		PolygonSides:    5,
		PolygonRadius:   50,
	}
}

// NewText creates a caption. Content that is empty after trimming is rejected.
func NewText(id, content string, position geometry.Point2D, color string, fontSize float64) (Text, error) {
	if strings.TrimSpace(content) == "" {
		return Text{}, &ValidationError{Field: "text", Reason: "caption is empty"}
	}
	if fontSize <= 0 {
		return Text{}, &ValidationError{Field: "fontSize", Reason: "must be positive"}
	}
	return Text{
		Base:      Base{ID: id, Position: position, Draggable: true},
		Content:   content,
		FontSize:  fontSize,
		TextColor: color,
	}, nil
}

// NewRect creates a rectangle at the layout's default placement.
func NewRect(id, color string, l Layout) Rect {
	return Rect{
		Base:      Base{ID: id, Position: l.RectPosition, Draggable: true},
		Width:     l.RectWidth,
		Height:    l.RectHeight,
		FillColor: color,
	}
}

// NewCircle creates a circle at the layout's default placement.
func NewCircle(id, color string, l Layout) Circle {
	return Circle{
		Base:      Base{ID: id, Position: l.CirclePosition, Draggable: true},
		Radius:    l.CircleRadius,
		FillColor: color,
	}
}

// NewPolygon creates a regular polygon at the layout's default placement.
func NewPolygon(id, color string, l Layout) Polygon {
	return Polygon{
		Base:      Base{ID: id, Position: l.PolygonPosition, Draggable: true},
		Sides:     l.PolygonSides,
		Radius:    l.PolygonRadius,
		FillColor: color,
	}
}

// NewShape dispatches to the factory for kind.
func NewShape(kind Kind, id, color string, l Layout) (Element, error) {
	switch kind {
	case KindRect:
		return NewRect(id, color, l), nil
	case KindCircle:
		return NewCircle(id, color, l), nil
	case KindPolygon:
		return NewPolygon(id, color, l), nil
	}
	return nil, &ValidationError{Field: "kind", Reason: "unknown shape kind " + strconv.Quote(string(kind))}
}

// Sequence allocates element ids. The counter is shared across kinds and
// never goes backwards, so an id is never handed out twice.
type Sequence struct {
	mu sync.Mutex
	n  int
}

// Next returns the next id for kind, formatted as "<kind>-<n>".
func (s *Sequence) Next(kind Kind) string {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()
	return string(kind) + "-" + strconv.Itoa(n)
}
