package render

import "caption-canvas/pkg/geometry"

// DefaultHandleSize is the side length of a resize handle in pixels.
const DefaultHandleSize = 10

// Handle names one of the eight resize anchors of the transform overlay.
type Handle int

const (
	HandleTopLeft Handle = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

var handleNames = [...]string{
	"top-left", "top-center", "top-right", "middle-right",
	"bottom-right", "bottom-center", "bottom-left", "middle-left",
}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// Opposite returns the handle diagonally (or straight) across the box.
func (h Handle) Opposite() Handle {
	return (h + 4) % 8
}

// IsCorner reports whether h sits on a corner of the box.
func (h Handle) IsCorner() bool {
	return h%2 == 0
}

// MovesX reports whether dragging h changes the box width.
func (h Handle) MovesX() bool {
	return h != HandleTop && h != HandleBottom
}

// MovesY reports whether dragging h changes the box height.
func (h Handle) MovesY() bool {
	return h != HandleLeft && h != HandleRight
}

// Anchor returns the point of bounds the handle is centered on.
func (h Handle) Anchor(bounds geometry.Rect) geometry.Point2D {
	x0, y0 := bounds.X, bounds.Y
	x1, y1 := bounds.X+bounds.Width, bounds.Y+bounds.Height
	xm, ym := bounds.X+bounds.Width/2, bounds.Y+bounds.Height/2
	switch h {
	case HandleTopLeft:
		return geometry.Point2D{X: x0, Y: y0}
	case HandleTop:
		return geometry.Point2D{X: xm, Y: y0}
	case HandleTopRight:
		return geometry.Point2D{X: x1, Y: y0}
	case HandleRight:
		return geometry.Point2D{X: x1, Y: ym}
	case HandleBottomRight:
		return geometry.Point2D{X: x1, Y: y1}
	case HandleBottom:
		return geometry.Point2D{X: xm, Y: y1}
	case HandleBottomLeft:
		return geometry.Point2D{X: x0, Y: y1}
	default:
		return geometry.Point2D{X: x0, Y: ym}
	}
}

// HandleBox is the hit area of one handle.
type HandleBox struct {
	Handle Handle
	Box    geometry.Rect
}

// Handles lays out the eight handle boxes around bounds.
func (c *Context) Handles(bounds geometry.Rect) []HandleBox {
	s := c.handleSize
	boxes := make([]HandleBox, 0, 8)
	for h := HandleTopLeft; h <= HandleLeft; h++ {
		p := h.Anchor(bounds)
		boxes = append(boxes, HandleBox{
			Handle: h,
			Box:    geometry.Rect{X: p.X - s/2, Y: p.Y - s/2, Width: s, Height: s},
		})
	}
	return boxes
}

// HandleAt returns the handle whose box contains p, if any.
func (c *Context) HandleAt(bounds geometry.Rect, p geometry.Point2D) (Handle, bool) {
	for _, hb := range c.Handles(bounds) {
		if hb.Box.Contains(p) {
			return hb.Handle, true
		}
	}
	return 0, false
}
