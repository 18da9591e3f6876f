package interact

// Event is one pointer or keyboard input delivered to the controller.
type Event interface {
	isEvent()
}

// PointerDown is a primary button press at canvas coordinates.
type PointerDown struct{ X, Y float64 }

// PointerMove is a pointer motion sample while the button may be held.
type PointerMove struct{ X, Y float64 }

// PointerUp is the primary button release.
type PointerUp struct{ X, Y float64 }

// KeyPress is a key stroke. Key uses fyne key names.
type KeyPress struct {
	Key   string
	Shift bool
}

func (PointerDown) isEvent() {}
func (PointerMove) isEvent() {}
func (PointerUp) isEvent() {}
func (KeyPress) isEvent() {}

// Key names understood by the controller.
const (
	KeyEscape    = "Escape"
	KeyDelete    = "Delete"
	KeyBackspace = "BackSpace"
	KeyUp        = "Up"
	KeyDown      = "Down"
	KeyLeft      = "Left"
	KeyRight     = "Right"
)
