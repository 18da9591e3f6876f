// Package scene holds the document being edited: the ordered annotation
// elements, the background image and the current selection.
package scene

import (
	"sync"

	"caption-canvas/internal/background"
	"caption-canvas/internal/element"
)

// EventType identifies scene change events.
type EventType int

const (
	EventElementAdded EventType = iota
	EventElementUpdated
	EventElementRemoved
	EventSelectionChanged
	EventBackgroundLoaded
)

func (e EventType) String() string {
	switch e {
	case EventElementAdded:
		return "element-added"
	case EventElementUpdated:
		return "element-updated"
	case EventElementRemoved:
		return "element-removed"
	case EventSelectionChanged:
		return "selection-changed"
	case EventBackgroundLoaded:
		return "background-loaded"
	}
	return "unknown"
}

// EventListener is called when an event occurs. data carries the affected
// element id, or the *background.Image for EventBackgroundLoaded.
type EventListener func(data interface{})

// Scene is the mutable document. All methods are safe for concurrent use;
// listeners run after the lock is released.
type Scene struct {
	mu sync.RWMutex

	elements   []element.Element
	background *background.Image
	selectedID string
	seq        element.Sequence

	listeners map[EventType][]EventListener
}

// Snapshot is an immutable copy of the scene used by readers.
type Snapshot struct {
	Background *background.Image
	Elements   []element.Element
	SelectedID string
}

// Find returns the element with id in the snapshot.
func (s Snapshot) Find(id string) (element.Element, bool) {
	for _, e := range s.Elements {
		if e.ElementID() == id {
			return e, true
		}
	}
	return nil, false
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Scene) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// OnChange registers listener for every event type.
func (s *Scene) OnChange(listener func(EventType, interface{})) {
	for _, ev := range []EventType{EventElementAdded, EventElementUpdated, EventElementRemoved, EventSelectionChanged, EventBackgroundLoaded} {
		ev := ev
		s.On(ev, func(data interface{}) { listener(ev, data) })
	}
}

// ClearListeners drops every registered listener.
func (s *Scene) ClearListeners() {
	s.mu.Lock()
	s.listeners = make(map[EventType][]EventListener)
	s.mu.Unlock()
}

// Emit triggers all listeners for the specified event type.
func (s *Scene) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// NextID allocates a fresh element id for kind.
func (s *Scene) NextID(kind element.Kind) string {
	return s.seq.Next(kind)
}

// AddElement appends e on top of the z-order.
func (s *Scene) AddElement(e element.Element) {
	s.mu.Lock()
	s.elements = append(s.elements, e)
	s.mu.Unlock()
	s.Emit(EventElementAdded, e.ElementID())
}

// UpdateElement merges p into the element with id. It returns false and
// changes nothing when the id is unknown.
func (s *Scene) UpdateElement(id string, p element.Patch) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.elements[i] = element.Apply(s.elements[i], p)
	s.mu.Unlock()
	s.Emit(EventElementUpdated, id)
	return true
}

// RemoveElement deletes the element with id, clearing the selection if it
// pointed at it.
func (s *Scene) RemoveElement(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.elements = append(s.elements[:i:i], s.elements[i+1:]...)
	deselected := s.selectedID == id
	if deselected {
		s.selectedID = ""
	}
	s.mu.Unlock()

	s.Emit(EventElementRemoved, id)
	if deselected {
		s.Emit(EventSelectionChanged, "")
	}
	return true
}

// SelectElement makes id the single selected element; "" clears the
// selection. Selecting an unknown id is ignored and returns false.
func (s *Scene) SelectElement(id string) bool {
	s.mu.Lock()
	if id != "" && s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return false
	}
	changed := s.selectedID != id
	s.selectedID = id
	s.mu.Unlock()

	if changed {
		s.Emit(EventSelectionChanged, id)
	}
	return true
}

// SelectedID returns the selected element id, or "".
func (s *Scene) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Selected returns the selected element.
func (s *Scene) Selected() (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == "" {
		return nil, false
	}
	i := s.indexLocked(s.selectedID)
	if i < 0 {
		return nil, false
	}
	return s.elements[i], true
}

// Element returns the element with id.
func (s *Scene) Element(id string) (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return s.elements[i], true
}

// Elements returns a copy of the elements in z-order.
func (s *Scene) Elements() []element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]element.Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// ElementAt returns the topmost element whose hit region contains (x, y).
func (s *Scene) ElementAt(x, y float64, m element.TextMeasurer) (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.elements) - 1; i >= 0; i-- {
		if s.elements[i].HitTest(x, y, m) {
			return s.elements[i], true
		}
	}
	return nil, false
}

// Len returns the number of elements.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// SetBackground installs the loaded background image.
func (s *Scene) SetBackground(img *background.Image) {
	s.mu.Lock()
	s.background = img
	s.mu.Unlock()
	s.Emit(EventBackgroundLoaded, img)
}

// Background returns the loaded background, or nil.
func (s *Scene) Background() *background.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// CanvasSize returns the natural background size once loaded, else fallback.
func (s *Scene) CanvasSize(fallbackW, fallbackH int) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.background == nil {
		return fallbackW, fallbackH
	}
	return s.background.Width, s.background.Height
}

// Snapshot returns an immutable copy of the current state.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elems := make([]element.Element, len(s.elements))
	copy(elems, s.elements)
	return Snapshot{
		Background: s.background,
		Elements:   elems,
		SelectedID: s.selectedID,
	}
}

func (s *Scene) indexLocked(id string) int {
	for i, e := range s.elements {
		if e.ElementID() == id {
			return i
		}
	}
	return -1
}
