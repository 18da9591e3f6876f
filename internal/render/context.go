package render

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Context is the drawing resource acquired for an editing session. It owns
// the font faces used for captions and tracks which element the transform
// overlay is attached to.
type Context struct {
	handleSize float64

	faceMu    sync.Mutex // guards faces and every use of a face
	font      *truetype.Font
	faces     map[float64]font.Face
	faceOrder []float64 // least recently used first
	facesDone bool

	mu       sync.RWMutex
	attached string
	closed   bool
}

// NewContext parses the caption font and prepares an empty overlay.
func NewContext(handleSize float64) (*Context, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if handleSize <= 0 {
		handleSize = DefaultHandleSize
	}
	return &Context{
		handleSize: handleSize,
		font:       f,
		faces:      make(map[float64]font.Face),
	}, nil
}

const (
	// maxFaces bounds the face cache; a resize drag produces a new size on
	// every pointer sample.
	maxFaces = 16

	// faceStep is the granularity font sizes are rounded to before a face
	// is built.
	faceStep = 0.5
)

// faceSize rounds size to the cache granularity.
func faceSize(size float64) float64 {
	q := math.Round(size/faceStep) * faceStep
	if q < faceStep {
		q = faceStep
	}
	return q
}

func (c *Context) newFace(size float64) font.Face {
	return truetype.NewFace(c.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// withFace runs fn with the face for size while holding the face lock.
// truetype faces keep glyph caches and are not safe for concurrent use.
// After Close the face is built for the call and released again.
func (c *Context) withFace(size float64, fn func(font.Face)) {
	size = faceSize(size)
	c.faceMu.Lock()
	defer c.faceMu.Unlock()

	if c.facesDone {
		face := c.newFace(size)
		defer face.Close()
		fn(face)
		return
	}

	face, ok := c.faces[size]
	if ok {
		i := slices.Index(c.faceOrder, size)
		c.faceOrder = append(slices.Delete(c.faceOrder, i, i+1), size)
	} else {
		if len(c.faceOrder) >= maxFaces {
			oldest := c.faceOrder[0]
			c.faces[oldest].Close()
			delete(c.faces, oldest)
			c.faceOrder = slices.Delete(c.faceOrder, 0, 1)
		}
		face = c.newFace(size)
		c.faces[size] = face
		c.faceOrder = append(c.faceOrder, size)
	}
	fn(face)
}

// CachedFaces returns the number of font faces currently held.
func (c *Context) CachedFaces() int {
	c.faceMu.Lock()
	defer c.faceMu.Unlock()
	return len(c.faces)
}

// MeasureText returns the advance width and line height of content.
func (c *Context) MeasureText(content string, fontSize float64) (width, height float64) {
	c.withFace(fontSize, func(face font.Face) {
		width = float64(font.MeasureString(face, content)) / 64
		m := face.Metrics()
		height = float64(m.Ascent+m.Descent) / 64
	})
	return width, height
}

// ascent returns the distance from the top of the line box to the baseline.
func (c *Context) ascent(fontSize float64) float64 {
	var a float64
	c.withFace(fontSize, func(face font.Face) {
		a = float64(face.Metrics().Ascent) / 64
	})
	return a
}

// Attach binds the transform overlay to the element with id.
func (c *Context) Attach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.attached = id
}

// Detach removes the transform overlay.
func (c *Context) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = ""
}

// Attached returns the id the overlay is bound to, or "".
func (c *Context) Attached() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attached
}

// HandleSize returns the side length of a resize handle.
func (c *Context) HandleSize() float64 {
	return c.handleSize
}

// Close releases the font faces and detaches the overlay.
func (c *Context) Close() error {
	c.mu.Lock()
	c.attached = ""
	c.closed = true
	c.mu.Unlock()

	c.faceMu.Lock()
	defer c.faceMu.Unlock()
	c.facesDone = true
	c.faceOrder = nil
	var firstErr error
	for size, face := range c.faces {
		if err := face.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.faces, size)
	}
	return firstErr
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
