package app

import (
	"time"

	"caption-canvas/internal/element"
	"caption-canvas/internal/interact"
	"caption-canvas/internal/render"
	"caption-canvas/pkg/colorutil"
)

// Config holds the editor defaults for a session.
type Config struct {
	Layout   element.Layout
	Render   render.Config
	Interact interact.Config

	// HandleSize is the side length of the resize handles.
	HandleSize float64

	// Colors used when an input color is not recognized.
	DefaultTextColor  string
	DefaultShapeColor string

	// WatchBackground reloads a local background when the file changes.
	WatchBackground bool
	WatchDebounce   time.Duration
}

// DefaultConfig returns the stock editor configuration.
func DefaultConfig() Config {
	return Config{
		Layout:            element.DefaultLayout(),
		Render:            render.DefaultConfig(),
		Interact:          interact.DefaultConfig(),
		HandleSize:        render.DefaultHandleSize,
		DefaultTextColor:  colorutil.TextPalette[0],
		DefaultShapeColor: colorutil.ShapePalette[0],
		WatchDebounce:     200 * time.Millisecond,
	}
}
