// Package colorutil provides shared color utilities for the caption canvas.
package colorutil

import (
	"image/color"
	"strconv"
	"strings"
)

// Named colors recognized by Parse. Values follow the CSS color keywords.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green  = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}

	// Accent is the selection overlay color.
	Accent = color.RGBA{R: 0, G: 161, B: 255, A: 255}
)

var named = map[string]color.RGBA{
	"black":  Black,
	"white":  White,
	"red":    Red,
	"green":  Green,
	"blue":   Blue,
	"yellow": Yellow,
}

// TextPalette lists the colors offered for captions, default first.
var TextPalette = []string{"black", "red", "blue", "green"}

// ShapePalette lists the colors offered for shapes, default first.
var ShapePalette = []string{"red", "blue", "green", "yellow"}

// Parse resolves a named color or a #rgb / #rrggbb hex string.
func Parse(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// InPalette reports whether name is one of the palette entries.
func InPalette(palette []string, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range palette {
		if p == name {
			return true
		}
	}
	return false
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
