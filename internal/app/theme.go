package app

import (
	"image/color"

	"caption-canvas/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CanvasTheme tints the default fyne theme with the selection accent.
type CanvasTheme struct{}

var _ fyne.Theme = (*CanvasTheme)(nil)

func (t *CanvasTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Accent
	case theme.ColorNameSelection:
		a := colorutil.Accent
		return color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0x60}
	case theme.ColorNameFocus:
		a := colorutil.Accent
		return color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0x80}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *CanvasTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *CanvasTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *CanvasTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
