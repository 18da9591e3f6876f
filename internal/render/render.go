// Package render rasterizes a scene snapshot: background, annotation
// elements and, for the editor view, the transform overlay.
package render

import (
	"image"
	"image/color"
	"log"

	"caption-canvas/internal/element"
	"caption-canvas/internal/scene"
	"caption-canvas/pkg/colorutil"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Default surface size used until a background has loaded.
const (
	DefaultFallbackWidth  = 800
	DefaultFallbackHeight = 600
)

// Config controls surface sizing and overlay appearance.
type Config struct {
	FallbackWidth  int
	FallbackHeight int
	Accent         color.RGBA
}

// DefaultConfig returns the stock renderer settings.
func DefaultConfig() Config {
	return Config{
		FallbackWidth:  DefaultFallbackWidth,
		FallbackHeight: DefaultFallbackHeight,
		Accent:         colorutil.Accent,
	}
}

// Options selects what a single frame includes.
type Options struct {
	// Chrome draws the transform overlay. Exports leave it off.
	Chrome bool
}

// Renderer draws snapshots using a Context's fonts and overlay state.
type Renderer struct {
	ctx *Context
	cfg Config
}

// New creates a renderer bound to ctx.
func New(ctx *Context, cfg Config) *Renderer {
	if cfg.FallbackWidth <= 0 || cfg.FallbackHeight <= 0 {
		cfg.FallbackWidth, cfg.FallbackHeight = DefaultFallbackWidth, DefaultFallbackHeight
	}
	if cfg.Accent.A == 0 {
		cfg.Accent = colorutil.Accent
	}
	return &Renderer{ctx: ctx, cfg: cfg}
}

// Context returns the render context the renderer draws with.
func (r *Renderer) Context() *Context {
	return r.ctx
}

// SurfaceSize returns the frame size for snap.
func (r *Renderer) SurfaceSize(snap scene.Snapshot) (int, int) {
	if bg := snap.Background; bg != nil && bg.Width > 0 && bg.Height > 0 {
		return bg.Width, bg.Height
	}
	return r.cfg.FallbackWidth, r.cfg.FallbackHeight
}

// Render draws snap into a new image. It only reads the snapshot, so equal
// snapshots produce identical pixels.
func (r *Renderer) Render(snap scene.Snapshot, opts Options) *image.RGBA {
	w, h := r.SurfaceSize(snap)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	if bg := snap.Background; bg != nil && bg.Pixels != nil {
		src := bg.Pixels
		if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
			draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		} else {
			draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		}
	}

	dc := gg.NewContextForRGBA(dst)
	for _, e := range snap.Elements {
		r.drawElement(dc, e)
	}

	if opts.Chrome {
		if id := r.ctx.Attached(); id != "" {
			if e, ok := snap.Find(id); ok {
				r.drawOverlay(dc, e)
			}
		}
	}
	return dst
}

func (r *Renderer) drawElement(dc *gg.Context, e element.Element) {
	dc.SetColor(resolveColor(e))
	switch v := e.(type) {
	case element.Text:
		ascent := r.ctx.ascent(v.FontSize)
		r.ctx.withFace(v.FontSize, func(face font.Face) {
			dc.SetFontFace(face)
			dc.DrawString(v.Content, v.Position.X, v.Position.Y+ascent)
		})
	case element.Rect:
		dc.DrawRectangle(v.Position.X, v.Position.Y, v.Width, v.Height)
		dc.Fill()
	case element.Circle:
		dc.DrawCircle(v.Position.X, v.Position.Y, v.Radius)
		dc.Fill()
	case element.Polygon:
		pts := v.Vertices()
		if len(pts) == 0 {
			return
		}
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.Fill()
	}
}

func (r *Renderer) drawOverlay(dc *gg.Context, e element.Element) {
	b := e.GetBounds(r.ctx)
	dc.SetColor(r.cfg.Accent)
	dc.SetLineWidth(1)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.Stroke()

	for _, hb := range r.ctx.Handles(b) {
		dc.DrawRectangle(hb.Box.X, hb.Box.Y, hb.Box.Width, hb.Box.Height)
		dc.Fill()
	}
}

func resolveColor(e element.Element) color.RGBA {
	if c, ok := colorutil.Parse(e.Color()); ok {
		return c
	}
	log.Printf("render: %s has unknown color %q, drawing black", e.ElementID(), e.Color())
	return colorutil.Black
}
