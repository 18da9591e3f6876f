// Package canvas provides the editor canvas: the session frame shown with
// zoom, and pointer and key input forwarded to the interaction controller.
package canvas

import (
	"image"
	"sync"

	"caption-canvas/internal/app"
	"caption-canvas/internal/interact"
	"caption-canvas/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// ImageCanvas displays a session frame and drives its controller.
type ImageCanvas struct {
	widget.BaseWidget

	session *app.Session

	// Display state
	raster  *fynecanvas.Raster
	zoom    float64
	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	mu    sync.Mutex
	frame *image.RGBA

	// Input state
	pressed bool
	shift   bool

	onZoomChange func(zoom float64)
	onModeChange func(mode interact.Mode, target string)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// draggableContent wraps the raster to receive mouse events. Positions
// arrive relative to the content, so only zoom separates them from image
// coordinates.
type draggableContent struct {
	widget.BaseWidget
	canvas *ImageCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Draggable    = (*draggableContent)(nil)
	_ desktop.Mouseable = (*draggableContent)(nil)
)

func newDraggableContent(ic *ImageCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{
		canvas: ic,
		raster: raster,
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dc.raster)
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

func (dc *draggableContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	dc.canvas.pressed = true
	p := dc.canvas.ViewToImage(ev.Position)
	dc.canvas.dispatch(interact.PointerDown{X: p.X, Y: p.Y})
}

func (dc *draggableContent) MouseUp(ev *desktop.MouseEvent) {
	if !dc.canvas.pressed {
		return
	}
	dc.canvas.pressed = false
	p := dc.canvas.ViewToImage(ev.Position)
	dc.canvas.dispatch(interact.PointerUp{X: p.X, Y: p.Y})
}

func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	if !dc.canvas.pressed {
		return
	}
	p := dc.canvas.ViewToImage(ev.Position)
	dc.canvas.dispatch(interact.PointerMove{X: p.X, Y: p.Y})
}

func (dc *draggableContent) DragEnd() {
	if !dc.canvas.pressed {
		return
	}
	dc.canvas.pressed = false
	dc.canvas.dispatch(interact.PointerUp{})
}

func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		dc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		dc.canvas.ZoomOut()
	}
}

// NewImageCanvas creates a canvas bound to session.
func NewImageCanvas(session *app.Session) *ImageCanvas {
	ic := &ImageCanvas{
		session: session,
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
	}

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.raster.SetMinSize(ic.imgSize)

	ic.content = newDraggableContent(ic, ic.raster)
	ic.scroll = newZoomScroll(ic.content, ic)

	ic.ExtendBaseWidget(ic)

	session.OnFrame(ic.setFrame)
	ic.setFrame(session.Frame())
	return ic
}

// Container returns the canvas container for embedding in layouts.
func (ic *ImageCanvas) Container() fyne.CanvasObject {
	return ic.scroll
}

// Session returns the bound session.
func (ic *ImageCanvas) Session() *app.Session {
	return ic.session
}

// view maps image coordinates to view coordinates.
func (ic *ImageCanvas) view() geometry.AffineTransform {
	return geometry.Scale(ic.zoom, ic.zoom)
}

// ViewToImage converts a position on the content to image coordinates.
func (ic *ImageCanvas) ViewToImage(pos fyne.Position) geometry.Point2D {
	inv, ok := ic.view().Inverse()
	if !ok {
		return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
	}
	return inv.Apply(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
}

// ImageToView converts image coordinates to a position on the content.
func (ic *ImageCanvas) ImageToView(p geometry.Point2D) fyne.Position {
	v := ic.view().Apply(p)
	return fyne.NewPos(float32(v.X), float32(v.Y))
}

// TypedKey forwards a key press from the window to the controller.
func (ic *ImageCanvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape, fyne.KeyDelete, fyne.KeyBackspace,
		fyne.KeyUp, fyne.KeyDown, fyne.KeyLeft, fyne.KeyRight:
		ic.dispatch(interact.KeyPress{Key: string(ev.Name), Shift: ic.shift})
	}
}

// KeyDown tracks the shift modifier on desktop drivers.
func (ic *ImageCanvas) KeyDown(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		ic.shift = true
	}
}

// KeyUp tracks the shift modifier on desktop drivers.
func (ic *ImageCanvas) KeyUp(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		ic.shift = false
	}
}

// OnModeChange sets a callback run after every dispatched event.
func (ic *ImageCanvas) OnModeChange(callback func(mode interact.Mode, target string)) {
	ic.onModeChange = callback
}

func (ic *ImageCanvas) dispatch(ev interact.Event) {
	mode := ic.session.Handle(ev)
	if ic.onModeChange != nil {
		ic.onModeChange(mode, ic.session.Controller().Target())
	}
}

// SetZoom sets the zoom level.
func (ic *ImageCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ic.zoom = zoom
	ic.updateContentSize()

	if ic.onZoomChange != nil {
		ic.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (ic *ImageCanvas) GetZoom() float64 {
	return ic.zoom
}

// ZoomIn increases the zoom level.
func (ic *ImageCanvas) ZoomIn() {
	ic.SetZoom(ic.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (ic *ImageCanvas) ZoomOut() {
	ic.SetZoom(ic.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (ic *ImageCanvas) OnZoomChange(callback func(zoom float64)) {
	ic.onZoomChange = callback
}

// Refresh refreshes the canvas display.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

func (ic *ImageCanvas) setFrame(img *image.RGBA) {
	ic.mu.Lock()
	resized := ic.frame == nil || img == nil || ic.frame.Bounds() != img.Bounds()
	ic.frame = img
	ic.mu.Unlock()

	if resized {
		ic.updateContentSize()
		return
	}
	ic.raster.Refresh()
}

func (ic *ImageCanvas) frameBounds() image.Rectangle {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.frame == nil {
		return image.Rectangle{}
	}
	return ic.frame.Bounds()
}

// updateContentSize updates the content size based on frame and zoom.
func (ic *ImageCanvas) updateContentSize() {
	bounds := ic.frameBounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		ic.imgSize = fyne.NewSize(400, 300)
	} else {
		width := float32(float64(bounds.Dx()) * ic.zoom)
		height := float32(float64(bounds.Dy()) * ic.zoom)
		ic.imgSize = fyne.NewSize(width, height)
	}

	ic.raster.SetMinSize(ic.imgSize)
	ic.raster.Resize(ic.imgSize)
	if ic.content != nil {
		ic.content.Resize(ic.imgSize)
		ic.content.Refresh()
	}
	ic.raster.Refresh()
	if ic.scroll != nil {
		ic.scroll.Refresh()
	}
}

// draw is the raster drawing function; fyne scales the frame to the
// raster's size.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.frame == nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return ic.frame
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.scroll)
}
