package interact

import (
	"context"
	"slices"
	"testing"
	"time"

	"caption-canvas/internal/element"
	"caption-canvas/internal/render"
	"caption-canvas/internal/scene"
	"caption-canvas/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type fixture struct {
	scene *scene.Scene
	rc    *render.Context
	ctl   *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rc, err := render.NewContext(render.DefaultHandleSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rc.Close() })
	s := scene.New()
	return &fixture{scene: s, rc: rc, ctl: New(s, rc, DefaultConfig())}
}

func (f *fixture) addRect() element.Rect {
	r := element.NewRect(f.scene.NextID(element.KindRect), "red", element.DefaultLayout())
	f.scene.AddElement(r)
	return r
}

func (f *fixture) addCircle() element.Circle {
	c := element.NewCircle(f.scene.NextID(element.KindCircle), "blue", element.DefaultLayout())
	f.scene.AddElement(c)
	return c
}

func (f *fixture) addPolygon() element.Polygon {
	g := element.NewPolygon(f.scene.NextID(element.KindPolygon), "green", element.DefaultLayout())
	f.scene.AddElement(g)
	return g
}

func (f *fixture) addCaption(t *testing.T) element.Text {
	t.Helper()
	l := element.DefaultLayout()
	text, err := element.NewText(f.scene.NextID(element.KindText), "Caption", l.CaptionPosition, "black", l.FontSize)
	if err != nil {
		t.Fatal(err)
	}
	f.scene.AddElement(text)
	return text
}

// drag presses on the h anchor of id's current bounds, moves by (dx, dy)
// and releases. It returns the bounds from before the drag.
func (f *fixture) drag(t *testing.T, id string, h render.Handle, dx, dy float64) geometry.Rect {
	t.Helper()
	b := f.get(t, id).GetBounds(f.rc)
	p := h.Anchor(b)
	if m := f.ctl.Handle(PointerDown{X: p.X, Y: p.Y}); m != Transforming {
		t.Fatalf("press on %v handle: mode = %v, want transforming", h, m)
	}
	f.ctl.Handle(PointerMove{X: p.X + dx, Y: p.Y + dy})
	f.ctl.Handle(PointerUp{X: p.X + dx, Y: p.Y + dy})
	return b
}

func (f *fixture) get(t *testing.T, id string) element.Element {
	t.Helper()
	e, ok := f.scene.Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	return e
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSelectAndClear(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()

	if m := f.ctl.Handle(PointerDown{X: 150, Y: 120}); m != Selected {
		t.Fatalf("mode = %v, want selected", m)
	}
	f.ctl.Handle(PointerUp{X: 150, Y: 120})
	if f.scene.SelectedID() != r.ID || f.rc.Attached() != r.ID {
		t.Errorf("selection = %q, overlay = %q", f.scene.SelectedID(), f.rc.Attached())
	}

	if m := f.ctl.Handle(PointerDown{X: 700, Y: 500}); m != Idle {
		t.Errorf("mode = %v, want idle", m)
	}
	if f.scene.SelectedID() != "" || f.rc.Attached() != "" {
		t.Error("click on empty background should clear selection and overlay")
	}
}

func TestSwitchSelectionDirectly(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.scene.AddElement(element.NewPolygon(f.scene.NextID(element.KindPolygon), "green", element.DefaultLayout()))

	f.ctl.Handle(PointerDown{X: 120, Y: 110})
	f.ctl.Handle(PointerUp{X: 120, Y: 110})
	f.ctl.Handle(PointerDown{X: 200, Y: 210})
	if got := f.ctl.Target(); got != "polygon-2" {
		t.Errorf("target = %q", got)
	}
	if f.scene.SelectedID() != "polygon-2" || f.rc.Attached() != "polygon-2" {
		t.Error("overlay should follow the new selection")
	}
	if f.scene.SelectedID() == r.ID {
		t.Error("two elements selected")
	}
}

func TestDragMovesByPointerDelta(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()

	f.ctl.Consume(slices.Values([]Event{
		PointerDown{X: 150, Y: 120},
		PointerMove{X: 160, Y: 125},
		PointerMove{X: 170, Y: 130},
	}))
	if m := f.ctl.Mode(); m != Dragging {
		t.Fatalf("mode = %v, want dragging", m)
	}
	if got := f.get(t, r.ID).Pos(); got != (geometry.Point2D{X: 120, Y: 110}) {
		t.Errorf("position = %v, want (120, 110)", got)
	}
	if m := f.ctl.Handle(PointerUp{X: 170, Y: 130}); m != Selected {
		t.Errorf("mode after release = %v", m)
	}
	got := f.get(t, r.ID).(element.Rect)
	if got.Width != 100 || got.Height != 50 {
		t.Errorf("drag changed size: %+v", got)
	}
}

func TestNonDraggableSelectsButDoesNotMove(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.scene.UpdateElement(r.ID, element.Patch{Draggable: element.Ptr(false)})

	f.ctl.Handle(PointerDown{X: 150, Y: 120})
	if m := f.ctl.Handle(PointerMove{X: 180, Y: 140}); m != Selected {
		t.Errorf("mode = %v, want selected", m)
	}
	f.ctl.Handle(PointerUp{X: 180, Y: 140})
	f.ctl.Handle(KeyPress{Key: KeyRight})
	if got := f.get(t, r.ID).Pos(); got != r.Position {
		t.Errorf("non-draggable element moved to %v", got)
	}
}

func TestResizeRectKeepsOppositeCorner(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.ctl.Select(r.ID)

	// Bottom-right handle sits on (200, 150).
	if m := f.ctl.Handle(PointerDown{X: 200, Y: 150}); m != Transforming {
		t.Fatalf("mode = %v, want transforming", m)
	}
	f.ctl.Handle(PointerMove{X: 250, Y: 175})
	got := f.get(t, r.ID).(element.Rect)
	want := r
	want.Width, want.Height = 150, 75
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("bottom-right resize (-want +got):\n%s", d)
	}
	f.ctl.Handle(PointerUp{X: 250, Y: 175})

	// Top-left handle of the resized rect sits on (100, 100); the
	// bottom-right corner (250, 175) must stay put.
	f.ctl.Handle(PointerDown{X: 100, Y: 100})
	f.ctl.Handle(PointerMove{X: 130, Y: 115})
	got = f.get(t, r.ID).(element.Rect)
	br := geometry.Point2D{X: got.Position.X + got.Width, Y: got.Position.Y + got.Height}
	if d := cmp.Diff(geometry.Point2D{X: 250, Y: 175}, br, approx); d != "" {
		t.Errorf("opposite corner moved (-want +got):\n%s", d)
	}
	if d := cmp.Diff(geometry.Point2D{X: 130, Y: 115}, got.Position, approx); d != "" {
		t.Errorf("top-left (-want +got):\n%s", d)
	}
}

func TestResizeEdgeHandleOneAxis(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.ctl.Select(r.ID)

	// Right edge handle sits on (200, 125).
	f.ctl.Handle(PointerDown{X: 200, Y: 125})
	f.ctl.Handle(PointerMove{X: 220, Y: 160})
	got := f.get(t, r.ID).(element.Rect)
	want := r
	want.Width = 120
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("right edge resize (-want +got):\n%s", d)
	}
}

func TestResizeCircleUniform(t *testing.T) {
	f := newFixture(t)
	c := f.addCircle()
	f.ctl.Select(c.ID)

	// Bottom-right of the circle's box (100,100)-(200,200).
	f.ctl.Handle(PointerDown{X: 200, Y: 200})
	f.ctl.Handle(PointerMove{X: 220, Y: 240})
	got := f.get(t, c.ID).(element.Circle)
	if d := cmp.Diff(65.0, got.Radius, approx); d != "" {
		t.Errorf("radius (-want +got):\n%s", d)
	}
	if d := cmp.Diff(geometry.Point2D{X: 165, Y: 165}, got.Position, approx); d != "" {
		t.Errorf("center (-want +got):\n%s", d)
	}
	if d := cmp.Diff(geometry.Point2D{X: 100, Y: 100}, render.HandleTopLeft.Anchor(got.GetBounds(nil)), approx); d != "" {
		t.Errorf("fixed corner moved (-want +got):\n%s", d)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.ctl.Select(r.ID)

	f.ctl.Handle(PointerDown{X: 200, Y: 150})
	f.ctl.Handle(PointerMove{X: 20, Y: 20})
	got := f.get(t, r.ID).(element.Rect)
	if d := cmp.Diff([]float64{5, 5}, []float64{got.Width, got.Height}, approx); d != "" {
		t.Errorf("size (-want +got):\n%s", d)
	}
	if d := cmp.Diff(r.Position, got.Position, approx); d != "" {
		t.Errorf("top-left moved (-want +got):\n%s", d)
	}
}

func TestKeys(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.ctl.Select(r.ID)

	f.ctl.Handle(KeyPress{Key: KeyRight})
	f.ctl.Handle(KeyPress{Key: KeyDown, Shift: true})
	if got := f.get(t, r.ID).Pos(); got != (geometry.Point2D{X: 101, Y: 110}) {
		t.Errorf("nudged position = %v", got)
	}

	if m := f.ctl.Handle(KeyPress{Key: KeyEscape}); m != Idle {
		t.Errorf("mode after escape = %v", m)
	}
	if f.scene.SelectedID() != "" {
		t.Error("escape should clear selection")
	}

	f.ctl.Select(r.ID)
	f.ctl.Handle(KeyPress{Key: KeyDelete})
	if f.scene.Len() != 0 {
		t.Error("delete should remove the selected element")
	}
	if f.ctl.Mode() != Idle || f.rc.Attached() != "" {
		t.Error("delete should return to idle and detach the overlay")
	}
}

func TestStaleTargetFallsBackToIdle(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	f.ctl.Handle(PointerDown{X: 150, Y: 120})
	f.ctl.Handle(PointerMove{X: 155, Y: 120})

	f.scene.RemoveElement(r.ID)

	if m := f.ctl.Handle(PointerMove{X: 160, Y: 120}); m != Idle {
		t.Errorf("mode = %v, want idle", m)
	}
	if f.scene.Len() != 0 {
		t.Error("stale move resurrected an element")
	}
	if f.ctl.Select(r.ID) {
		t.Error("Select of a removed id should fail")
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	r := f.addRect()
	ch := make(chan Event, 4)
	ch <- PointerDown{X: 150, Y: 120}
	ch <- PointerMove{X: 151, Y: 121}
	ch <- PointerUp{X: 151, Y: 121}
	close(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.ctl.Run(ctx, ch); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, r.ID).Pos(); got != (geometry.Point2D{X: 101, Y: 101}) {
		t.Errorf("position = %v", got)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if err := f.ctl.Run(cancelled, make(chan Event)); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestResizeKeepsOppositeAnchor(t *testing.T) {
	tests := []struct {
		name   string
		add    func(*fixture, *testing.T) string
		handle render.Handle
		dx, dy float64
	}{
		{"text bottom-right", func(f *fixture, t *testing.T) string { return f.addCaption(t).ID }, render.HandleBottomRight, 30, 12},
		{"text top-left", func(f *fixture, t *testing.T) string { return f.addCaption(t).ID }, render.HandleTopLeft, -25, -10},
		{"text right edge", func(f *fixture, t *testing.T) string { return f.addCaption(t).ID }, render.HandleRight, 40, 0},
		{"polygon bottom-right", func(f *fixture, t *testing.T) string { return f.addPolygon().ID }, render.HandleBottomRight, 40, 20},
		{"polygon top-left", func(f *fixture, t *testing.T) string { return f.addPolygon().ID }, render.HandleTopLeft, 15, 25},
		{"polygon bottom edge", func(f *fixture, t *testing.T) string { return f.addPolygon().ID }, render.HandleBottom, 0, -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.add(f, t)
			f.ctl.Select(id)

			before := f.drag(t, id, tt.handle, tt.dx, tt.dy)
			after := f.get(t, id).GetBounds(f.rc)
			if after == before {
				t.Fatalf("bounds unchanged: %v", after)
			}
			opp := tt.handle.Opposite()
			if d := cmp.Diff(opp.Anchor(before), opp.Anchor(after), approx); d != "" {
				t.Errorf("%v anchor moved (-before +after):\n%s", opp, d)
			}
		})
	}
}

func TestResizeTextChangesFontSize(t *testing.T) {
	f := newFixture(t)
	text := f.addCaption(t)
	f.ctl.Select(text.ID)

	f.drag(t, text.ID, render.HandleBottomRight, 20, 20)
	got := f.get(t, text.ID).(element.Text)
	if got.FontSize <= text.FontSize {
		t.Errorf("font size %v after enlarging from %v", got.FontSize, text.FontSize)
	}
	if got.Content != text.Content {
		t.Errorf("content = %q", got.Content)
	}
}

func TestLongTextResizeKeepsFaceCacheBounded(t *testing.T) {
	f := newFixture(t)
	text := f.addCaption(t)
	f.ctl.Select(text.ID)

	p := render.HandleBottomRight.Anchor(text.GetBounds(f.rc))
	f.ctl.Handle(PointerDown{X: p.X, Y: p.Y})
	maxSeen := 0
	for i := range 400 {
		f.ctl.Handle(PointerMove{X: p.X + float64(i)*0.7, Y: p.Y + float64(i%37)*0.45})
		f.get(t, text.ID).GetBounds(f.rc)
		maxSeen = max(maxSeen, f.rc.CachedFaces())
	}
	f.ctl.Handle(PointerUp{X: p.X, Y: p.Y})
	if maxSeen > 16 {
		t.Errorf("face cache grew to %d during resize", maxSeen)
	}
}
