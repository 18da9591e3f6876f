package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"caption-canvas/internal/interact"
)

func TestParseScript(t *testing.T) {
	events, err := parseScript(strings.NewReader(`
# drag the rect
down 150 120
move 160.5 130
up 160.5 130
key Right shift
key Delete
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []interact.Event{
		interact.PointerDown{X: 150, Y: 120},
		interact.PointerMove{X: 160.5, Y: 130},
		interact.PointerUp{X: 160.5, Y: 130},
		interact.KeyPress{Key: "Right", Shift: true},
		interact.KeyPress{Key: "Delete"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events", len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, events[i], want[i])
		}
	}
}

func TestParseScriptErrors(t *testing.T) {
	for _, src := range []string{
		"down 1",
		"move x 2",
		"jump 1 2",
		"key",
		"key Up ctrl",
	} {
		if _, err := parseScript(strings.NewReader(src)); err == nil {
			t.Errorf("parseScript(%q) should fail", src)
		}
	}
}

func TestRunExports(t *testing.T) {
	dir := t.TempDir()
	err := run(options{
		caption:      "hello",
		captionColor: "blue",
		shapes:       "rect, circle",
		shapeColor:   "green",
		format:       "jpeg",
		out:          dir,
		timeout:      time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "canvas-image.jpg")); err != nil {
		t.Error(err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if err := run(options{format: "gif", timeout: time.Second}); err == nil {
		t.Error("unknown format should fail")
	}
	if err := run(options{format: "png", shapes: "star", timeout: time.Second}); err == nil {
		t.Error("unknown shape should fail")
	}
}

func TestRunReplaysScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "events.txt")
	if err := os.WriteFile(script, []byte("down 150 120\nup 150 120\nkey Delete\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run(options{
		shapes:     "rect",
		shapeColor: "red",
		script:     script,
		format:     "png",
		out:        dir,
		timeout:    time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "canvas-image.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, bg := pixel(img, 150, 125), pixel(img, 10, 10); got != bg {
		t.Errorf("rect area = %v, background = %v; delete not replayed", got, bg)
	}
}

func pixel(img image.Image, x, y int) [4]uint32 {
	r, g, b, a := img.At(x, y).RGBA()
	return [4]uint32{r, g, b, a}
}
