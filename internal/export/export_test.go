package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"caption-canvas/internal/background"
	"caption-canvas/internal/element"
	"caption-canvas/internal/render"
	"caption-canvas/internal/scene"
	"caption-canvas/pkg/colorutil"
)

func newExporter(t *testing.T) (*Exporter, *render.Context) {
	t.Helper()
	rc, err := render.NewContext(render.DefaultHandleSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rc.Close() })
	return New(render.New(rc, render.DefaultConfig())), rc
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 77, A: 255})
		}
	}
	return img
}

func TestExportEmptyScenePixelIdentical(t *testing.T) {
	x, _ := newExporter(t)
	bg := gradient(800, 600)
	s := scene.New()
	s.SetBackground(background.FromImage(bg))

	data, err := x.Bytes(s.Snapshot(), PNG)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("size = %v", b)
	}
	for _, p := range []image.Point{{0, 0}, {799, 599}, {123, 456}, {400, 300}} {
		want := bg.RGBAAt(p.X, p.Y)
		r, g, b, a := decoded.At(p.X, p.Y).RGBA()
		got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		if got != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestExportExcludesChrome(t *testing.T) {
	x, rc := newExporter(t)
	s := scene.New()
	r := element.NewRect(s.NextID(element.KindRect), "red", element.DefaultLayout())
	s.AddElement(r)
	s.SelectElement(r.ID)
	rc.Attach(r.ID)

	data, err := x.Bytes(s.Snapshot(), PNG)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// Handle area outside the rect stays white.
	if got := color.RGBAModel.Convert(img.At(96, 96)).(color.RGBA); got != colorutil.White {
		t.Errorf("handle pixel = %v, want white", got)
	}
	if got := color.RGBAModel.Convert(img.At(150, 125)).(color.RGBA); got != colorutil.Red {
		t.Errorf("rect pixel = %v, want red", got)
	}
}

func TestExportDeterministic(t *testing.T) {
	x, _ := newExporter(t)
	s := scene.New()
	l := element.DefaultLayout()
	text, _ := element.NewText(s.NextID(element.KindText), "Hello", l.CaptionPosition, "green", l.FontSize)
	s.AddElement(text)
	s.AddElement(element.NewCircle(s.NextID(element.KindCircle), "yellow", l))
	snap := s.Snapshot()

	for _, enc := range []Encoding{PNG, JPEG} {
		a, err := x.Bytes(snap, enc)
		if err != nil {
			t.Fatal(err)
		}
		b, err := x.Bytes(snap, enc)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%v export not deterministic", enc)
		}
	}
}

func TestSaveFileNames(t *testing.T) {
	x, _ := newExporter(t)
	dir := t.TempDir()
	snap := scene.New().Snapshot()

	name, err := x.Save(snap, PNG, DirSaver{Dir: dir})
	if err != nil || name != "canvas-image.png" {
		t.Fatalf("Save png = %q, %v", name, err)
	}
	name, err = x.Save(snap, JPEG, DirSaver{Dir: dir})
	if err != nil || name != "canvas-image.jpg" {
		t.Fatalf("Save jpeg = %q, %v", name, err)
	}

	f, err := os.Open(filepath.Join(dir, "canvas-image.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := jpeg.Decode(f); err != nil {
		t.Errorf("jpeg output does not decode: %v", err)
	}
}

func TestSaverError(t *testing.T) {
	x, _ := newExporter(t)
	boom := errors.New("disk full")
	_, err := x.Save(scene.New().Snapshot(), PNG, SaverFunc(func(string, []byte) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"png": PNG, ".PNG": PNG, "jpg": JPEG, "jpeg": JPEG} {
		got, err := ParseEncoding(in)
		if err != nil || got != want {
			t.Errorf("ParseEncoding(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEncoding("svg"); err == nil {
		t.Error("svg should be rejected")
	}
}
