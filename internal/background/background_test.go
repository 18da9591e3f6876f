package background

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.WriteFile(path, encodePNG(t, w, h, color.RGBA{R: 10, G: 20, B: 30, A: 255}), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	writePNG(t, path, 40, 30)

	for _, loc := range []string{path, "file://" + filepath.ToSlash(path)} {
		img, err := Load(context.Background(), Source{PixelURL: loc, NaturalWidth: 1, NaturalHeight: 1})
		if err != nil {
			t.Fatalf("Load(%q): %v", loc, err)
		}
		if img.Width != 40 || img.Height != 30 {
			t.Errorf("size = %dx%d, want 40x30", img.Width, img.Height)
		}
		if img.Source.NaturalWidth != 40 || img.Source.NaturalHeight != 30 {
			t.Errorf("natural size not re-derived: %+v", img.Source)
		}
		if img.Format != "png" {
			t.Errorf("Format = %q", img.Format)
		}
	}
}

func TestLoadHTTP(t *testing.T) {
	data := encodePNG(t, 12, 8, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := Load(context.Background(), Source{PixelURL: srv.URL + "/photo.png"})
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 12 || img.Height != 8 {
		t.Errorf("size = %dx%d", img.Width, img.Height)
	}

	if _, err := Load(context.Background(), Source{PixelURL: srv.URL + "/missing.png"}); err == nil {
		t.Error("expected error for 404")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	os.WriteFile(bad, []byte("not an image"), 0o644)

	for _, loc := range []string{"", filepath.Join(dir, "nope.png"), bad} {
		if _, err := Load(context.Background(), Source{PixelURL: loc}); err == nil {
			t.Errorf("Load(%q) succeeded, want error", loc)
		}
	}
}

func TestLoadAsync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	writePNG(t, path, 5, 5)

	ch := make(chan *Image, 1)
	LoadAsync(context.Background(), Source{PixelURL: path}, func(img *Image, err error) {
		if err != nil {
			t.Error(err)
		}
		ch <- img
	})
	select {
	case img := <-ch:
		if img == nil || img.Width != 5 {
			t.Errorf("img = %+v", img)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("load did not complete")
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"/tmp/a.png", "/tmp/a.png", true},
		{"file:///tmp/a.png", filepath.FromSlash("/tmp/a.png"), true},
		{"https://cdn.example.com/a.png", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := LocalPath(Source{PixelURL: tt.in})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LocalPath(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	writePNG(t, path, 10, 10)

	reloaded := make(chan *Image, 4)
	w, err := NewWatcher(Source{PixelURL: path}, 20*time.Millisecond, func(img *Image, err error) {
		if err == nil {
			reloaded <- img
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writePNG(t, path, 20, 15)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case img := <-reloaded:
			if img.Width == 20 && img.Height == 15 {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not reload")
		}
	}
}

func TestWatcherRejectsRemote(t *testing.T) {
	if _, err := NewWatcher(Source{PixelURL: "https://example.com/a.png"}, time.Millisecond, func(*Image, error) {}); err == nil {
		t.Error("expected error for remote source")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for path, want := range map[string]bool{
		"photo.png":       true,
		"/tmp/PHOTO.JPEG": true,
		"scan.tif":        true,
		"notes.txt":       false,
		"archive.png.zip": false,
		"no-extension":    false,
	} {
		if got := IsSupportedFormat(path); got != want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", path, got, want)
		}
	}
}
