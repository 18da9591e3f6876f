// Package export encodes chrome-free renders of a scene to PNG or JPEG.
package export

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"caption-canvas/internal/render"
	"caption-canvas/internal/scene"
)

// Encoding selects the output format.
type Encoding int

const (
	PNG  Encoding = iota // lossless raster
	JPEG                 // lossy raster, maximum quality
)

// BaseName is the file name stem used for exports.
const BaseName = "canvas-image"

// JPEGQuality is the encoder quality used for JPEG exports.
const JPEGQuality = 100

func (e Encoding) String() string {
	switch e {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	}
	return "unknown"
}

// Extension returns the file extension including the dot.
func (e Encoding) Extension() string {
	if e == JPEG {
		return ".jpg"
	}
	return ".png"
}

// FileName returns the conventional export file name.
func (e Encoding) FileName() string {
	return BaseName + e.Extension()
}

// MIMEType returns the media type of the encoded output.
func (e Encoding) MIMEType() string {
	if e == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseEncoding accepts png, jpg or jpeg.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return 0, fmt.Errorf("unknown export format %q", s)
}

// Saver delivers an encoded export to its destination.
type Saver interface {
	Save(name string, data []byte) error
}

// DirSaver writes exports into a directory.
type DirSaver struct {
	Dir string
}

// Save writes data to Dir/name.
func (d DirSaver) Save(name string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(name string, data []byte) error

func (f SaverFunc) Save(name string, data []byte) error {
	return f(name, data)
}

// Exporter renders and encodes snapshots.
type Exporter struct {
	renderer *render.Renderer
}

// New creates an exporter drawing with r.
func New(r *render.Renderer) *Exporter {
	return &Exporter{renderer: r}
}

// Export renders snap without the transform overlay and writes it to w.
func (x *Exporter) Export(w io.Writer, snap scene.Snapshot, enc Encoding) error {
	img := x.renderer.Render(snap, render.Options{Chrome: false})
	switch enc {
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case JPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		return fmt.Errorf("unknown encoding %d", enc)
	}
	return nil
}

// Bytes returns the encoded export of snap.
func (x *Exporter) Bytes(snap scene.Snapshot, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.Export(&buf, snap, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes snap and hands it to s under the conventional file name.
func (x *Exporter) Save(snap scene.Snapshot, enc Encoding, s Saver) (string, error) {
	data, err := x.Bytes(snap, enc)
	if err != nil {
		return "", err
	}
	name := enc.FileName()
	if err := s.Save(name, data); err != nil {
		return "", err
	}
	return name, nil
}
