// Package background provides loading and decoding of the photo that
// annotations are drawn over.
package background

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"caption-canvas/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source identifies a background chosen by the user. The sizes are hints
// from the search service; Load re-derives them from the decoded pixels.
type Source struct {
	PixelURL      string `json:"pixelURL"`
	NaturalWidth  int    `json:"naturalWidth"`
	NaturalHeight int    `json:"naturalHeight"`
}

// Image is a decoded background.
type Image struct {
	Source Source      // Where the pixels came from
	Pixels image.Image // Decoded image data
	Format string      // Decoder name (png, jpeg, ...)
	Width  int         // Natural width in pixels
	Height int         // Natural height in pixels
}

// FromImage wraps already decoded pixels.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	return &Image{
		Pixels: img,
		Width:  b.Dx(),
		Height: b.Dy(),
		Source: Source{NaturalWidth: b.Dx(), NaturalHeight: b.Dy()},
	}
}

// Size returns the natural image dimensions.
func (i *Image) Size() geometry.Size {
	return geometry.Size{Width: float64(i.Width), Height: float64(i.Height)}
}

// HTTPClient fetches remote backgrounds.
var HTTPClient = http.DefaultClient

// Load fetches and decodes the background named by src. Supported locations
// are plain paths, file:// URLs and http(s) URLs.
func Load(ctx context.Context, src Source) (*Image, error) {
	rc, err := open(ctx, src.PixelURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	out := FromImage(img)
	out.Format = format
	out.Source = src
	if src.NaturalWidth != out.Width || src.NaturalHeight != out.Height {
		out.Source.NaturalWidth = out.Width
		out.Source.NaturalHeight = out.Height
	}
	return out, nil
}

// LoadAsync loads src in a background goroutine and reports the result to
// done. done is called exactly once.
func LoadAsync(ctx context.Context, src Source, done func(*Image, error)) {
	go func() {
		img, err := Load(ctx, src)
		done(img, err)
	}()
}

// LocalPath returns the filesystem path of a local source.
func LocalPath(src Source) (string, bool) {
	u := src.PixelURL
	switch {
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return "", false
	case strings.HasPrefix(u, "file://"):
		parsed, err := url.Parse(u)
		if err != nil {
			return "", false
		}
		return filepath.FromSlash(parsed.Path), true
	case u == "":
		return "", false
	}
	return u, true
}

func open(ctx context.Context, location string) (io.ReadCloser, error) {
	if path, ok := LocalPath(Source{PixelURL: location}); ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		return f, nil
	}
	if location == "" {
		return nil, fmt.Errorf("failed to open image: empty location")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch image: %s", resp.Status)
	}
	return resp.Body, nil
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
