// Command annotate builds an annotated image without the GUI: it loads a
// background, adds captions and shapes, replays input events and exports
// the result. With -mcp it serves the session to an agent over stdio.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"caption-canvas/internal/app"
	"caption-canvas/internal/background"
	"caption-canvas/internal/export"
	"caption-canvas/internal/mcpserver"
	"caption-canvas/internal/search"
	"caption-canvas/internal/version"
	"caption-canvas/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	bg := flag.String("bg", "", "Background image path or URL")
	width := flag.Int("width", 0, "Natural width of the background (0 = from image)")
	height := flag.Int("height", 0, "Natural height of the background (0 = from image)")
	caption := flag.String("caption", "", "Caption text to add")
	captionColor := flag.String("caption-color", "black", "Caption color")
	shapes := flag.String("shape", "", "Comma-separated shapes to add (rect, circle, polygon)")
	shapeColor := flag.String("shape-color", "red", "Shape fill color")
	script := flag.String("script", "", "File of input events to replay")
	format := flag.String("format", "png", "Export format (png or jpeg)")
	out := flag.String("out", ".", "Export directory (empty to skip export)")
	inspect := flag.Bool("inspect", false, "Print the element report as JSON")
	query := flag.String("search", "", "Search Pixabay and use the first hit when -bg is empty")
	watch := flag.Bool("watch", false, "Reload a local background when the file changes")
	serve := flag.Bool("mcp", false, "Serve the session as MCP tools on stdio")
	timeout := flag.Duration("timeout", 30*time.Second, "Background load timeout")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("annotate %s (%s, %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if err := run(options{
		bg:           *bg,
		width:        *width,
		height:       *height,
		caption:      *caption,
		captionColor: *captionColor,
		shapes:       *shapes,
		shapeColor:   *shapeColor,
		script:       *script,
		format:       *format,
		out:          *out,
		inspect:      *inspect,
		query:        *query,
		watch:        *watch,
		serve:        *serve,
		timeout:      *timeout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	bg            string
	width, height int
	caption       string
	captionColor  string
	shapes        string
	shapeColor    string
	script        string
	format        string
	out           string
	inspect       bool
	query         string
	watch         bool
	serve         bool
	timeout       time.Duration
}

func run(o options) error {
	enc, err := export.ParseEncoding(o.format)
	if err != nil {
		return err
	}

	src, err := resolveSource(o)
	if err != nil {
		return err
	}

	cfg := app.DefaultConfig()
	cfg.WatchBackground = o.watch
	sess, err := app.Open(src, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	err = sess.WaitBackground(ctx)
	cancel()
	var missing app.MissingBackgroundError
	if err != nil && !errors.As(err, &missing) {
		return err
	}

	if o.caption != "" {
		if _, err := sess.AddCaption(o.caption, o.captionColor); err != nil {
			return err
		}
	}
	for _, kind := range strings.Split(o.shapes, ",") {
		if kind = strings.TrimSpace(kind); kind == "" {
			continue
		}
		if _, err := sess.AddShape(kind, o.shapeColor); err != nil {
			return err
		}
	}

	if o.script != "" {
		f, err := os.Open(o.script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		events, err := parseScript(f)
		f.Close()
		if err != nil {
			return err
		}
		sess.Controller().Consume(slices.Values(events))
	}

	if o.serve {
		return mcpserver.New(sess).ServeStdio()
	}

	if o.inspect {
		data, err := sess.Inspect().JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if o.out != "" {
		name, err := sess.Export(enc, export.DirSaver{Dir: o.out})
		if err != nil {
			return err
		}
		log.Printf("wrote %s", name)
	}
	return nil
}

// resolveSource picks the background: -bg wins, then the first search hit.
// It returns nil when neither is given.
func resolveSource(o options) (*background.Source, error) {
	if o.bg != "" {
		return &background.Source{PixelURL: o.bg, NaturalWidth: o.width, NaturalHeight: o.height}, nil
	}
	if o.query == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	hits, err := search.NewClient(prefs.Load().PixabayKey()).Search(ctx, o.query)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("no images found for %q", o.query)
	}
	for _, h := range hits {
		log.Printf("hit %d: %s %s", h.ID, h.Tags, h.WebformatURL)
	}
	src := hits[0].Source()
	return &src, nil
}
