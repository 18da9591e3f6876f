// Package app provides the editing session: it owns the scene, render
// context, interaction controller and exporter, and keeps the editor frame
// current.
package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"strings"
	"sync"

	"caption-canvas/internal/background"
	"caption-canvas/internal/element"
	"caption-canvas/internal/export"
	"caption-canvas/internal/interact"
	"caption-canvas/internal/render"
	"caption-canvas/internal/scene"
	"caption-canvas/pkg/colorutil"

	"github.com/google/uuid"
)

// MissingBackgroundError reports that a session was opened without a
// background source. The session stays usable at the fallback size.
type MissingBackgroundError struct{}

func (MissingBackgroundError) Error() string {
	return "no background image supplied"
}

// Session is one editing session over a single background.
type Session struct {
	ID  string
	cfg Config

	scene    *scene.Scene
	rc       *render.Context
	renderer *render.Renderer
	ctl      *interact.Controller
	exporter *export.Exporter

	renderMu sync.Mutex // orders snapshot, render and frame store

	mu             sync.RWMutex
	frame          *image.RGBA
	frameListeners []func(*image.RGBA)
	watcher        *background.Watcher
	closed         bool

	loaded  chan struct{}
	loadErr error
	cancel  context.CancelFunc
}

// SessionOption customizes Open.
type SessionOption func(*Session)

// WithFrameListener registers fn before the first frame is rendered.
func WithFrameListener(fn func(*image.RGBA)) SessionOption {
	return func(s *Session) {
		s.frameListeners = append(s.frameListeners, fn)
	}
}

// WithID overrides the generated session id.
func WithID(id string) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

// Open starts a session. The background loads asynchronously; a nil src
// leaves the canvas at the fallback size.
func Open(src *background.Source, cfg Config, opts ...SessionOption) (*Session, error) {
	rc, err := render.NewContext(cfg.HandleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire render context: %w", err)
	}

	sc := scene.New()
	renderer := render.New(rc, cfg.Render)
	s := &Session{
		ID:       uuid.NewString(),
		cfg:      cfg,
		scene:    sc,
		rc:       rc,
		renderer: renderer,
		ctl:      interact.New(sc, rc, cfg.Interact),
		exporter: export.New(renderer),
		loaded:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	sc.OnChange(func(scene.EventType, interface{}) {
		s.rerender()
	})
	s.rerender()

	if src == nil {
		s.loadErr = MissingBackgroundError{}
		log.Printf("session %s: %v", s.ID, s.loadErr)
		close(s.loaded)
		return s, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	source := *src
	background.LoadAsync(ctx, source, func(img *background.Image, err error) {
		defer close(s.loaded)
		if err != nil {
			s.loadErr = fmt.Errorf("failed to load background: %w", err)
			log.Printf("session %s: %v", s.ID, s.loadErr)
			return
		}
		if s.isClosed() {
			return
		}
		log.Printf("session %s: background %dx%d loaded", s.ID, img.Width, img.Height)
		sc.SetBackground(img)
		if cfg.WatchBackground {
			s.watch(source)
		}
	})
	return s, nil
}

func (s *Session) watch(src background.Source) {
	if _, ok := background.LocalPath(src); !ok {
		return
	}
	w, err := background.NewWatcher(src, s.cfg.WatchDebounce, func(img *background.Image, err error) {
		if err != nil {
			log.Printf("session %s: reload failed: %v", s.ID, err)
			return
		}
		if !s.isClosed() {
			s.scene.SetBackground(img)
		}
	})
	if err != nil {
		log.Printf("session %s: %v", s.ID, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		w.Close()
		return
	}
	s.watcher = w
}

// WaitBackground blocks until the background load finished and returns its
// error, or MissingBackgroundError when none was supplied.
func (s *Session) WaitBackground(ctx context.Context) error {
	select {
	case <-s.loaded:
		return s.loadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scene returns the session's scene.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Controller returns the interaction controller.
func (s *Session) Controller() *interact.Controller { return s.ctl }

// RenderContext returns the render context, for text measuring in shells.
func (s *Session) RenderContext() *render.Context { return s.rc }

// AddCaption adds a text element with the configured default placement.
func (s *Session) AddCaption(text, color string) (element.Text, error) {
	color = s.resolveColor(color, s.cfg.DefaultTextColor, "text")
	t, err := element.NewText("", text, s.cfg.Layout.CaptionPosition, color, s.cfg.Layout.FontSize)
	if err != nil {
		return element.Text{}, err
	}
	t.ID = s.scene.NextID(element.KindText)
	s.scene.AddElement(t)
	return t, nil
}

// AddShape adds a shape of the named kind with the configured default placement.
func (s *Session) AddShape(kind, color string) (element.Element, error) {
	k, err := element.ParseKind(strings.ToLower(strings.TrimSpace(kind)))
	if err != nil {
		return nil, err
	}
	color = s.resolveColor(color, s.cfg.DefaultShapeColor, "shape")
	e, err := element.NewShape(k, s.scene.NextID(k), color, s.cfg.Layout)
	if err != nil {
		return nil, err
	}
	s.scene.AddElement(e)
	return e, nil
}

func (s *Session) resolveColor(c, fallback, what string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if _, ok := colorutil.Parse(c); ok {
		return c
	}
	log.Printf("session %s: unknown %s color %q, using %s", s.ID, what, c, fallback)
	return fallback
}

// Handle forwards an input event to the controller.
func (s *Session) Handle(ev interact.Event) interact.Mode {
	return s.ctl.Handle(ev)
}

// Select selects id ("" clears) and attaches the overlay.
func (s *Session) Select(id string) bool {
	return s.ctl.Select(id)
}

// Remove deletes the element with id.
func (s *Session) Remove(id string) bool {
	if s.ctl.Target() == id {
		s.ctl.Select("")
	}
	return s.scene.RemoveElement(id)
}

// Frame returns the most recent editor frame, overlay included.
func (s *Session) Frame() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// OnFrame registers fn to receive every new editor frame.
func (s *Session) OnFrame(fn func(*image.RGBA)) {
	s.mu.Lock()
	s.frameListeners = append(s.frameListeners, fn)
	s.mu.Unlock()
}

// rerender renders the current snapshot as the editor frame. Concurrent
// calls store frames in snapshot order, and listeners always receive the
// newest frame.
func (s *Session) rerender() {
	s.renderMu.Lock()
	img := s.renderer.Render(s.scene.Snapshot(), render.Options{Chrome: true})
	s.mu.Lock()
	s.frame = img
	s.mu.Unlock()
	s.renderMu.Unlock()

	s.mu.RLock()
	img = s.frame
	listeners := s.frameListeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(img)
	}
}

// Export encodes the current scene without overlay and hands it to saver.
func (s *Session) Export(enc export.Encoding, saver export.Saver) (string, error) {
	name, err := s.exporter.Save(s.scene.Snapshot(), enc, saver)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", enc, err)
	}
	log.Printf("session %s: exported %s", s.ID, name)
	return name, nil
}

// ExportTo writes the encoded scene to w.
func (s *Session) ExportTo(w io.Writer, enc export.Encoding) error {
	return s.exporter.Export(w, s.scene.Snapshot(), enc)
}

// Close stops the watcher, drops listeners and releases the render context.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	w := s.watcher
	s.watcher = nil
	s.frameListeners = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if w != nil {
		w.Close()
	}
	s.scene.ClearListeners()
	return s.rc.Close()
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
