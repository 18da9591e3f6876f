// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"

	"caption-canvas/internal/app"
	"caption-canvas/internal/background"
	"caption-canvas/internal/interact"
	"caption-canvas/internal/version"
	"caption-canvas/ui/canvas"
	"caption-canvas/ui/dialogs"
	"caption-canvas/ui/panels"
	"caption-canvas/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window. It owns one session at a
// time; opening a background replaces it.
type MainWindow struct {
	win   fyne.Window
	cfg   app.Config
	prefs *prefs.Prefs

	session   *app.Session
	canvas    *canvas.ImageCanvas
	canvasBox *fyne.Container
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

var _ panels.Host = (*MainWindow)(nil)

// New creates a new main window with an empty session.
func New(fyneApp fyne.App, cfg app.Config, p *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		win:   fyneApp.NewWindow("Caption Canvas"),
		cfg:   cfg,
		prefs: p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupKeys()
	mw.replaceSession(nil)

	w, h := p.WindowSize()
	mw.win.Resize(fyne.NewSize(w, h))
	mw.win.SetOnClosed(mw.onClosed)
	return mw
}

// Window returns the fyne window.
func (mw *MainWindow) Window() fyne.Window {
	return mw.win
}

// Session returns the active session.
func (mw *MainWindow) Session() *app.Session {
	return mw.session
}

// Prefs returns the application preferences.
func (mw *MainWindow) Prefs() *prefs.Prefs {
	return mw.prefs
}

// ShowAndRun shows the window and runs the application loop.
func (mw *MainWindow) ShowAndRun() {
	mw.win.ShowAndRun()
}

// OpenBackground starts a new session over src.
func (mw *MainWindow) OpenBackground(src background.Source) {
	mw.prefs.SetString(prefs.KeyLastBackground, src.PixelURL)
	mw.replaceSession(&src)
	mw.SetStatus("Loading " + src.PixelURL)

	s := mw.session
	go func() {
		if err := s.WaitBackground(context.Background()); err != nil {
			mw.SetStatus(err.Error())
			return
		}
		if s == mw.session {
			r := s.Inspect()
			mw.SetStatus(fmt.Sprintf("Background %dx%d loaded", r.Width, r.Height))
		}
	}()
}

// SetStatus updates the status bar text.
func (mw *MainWindow) SetStatus(text string) {
	mw.statusBar.SetText(text)
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvasBox = container.NewStack()
	mw.sidePanel = panels.NewSidePanel(mw)

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvasBox,       // center
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.win.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("1:1", mw.onActualSize),
		mw.zoomLabel,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Background File...", mw.onOpenFile),
		fyne.NewMenuItem("Open Background URL...", mw.onOpenURL),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.win.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupKeys routes window key events to the active canvas.
func (mw *MainWindow) setupKeys() {
	c := mw.win.Canvas()
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if mw.canvas != nil {
			mw.canvas.TypedKey(ev)
		}
	})
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if mw.canvas != nil {
				mw.canvas.KeyDown(ev)
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if mw.canvas != nil {
				mw.canvas.KeyUp(ev)
			}
		})
	}
}

// replaceSession closes the current session and opens one over src.
func (mw *MainWindow) replaceSession(src *background.Source) {
	if mw.session != nil {
		if err := mw.session.Close(); err != nil {
			log.Printf("close session %s: %v", mw.session.ID, err)
		}
	}

	cfg := mw.cfg
	cfg.WatchBackground = mw.prefs.Bool(prefs.KeyWatchBackground, cfg.WatchBackground)
	s, err := app.Open(src, cfg)
	if err != nil {
		dialog.ShowError(err, mw.win)
		return
	}
	mw.session = s

	mw.canvas = canvas.NewImageCanvas(s)
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.canvas.OnModeChange(func(mode interact.Mode, target string) {
		mw.sidePanel.Edit().UpdateSelection(mode, target)
	})
	mw.sidePanel.Edit().UpdateSelection(interact.Idle, "")
	mw.zoomLabel.SetText("100%")

	mw.canvasBox.Objects = []fyne.CanvasObject{mw.canvas.Container()}
	mw.canvasBox.Refresh()
}

func (mw *MainWindow) onOpenFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.openFile(reader.URI().Path())
	}, mw.win)
	fd.SetFilter(storage.NewExtensionFileFilter(background.SupportedFormats()))
	fd.Show()
}

// openFile starts a session over a local image, refusing extensions the
// decoders do not cover.
func (mw *MainWindow) openFile(path string) bool {
	if !background.IsSupportedFormat(path) {
		dialog.ShowError(fmt.Errorf("unsupported image format: %s", path), mw.win)
		return false
	}
	mw.OpenBackground(background.Source{PixelURL: path})
	return true
}

func (mw *MainWindow) onOpenURL() {
	dialogs.NewBackgroundDialog(mw.win, mw.OpenBackground).Show()
}

func (mw *MainWindow) onPreferences() {
	dialogs.ShowPreferences(mw.win, mw.prefs, func() {
		mw.SetStatus("Preferences saved")
	})
}

func (mw *MainWindow) onZoomIn() {
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onActualSize() {
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) onClosed() {
	size := mw.win.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
	if mw.session != nil {
		mw.session.Close()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Caption Canvas",
		fmt.Sprintf("Caption Canvas v%s\n\n"+
			"Place captions and shapes over a photo and export the result.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.win)
}
