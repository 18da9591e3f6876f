// Package main provides the entry point for the Caption Canvas editor.
package main

import (
	"flag"
	"log"

	"caption-canvas/internal/app"
	"caption-canvas/internal/background"
	"caption-canvas/internal/version"
	"caption-canvas/ui/mainwindow"
	"caption-canvas/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "io.captioncanvas.editor"
	appTitle = "Caption Canvas"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	restore := flag.Bool("restore", true, "reopen the last background when none is given")
	flag.Parse()

	appPrefs := prefs.Load()

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.CanvasTheme{})

	win := mainwindow.New(a, app.DefaultConfig(), appPrefs)

	switch {
	case flag.NArg() > 0:
		win.OpenBackground(background.Source{PixelURL: flag.Arg(0)})
	case *restore && appPrefs.String(prefs.KeyLastBackground) != "":
		win.OpenBackground(background.Source{PixelURL: appPrefs.String(prefs.KeyLastBackground)})
	}

	win.ShowAndRun()
}
