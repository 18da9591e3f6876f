package mainwindow

import (
	"path/filepath"
	"testing"

	"caption-canvas/internal/app"
	"caption-canvas/ui/prefs"

	"fyne.io/fyne/v2/test"
)

func TestOpenFileRejectsUnsupportedFormat(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	dir := t.TempDir()
	mw := New(a, app.DefaultConfig(), prefs.LoadFrom(filepath.Join(dir, "prefs.json")))
	t.Cleanup(func() { mw.Session().Close() })

	before := mw.Session()
	if mw.openFile(filepath.Join(dir, "notes.txt")) {
		t.Fatal("text file accepted as background")
	}
	if mw.Session() != before {
		t.Error("session replaced after rejected file")
	}

	if !mw.openFile(filepath.Join(dir, "photo.PNG")) {
		t.Fatal("png rejected")
	}
	if mw.Session() == before {
		t.Error("session not replaced for a supported file")
	}
}
