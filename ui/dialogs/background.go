// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"caption-canvas/internal/background"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// BackgroundDialog asks for a background image location and its natural
// size.
type BackgroundDialog struct {
	window fyne.Window
	onOpen func(background.Source)

	urlEntry    *widget.Entry
	widthEntry  *widget.Entry
	heightEntry *widget.Entry
}

// NewBackgroundDialog creates a new background dialog.
func NewBackgroundDialog(window fyne.Window, onOpen func(background.Source)) *BackgroundDialog {
	return &BackgroundDialog{
		window: window,
		onOpen: onOpen,
	}
}

// Show displays the dialog.
func (d *BackgroundDialog) Show() {
	d.urlEntry = widget.NewEntry()
	d.urlEntry.SetPlaceHolder("https://... or /path/to/image.png")
	d.widthEntry = widget.NewEntry()
	d.widthEntry.SetPlaceHolder("from image")
	d.heightEntry = widget.NewEntry()
	d.heightEntry.SetPlaceHolder("from image")

	form := widget.NewForm(
		widget.NewFormItem("Image URL", d.urlEntry),
		widget.NewFormItem("Width", d.widthEntry),
		widget.NewFormItem("Height", d.heightEntry),
	)

	dlg := dialog.NewCustomConfirm("Open Background", "Open", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		src, err := ParseSource(d.urlEntry.Text, d.widthEntry.Text, d.heightEntry.Text)
		if err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		if d.onOpen != nil {
			d.onOpen(src)
		}
	}, d.window)
	dlg.Resize(fyne.NewSize(480, 240))
	dlg.Show()
}

// ParseSource validates dialog input. Blank sizes are left zero and filled
// in from the decoded image.
func ParseSource(url, width, height string) (background.Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return background.Source{}, fmt.Errorf("image URL is required")
	}
	w, err := parseDimension("width", width)
	if err != nil {
		return background.Source{}, err
	}
	h, err := parseDimension("height", height)
	if err != nil {
		return background.Source{}, err
	}
	return background.Source{PixelURL: url, NaturalWidth: w, NaturalHeight: h}, nil
}

func parseDimension(name, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}
