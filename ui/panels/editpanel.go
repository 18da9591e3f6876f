package panels

import (
	"fmt"

	"caption-canvas/internal/element"
	"caption-canvas/internal/export"
	"caption-canvas/internal/interact"
	"caption-canvas/pkg/colorutil"
	"caption-canvas/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// EditPanel adds captions and shapes, removes the selection and exports.
type EditPanel struct {
	host      Host
	container fyne.CanvasObject

	captionEntry  *widget.Entry
	captionColor  *widget.Select
	shapeKind     *widget.Select
	shapeColor    *widget.Select
	selectedLabel *widget.Label
	deleteButton  *widget.Button
}

// NewEditPanel creates a new edit panel.
func NewEditPanel(host Host) *EditPanel {
	ep := &EditPanel{host: host}
	p := host.Prefs()

	ep.selectedLabel = widget.NewLabel("Nothing selected")

	ep.captionEntry = widget.NewEntry()
	ep.captionEntry.SetPlaceHolder("Caption text")
	ep.captionEntry.OnSubmitted = func(string) { ep.onAddCaption() }

	ep.captionColor = widget.NewSelect(colorutil.TextPalette, func(c string) {
		p.SetString(prefs.KeyCaptionColor, c)
	})
	ep.captionColor.SetSelected(p.StringWithFallback(prefs.KeyCaptionColor, colorutil.TextPalette[0]))

	kinds := make([]string, len(element.ShapeKinds))
	for i, k := range element.ShapeKinds {
		kinds[i] = string(k)
	}
	ep.shapeKind = widget.NewSelect(kinds, nil)
	ep.shapeKind.SetSelected(kinds[0])

	ep.shapeColor = widget.NewSelect(colorutil.ShapePalette, func(c string) {
		p.SetString(prefs.KeyShapeColor, c)
	})
	ep.shapeColor.SetSelected(p.StringWithFallback(prefs.KeyShapeColor, colorutil.ShapePalette[0]))

	ep.deleteButton = widget.NewButton("Delete Selected", ep.onDelete)
	ep.deleteButton.Disable()

	ep.container = container.NewVBox(
		widget.NewCard("Caption", "", container.NewVBox(
			ep.captionEntry,
			container.NewHBox(widget.NewLabel("Color:"), ep.captionColor),
			widget.NewButton("Add Caption", ep.onAddCaption),
		)),
		widget.NewCard("Shape", "", container.NewVBox(
			container.NewHBox(widget.NewLabel("Kind:"), ep.shapeKind),
			container.NewHBox(widget.NewLabel("Color:"), ep.shapeColor),
			widget.NewButton("Add Shape", ep.onAddShape),
		)),
		widget.NewCard("Selection", "", container.NewVBox(
			ep.selectedLabel,
			ep.deleteButton,
		)),
		widget.NewCard("Export", "", container.NewVBox(
			container.NewHBox(
				widget.NewButton("PNG", func() { ep.onExport(export.PNG) }),
				widget.NewButton("JPEG", func() { ep.onExport(export.JPEG) }),
			),
			widget.NewButton("Log Canvas Elements", ep.onLogElements),
		)),
	)
	return ep
}

// Container returns the panel container.
func (ep *EditPanel) Container() fyne.CanvasObject {
	return ep.container
}

// UpdateSelection reflects the controller state.
func (ep *EditPanel) UpdateSelection(mode interact.Mode, target string) {
	if target == "" {
		ep.selectedLabel.SetText("Nothing selected")
		ep.deleteButton.Disable()
		return
	}
	ep.selectedLabel.SetText(fmt.Sprintf("%s (%s)", target, mode))
	ep.deleteButton.Enable()
}

func (ep *EditPanel) onAddCaption() {
	t, err := ep.host.Session().AddCaption(ep.captionEntry.Text, ep.captionColor.Selected)
	if err != nil {
		dialog.ShowError(err, ep.host.Window())
		return
	}
	ep.captionEntry.SetText("")
	ep.host.SetStatus("Added " + t.ID)
}

func (ep *EditPanel) onAddShape() {
	e, err := ep.host.Session().AddShape(ep.shapeKind.Selected, ep.shapeColor.Selected)
	if err != nil {
		dialog.ShowError(err, ep.host.Window())
		return
	}
	ep.host.SetStatus("Added " + e.ElementID())
}

func (ep *EditPanel) onDelete() {
	s := ep.host.Session()
	id := s.Controller().Target()
	if id == "" {
		return
	}
	if s.Remove(id) {
		ep.host.SetStatus("Removed " + id)
	}
	ep.UpdateSelection(interact.Idle, "")
}

func (ep *EditPanel) onExport(enc export.Encoding) {
	s := ep.host.Session()
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		saver := export.SaverFunc(func(_ string, data []byte) error {
			_, err := writer.Write(data)
			return err
		})
		if _, err := s.Export(enc, saver); err != nil {
			dialog.ShowError(err, ep.host.Window())
			return
		}
		ep.host.SetStatus("Exported " + writer.URI().Path())
	}, ep.host.Window())
	fd.SetFileName(enc.FileName())
	fd.SetFilter(storage.NewMimeTypeFileFilter([]string{enc.MIMEType()}))
	fd.Show()
}

func (ep *EditPanel) onLogElements() {
	r := ep.host.Session().Inspect()
	r.Log()
	ep.host.SetStatus(fmt.Sprintf("Logged %d element(s)", len(r.Elements)))
}
