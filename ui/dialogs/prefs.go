package dialogs

import (
	"strings"

	"caption-canvas/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowPreferences edits the stored preferences and saves them on confirm.
func ShowPreferences(window fyne.Window, p *prefs.Prefs, onSaved func()) {
	keyEntry := widget.NewPasswordEntry()
	keyEntry.SetText(p.String(prefs.KeyPixabayKey))

	dirEntry := widget.NewEntry()
	dirEntry.SetText(p.ExportDir())

	watchCheck := widget.NewCheck("Reload background when the file changes", nil)
	watchCheck.SetChecked(p.Bool(prefs.KeyWatchBackground, false))

	form := widget.NewForm(
		widget.NewFormItem("Pixabay API key", keyEntry),
		widget.NewFormItem("Export directory", dirEntry),
		widget.NewFormItem("", watchCheck),
	)

	dlg := dialog.NewCustomConfirm("Preferences", "Save", "Cancel", form, func(save bool) {
		if !save {
			return
		}
		p.SetString(prefs.KeyPixabayKey, strings.TrimSpace(keyEntry.Text))
		p.SetString(prefs.KeyExportDir, strings.TrimSpace(dirEntry.Text))
		p.SetBool(prefs.KeyWatchBackground, watchCheck.Checked)
		if err := p.Save(); err != nil {
			dialog.ShowError(err, window)
			return
		}
		if onSaved != nil {
			onSaved()
		}
	}, window)
	dlg.Resize(fyne.NewSize(480, 240))
	dlg.Show()
}
