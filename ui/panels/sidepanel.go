// Package panels provides UI panels for the application.
package panels

import (
	"caption-canvas/internal/app"
	"caption-canvas/internal/background"
	"caption-canvas/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Host is the window the panels act on. The session is looked up on every
// use because opening a new background replaces it.
type Host interface {
	Session() *app.Session
	Window() fyne.Window
	Prefs() *prefs.Prefs
	OpenBackground(src background.Source)
	SetStatus(text string)
}

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	container *container.AppTabs

	editPanel   *EditPanel
	searchPanel *SearchPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(host Host) *SidePanel {
	sp := &SidePanel{
		editPanel:   NewEditPanel(host),
		searchPanel: NewSearchPanel(host),
	}

	sp.container = container.NewAppTabs(
		container.NewTabItem("Edit", sp.editPanel.Container()),
		container.NewTabItem("Search", sp.searchPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Edit returns the edit tab.
func (sp *SidePanel) Edit() *EditPanel {
	return sp.editPanel
}
