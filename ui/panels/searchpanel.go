package panels

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"caption-canvas/internal/search"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const searchTimeout = 30 * time.Second

// SearchPanel finds background photos and opens the chosen one.
type SearchPanel struct {
	host      Host
	container fyne.CanvasObject

	queryEntry  *widget.Entry
	statusLabel *widget.Label
	results     *widget.List

	mu   sync.Mutex
	hits []search.Hit
}

// NewSearchPanel creates a new search panel.
func NewSearchPanel(host Host) *SearchPanel {
	sp := &SearchPanel{host: host}

	sp.queryEntry = widget.NewEntry()
	sp.queryEntry.SetPlaceHolder("Search photos")
	sp.queryEntry.OnSubmitted = func(string) { sp.onSearch() }

	sp.statusLabel = widget.NewLabel("")
	sp.statusLabel.Wrapping = fyne.TextWrapWord

	sp.results = widget.NewList(
		func() int {
			sp.mu.Lock()
			defer sp.mu.Unlock()
			return len(sp.hits)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			sp.mu.Lock()
			defer sp.mu.Unlock()
			if id < len(sp.hits) {
				h := sp.hits[id]
				obj.(*widget.Label).SetText(fmt.Sprintf("%s (%dx%d)", h.Tags, h.WebformatWidth, h.WebformatHeight))
			}
		},
	)
	sp.results.OnSelected = func(id widget.ListItemID) {
		sp.mu.Lock()
		if id >= len(sp.hits) {
			sp.mu.Unlock()
			return
		}
		hit := sp.hits[id]
		sp.mu.Unlock()
		sp.results.UnselectAll()
		sp.host.OpenBackground(hit.Source())
	}

	sp.container = container.NewBorder(
		container.NewVBox(
			container.NewBorder(nil, nil, nil, widget.NewButton("Search", sp.onSearch), sp.queryEntry),
			sp.statusLabel,
		),
		nil, nil, nil,
		sp.results,
	)
	return sp
}

// Container returns the panel container.
func (sp *SearchPanel) Container() fyne.CanvasObject {
	return sp.container
}

func (sp *SearchPanel) onSearch() {
	query := sp.queryEntry.Text
	key := sp.host.Prefs().PixabayKey()
	if key == "" {
		sp.statusLabel.SetText("Set a Pixabay API key in Preferences or PIXABAY_KEY")
		return
	}
	sp.statusLabel.SetText("Searching...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		hits, err := search.NewClient(key).Search(ctx, query)
		if err != nil {
			log.Printf("search %q: %v", query, err)
			sp.statusLabel.SetText(err.Error())
			return
		}

		sp.mu.Lock()
		sp.hits = hits
		sp.mu.Unlock()
		sp.statusLabel.SetText(fmt.Sprintf("%d result(s)", len(hits)))
		sp.results.Refresh()
	}()
}
