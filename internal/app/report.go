package app

import (
	"encoding/json"
	"fmt"
	"log"

	"caption-canvas/internal/element"
)

// Report is the diagnostic dump of a session: every element with its kind
// and attributes.
type Report struct {
	SessionID        string          `json:"sessionID"`
	Width            int             `json:"width"`
	Height           int             `json:"height"`
	BackgroundLoaded bool            `json:"backgroundLoaded"`
	Selected         string          `json:"selected,omitempty"`
	Elements         []ElementReport `json:"elements"`
}

// ElementReport describes one element.
type ElementReport struct {
	ID    string          `json:"id"`
	Kind  element.Kind    `json:"kind"`
	Attrs element.Element `json:"attrs"`
}

// Inspect builds a report of the current scene.
func (s *Session) Inspect() Report {
	snap := s.scene.Snapshot()
	w, h := s.renderer.SurfaceSize(snap)
	r := Report{
		SessionID:        s.ID,
		Width:            w,
		Height:           h,
		BackgroundLoaded: snap.Background != nil,
		Selected:         snap.SelectedID,
		Elements:         make([]ElementReport, 0, len(snap.Elements)),
	}
	for _, e := range snap.Elements {
		r.Elements = append(r.Elements, ElementReport{
			ID:    e.ElementID(),
			Kind:  e.ElementKind(),
			Attrs: e,
		})
	}
	return r
}

// JSON returns the indented JSON form of the report.
func (r Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Log writes one line per element to the standard logger.
func (r Report) Log() {
	log.Printf("session %s: %d element(s) on %dx%d canvas", r.SessionID, len(r.Elements), r.Width, r.Height)
	for _, e := range r.Elements {
		attrs, err := json.Marshal(e.Attrs)
		if err != nil {
			log.Printf("  %s (%s): %v", e.ID, e.Kind, err)
			continue
		}
		log.Printf("  %s (%s): %s", e.ID, e.Kind, attrs)
	}
}
