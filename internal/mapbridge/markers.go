// Package mapbridge connects the editing session to the external map
// widget: a deterministic projection of session state into a flat
// marker list, and a local server that pushes that list to a browser
// map page and relays marker clicks back into the event loop.
package mapbridge

import (
	"hb2-cli/internal/model"
	"hb2-cli/internal/selection"
	"hb2-cli/internal/session"
)

// Project derives the full marker list from the current session state.
// It is pure: calling it twice on the same session yields identical
// lists. Order is start (or its candidates), checkpoints in wire order,
// then finish (or its candidates).
func Project(s session.Session) []model.PlaceMarker {
	markers := make([]model.PlaceMarker, 0, 8)
	markers = append(markers, placeMarkers(s.Start, model.MarkerStart)...)
	markers = append(markers, checkpointMarkers(s.Checkpoints)...)
	markers = append(markers, placeMarkers(s.Finish, model.MarkerFinish)...)
	return markers
}

func checkpointMarkers(c session.Checkpoints) []model.PlaceMarker {
	if c.Status == session.StatusEditing {
		out := make([]model.PlaceMarker, 0, len(c.Candidates))
		for _, cp := range c.Candidates {
			selected := selection.IsSelected(cp.Info.PlaceID, c.Sel)
			class := model.MarkerPossible
			if selected {
				class = model.MarkerCheckpoint
			}
			out = append(out, marker(cp.Info, class, selected, true))
		}
		return out
	}

	// Displaying a persisted (or optimistically pending) list: every
	// entry is shown as chosen and nothing is clickable.
	shown := c.Displayed()
	out := make([]model.PlaceMarker, 0, len(shown))
	for _, cp := range shown {
		out = append(out, marker(cp.Info, model.MarkerCheckpoint, true, false))
	}
	return out
}

func placeMarkers(p session.PlaceSlice, class model.MarkerClass) []model.PlaceMarker {
	if p.Status == session.StatusEditing {
		out := make([]model.PlaceMarker, 0, len(p.Candidates))
		for i, cand := range p.Candidates {
			out = append(out, marker(cand, class, i == p.Cursor, true))
		}
		return out
	}
	if info, ok := p.Displayed(); ok {
		return []model.PlaceMarker{marker(info, class, true, false)}
	}
	return nil
}

func marker(info model.PlaceInfo, class model.MarkerClass, selected, editable bool) model.PlaceMarker {
	return model.PlaceMarker{
		ID:            info.PlaceID,
		PlaceClass:    class,
		Name:          info.Name,
		PlaceType:     info.PlaceType,
		ScheduleLabel: info.ScheduleLabel,
		Coords:        info.Coords,
		Selected:      selected,
		Editable:      editable,
	}
}
