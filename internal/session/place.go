package session

import "hb2-cli/internal/model"

// PlaceSlice is the state slice for the start or finish place. It is
// structurally the checkpoint slice with the free-form selection
// replaced by a single cursor: exactly one candidate is chosen at all
// times, and moving the cursor is the only mutation while editing.
type PlaceSlice struct {
	Kind    model.PlaceKind
	Status  EditStatus
	waiting fetchWait

	Current    model.PlaceInfo
	HasCurrent bool
	Candidates []model.PlaceInfo
	Cursor     int
	Pending    model.PlaceInfo
	Err        string
}

func (p PlaceSlice) seeded(current model.PlaceInfo) PlaceSlice {
	return PlaceSlice{Kind: p.Kind, Status: StatusDisplay, Current: current, HasCurrent: true}
}

func (p PlaceSlice) failed(msg string) PlaceSlice {
	return PlaceSlice{Kind: p.Kind, Status: StatusError, Err: msg}
}

func (p PlaceSlice) reloading() PlaceSlice {
	next := PlaceSlice{Kind: p.Kind, Status: StatusLoading, waiting: waitSchedule}
	if p.HasCurrent {
		next.Current = p.Current
		next.HasCurrent = true
	}
	return next
}

func (p PlaceSlice) clickedEdit() (PlaceSlice, []Effect) {
	if p.Status != StatusDisplay {
		return p, nil
	}
	p.Status = StatusLoading
	p.waiting = waitCandidates
	return p, []Effect{FetchPlaceCandidates{Kind: p.Kind}}
}

func (p PlaceSlice) candidatesLoaded(places model.CandidatePlaces) (PlaceSlice, []Effect) {
	if p.Status != StatusLoading || p.waiting != waitCandidates {
		return p, nil
	}
	p.Status = StatusEditing
	p.waiting = waitNone
	p.Candidates = places.Candidates
	// Enter positioned at the currently persisted entry.
	p.Cursor = places.SavedIndex
	return p, []Effect{SyncMap{}}
}

func (p PlaceSlice) loadFailed(msg string) (PlaceSlice, []Effect) {
	if p.Status != StatusLoading || p.waiting != waitCandidates {
		return p, nil
	}
	return p.failed(msg), nil
}

func (p PlaceSlice) pickedIndex(i int) (PlaceSlice, []Effect) {
	if p.Status != StatusEditing {
		return p, nil
	}
	if i < 0 || i >= len(p.Candidates) {
		// Out-of-range picks keep the current cursor.
		return p, nil
	}
	p.Cursor = i
	return p, []Effect{SyncMap{}}
}

func (p PlaceSlice) clickedSave() (PlaceSlice, []Effect) {
	if p.Status != StatusEditing || len(p.Candidates) == 0 {
		return p, nil
	}
	p.Pending = p.Candidates[p.Cursor]
	p.Status = StatusSaving
	return p, []Effect{PostPlace{Kind: p.Kind, PlaceID: p.Pending.PlaceID}}
}

func (p PlaceSlice) saved(place model.PlaceInfo) (PlaceSlice, []Effect) {
	if p.Status != StatusSaving {
		return p, nil
	}
	return p.seeded(place), []Effect{SyncMap{}}
}

func (p PlaceSlice) saveFailed(msg string) (PlaceSlice, []Effect) {
	if p.Status != StatusSaving {
		return p, nil
	}
	return p.failed(msg), nil
}

// Displayed returns the place the UI and map should show, if any.
func (p PlaceSlice) Displayed() (model.PlaceInfo, bool) {
	switch p.Status {
	case StatusEditing:
		if len(p.Candidates) == 0 {
			return model.PlaceInfo{}, false
		}
		return p.Candidates[p.Cursor], true
	case StatusSaving:
		return p.Pending, true
	default:
		if p.HasCurrent {
			return p.Current, true
		}
		return model.PlaceInfo{}, false
	}
}
