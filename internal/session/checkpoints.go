package session

import (
	"hb2-cli/internal/model"
	"hb2-cli/internal/selection"
)

// Checkpoints is the state slice for the editable checkpoint list.
//
// Confirmed is the last-known-good persisted list and stays rendered
// while a candidate fetch is outstanding (graceful degradation).
// Candidates and Sel are live while editing; Pending is the optimistic
// post-save list shown while a save is outstanding.
type Checkpoints struct {
	Status  EditStatus
	waiting fetchWait

	Confirmed  []model.Checkpoint
	Candidates []model.Checkpoint
	Sel        selection.Selection
	Pending    []model.Checkpoint
	Err        string
}

func (c Checkpoints) seeded(confirmed []model.Checkpoint) Checkpoints {
	return Checkpoints{Status: StatusDisplay, Confirmed: confirmed}
}

func (c Checkpoints) failed(msg string) Checkpoints {
	return Checkpoints{Status: StatusError, Err: msg}
}

func (c Checkpoints) reloading() Checkpoints {
	// Keep the confirmed list around for display while reloading.
	return Checkpoints{Status: StatusLoading, waiting: waitSchedule, Confirmed: c.Confirmed}
}

func (c Checkpoints) clickedEdit() (Checkpoints, []Effect) {
	if c.Status != StatusDisplay {
		return c, nil
	}
	c.Status = StatusLoading
	c.waiting = waitCandidates
	return c, []Effect{FetchCheckpointCandidates{}}
}

func (c Checkpoints) candidatesLoaded(candidates []model.Checkpoint) (Checkpoints, []Effect) {
	if c.Status != StatusLoading || c.waiting != waitCandidates {
		// Stale fetch result; the slice has moved on.
		return c, nil
	}
	c.Status = StatusEditing
	c.waiting = waitNone
	c.Candidates = candidates
	c.Sel = selection.FromSaved(candidates)
	return c, []Effect{SyncMap{}}
}

func (c Checkpoints) loadFailed(msg string) (Checkpoints, []Effect) {
	if c.Status != StatusLoading || c.waiting != waitCandidates {
		return c, nil
	}
	return c.failed(msg), nil
}

func (c Checkpoints) toggle(id string) (Checkpoints, []Effect) {
	if c.Status != StatusEditing {
		return c, nil
	}
	c.Sel = selection.Toggle(id, c.Sel)
	return c, []Effect{SyncMap{}}
}

func (c Checkpoints) selectAll() (Checkpoints, []Effect) {
	if c.Status != StatusEditing {
		return c, nil
	}
	c.Sel = selection.SelectAll(c.Candidates)
	return c, []Effect{SyncMap{}}
}

func (c Checkpoints) clearAll() (Checkpoints, []Effect) {
	if c.Status != StatusEditing {
		return c, nil
	}
	c.Sel = selection.ClearAll()
	return c, []Effect{SyncMap{}}
}

func (c Checkpoints) clickedSave() (Checkpoints, []Effect) {
	if c.Status != StatusEditing {
		return c, nil
	}
	ids := selection.SelectedIDs(c.Candidates, c.Sel)
	// Optimistic: show what will exist if the save succeeds.
	c.Pending = selection.FilterSelected(c.Candidates, c.Sel)
	c.Status = StatusSaving
	return c, []Effect{PostSelection{IDs: ids}}
}

func (c Checkpoints) saved(confirmed []model.Checkpoint) (Checkpoints, []Effect) {
	if c.Status != StatusSaving {
		// Stale save result; dropped, not applied.
		return c, nil
	}
	return c.seeded(confirmed), []Effect{SyncMap{}}
}

func (c Checkpoints) saveFailed(msg string) (Checkpoints, []Effect) {
	if c.Status != StatusSaving {
		return c, nil
	}
	return c.failed(msg), nil
}

// Displayed returns the checkpoint list the UI and map should show for
// the current status.
func (c Checkpoints) Displayed() []model.Checkpoint {
	switch c.Status {
	case StatusEditing:
		return c.Candidates
	case StatusSaving:
		return c.Pending
	default:
		return c.Confirmed
	}
}
