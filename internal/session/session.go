// Package session holds the checkpoint-editing state machine: three
// independent state slices (checkpoint list, start place, finish place)
// composed into one editing session. Reducers are pure; they return the
// next state plus a list of effects for the caller to execute, and all
// asynchronous outcomes re-enter as ordinary events. A result is only
// honored if its owning slice is still in the state that issued the
// command, so late results for superseded requests are dropped silently.
package session

import "hb2-cli/internal/model"

// EditStatus is the lifecycle state of one entity slice.
type EditStatus int

const (
	StatusLoading EditStatus = iota
	StatusDisplay
	StatusEditing
	StatusSaving
	StatusError
)

// fetchWait tags what an outstanding Loading state is waiting for.
// Loading is entered both by an edit click (candidates fetch) and by a
// retry (schedule fetch); a result is only honored when it answers the
// fetch the slice is actually waiting on, so a candidates response
// issued before a retry cannot resurrect the abandoned edit.
type fetchWait int

const (
	waitNone fetchWait = iota
	waitSchedule
	waitCandidates
)

func (s EditStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusDisplay:
		return "display"
	case StatusEditing:
		return "editing"
	case StatusSaving:
		return "saving"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event is a domain event fed to the session reducer. Events originate
// from the UI, from completed commands, and from the map widget, all on
// one queue.
type Event interface{ isEvent() }

type (
	// ClickedEditCheckpoints starts a checkpoint editing flow.
	ClickedEditCheckpoints struct{}
	// CheckpointCandidatesLoaded carries the fetched candidate list.
	CheckpointCandidatesLoaded struct{ Checkpoints []model.Checkpoint }
	// CheckpointCandidatesFailed reports a failed candidate fetch.
	CheckpointCandidatesFailed struct{ Err string }
	// ToggleCheckpoint flips one id in the working selection.
	ToggleCheckpoint struct{ ID string }
	// SelectAllCheckpoints selects every candidate.
	SelectAllCheckpoints struct{}
	// ClearAllCheckpoints empties the selection.
	ClearAllCheckpoints struct{}
	// ClickedSaveCheckpoints posts the current selection.
	ClickedSaveCheckpoints struct{}
	// SelectionSaved carries the authoritative persisted list from the
	// server. The client selection was a proposal; this is the answer.
	SelectionSaved struct{ Checkpoints []model.Checkpoint }
	// SelectionSaveFailed reports a failed selection post.
	SelectionSaveFailed struct{ Err string }

	// ClickedEditPlace starts a start/finish editing flow.
	ClickedEditPlace struct{ Kind model.PlaceKind }
	// PlaceCandidatesLoaded carries the fetched place candidates.
	PlaceCandidatesLoaded struct {
		Kind   model.PlaceKind
		Places model.CandidatePlaces
	}
	// PlaceCandidatesFailed reports a failed place-candidate fetch.
	PlaceCandidatesFailed struct {
		Kind model.PlaceKind
		Err  string
	}
	// PickedIndex moves the candidate cursor. Out-of-range indexes are
	// ignored, never a panic.
	PickedIndex struct {
		Kind  model.PlaceKind
		Index int
	}
	// ClickedSavePlace posts the place under the cursor.
	ClickedSavePlace struct{ Kind model.PlaceKind }
	// PlaceSaved carries the persisted place from the server.
	PlaceSaved struct {
		Kind  model.PlaceKind
		Place model.PlaceInfo
	}
	// PlaceSaveFailed reports a failed place post.
	PlaceSaveFailed struct {
		Kind model.PlaceKind
		Err  string
	}

	// MarkerClicked is a click on a map marker, identified by place id
	// and marker class. Clicks on non-editable markers are no-ops.
	MarkerClicked struct {
		ID    string
		Class model.MarkerClass
	}

	// ScheduleLoaded seeds all three slices from a schedule fetch.
	ScheduleLoaded struct{ Schedule model.Schedule }
	// ScheduleLoadFailed fails all three slices; the schedule is one
	// request, so there is nothing partial to keep.
	ScheduleLoadFailed struct{ Err string }
	// ClickedRetry resets the whole session and refetches the schedule.
	ClickedRetry struct{}
)

func (ClickedEditCheckpoints) isEvent()     {}
func (CheckpointCandidatesLoaded) isEvent() {}
func (CheckpointCandidatesFailed) isEvent() {}
func (ToggleCheckpoint) isEvent()           {}
func (SelectAllCheckpoints) isEvent()       {}
func (ClearAllCheckpoints) isEvent()        {}
func (ClickedSaveCheckpoints) isEvent()     {}
func (SelectionSaved) isEvent()             {}
func (SelectionSaveFailed) isEvent()        {}
func (ClickedEditPlace) isEvent()           {}
func (PlaceCandidatesLoaded) isEvent()      {}
func (PlaceCandidatesFailed) isEvent()      {}
func (PickedIndex) isEvent()                {}
func (ClickedSavePlace) isEvent()           {}
func (PlaceSaved) isEvent()                 {}
func (PlaceSaveFailed) isEvent()            {}
func (MarkerClicked) isEvent()              {}
func (ScheduleLoaded) isEvent()             {}
func (ScheduleLoadFailed) isEvent()         {}
func (ClickedRetry) isEvent()               {}

// Effect is a side effect requested by a reducer. Reducers never
// execute effects; the caller (the TUI event loop) does.
type Effect interface{ isEffect() }

type (
	// FetchSchedule loads the whole schedule for all three slices.
	FetchSchedule struct{}
	// FetchCheckpointCandidates loads the editable checkpoint list.
	FetchCheckpointCandidates struct{}
	// PostSelection saves the selected checkpoint ids, candidate order.
	PostSelection struct{ IDs []string }
	// FetchPlaceCandidates loads start/finish candidates.
	FetchPlaceCandidates struct{ Kind model.PlaceKind }
	// PostPlace saves a start/finish place choice.
	PostPlace struct {
		Kind    model.PlaceKind
		PlaceID string
	}
	// SyncMap republishes the full marker projection to the map widget.
	// Every mutating transition emits this rather than patching markers
	// incrementally, so the map always reflects the latest state.
	SyncMap struct{}
)

func (FetchSchedule) isEffect()             {}
func (FetchCheckpointCandidates) isEffect() {}
func (PostSelection) isEffect()             {}
func (FetchPlaceCandidates) isEffect()      {}
func (PostPlace) isEffect()                 {}
func (SyncMap) isEffect()                   {}

// Session is the combined editing session. It is a value: Apply returns
// the next session rather than mutating in place.
type Session struct {
	// CanEdit gates every edit affordance. When false the session never
	// leaves display-class states.
	CanEdit bool

	Route       model.RouteInfo
	Checkpoints Checkpoints
	Start       PlaceSlice
	Finish      PlaceSlice
}

// New returns a session with all slices loading. The caller is expected
// to run a FetchSchedule command immediately (see Init).
func New(canEdit bool) Session {
	return Session{
		CanEdit:     canEdit,
		Checkpoints: Checkpoints{Status: StatusLoading, waiting: waitSchedule},
		Start:       PlaceSlice{Kind: model.KindStart, Status: StatusLoading, waiting: waitSchedule},
		Finish:      PlaceSlice{Kind: model.KindFinish, Status: StatusLoading, waiting: waitSchedule},
	}
}

// awaitingSchedule reports whether the session has an outstanding
// schedule fetch. Schedule fetches are only issued from Init and from
// retry, both of which put all three slices into the same wait, so the
// slices never disagree here.
func (s Session) awaitingSchedule() bool {
	return s.Checkpoints.Status == StatusLoading && s.Checkpoints.waiting == waitSchedule &&
		s.Start.Status == StatusLoading && s.Start.waiting == waitSchedule &&
		s.Finish.Status == StatusLoading && s.Finish.waiting == waitSchedule
}

// Init returns the session's initial effects.
func (s Session) Init() []Effect {
	return []Effect{FetchSchedule{}}
}

func (s *Session) place(kind model.PlaceKind) *PlaceSlice {
	if kind == model.KindFinish {
		return &s.Finish
	}
	return &s.Start
}

// Apply routes one event to the slice(s) its type addresses and returns
// the next session plus the effects to run.
func (s Session) Apply(ev Event) (Session, []Effect) {
	switch ev := ev.(type) {
	case ScheduleLoaded:
		if !s.awaitingSchedule() {
			// Stale schedule result; the session has moved on.
			return s, nil
		}
		s.Route = ev.Schedule.Route
		s.Checkpoints = s.Checkpoints.seeded(ev.Schedule.Checkpoints)
		s.Start = s.Start.seeded(ev.Schedule.Start.Info)
		s.Finish = s.Finish.seeded(ev.Schedule.Finish.Info)
		return s, []Effect{SyncMap{}}

	case ScheduleLoadFailed:
		if !s.awaitingSchedule() {
			return s, nil
		}
		s.Checkpoints = s.Checkpoints.failed(ev.Err)
		s.Start = s.Start.failed(ev.Err)
		s.Finish = s.Finish.failed(ev.Err)
		return s, nil

	case ClickedRetry:
		// Conservative full reset: one failure anywhere restarts the
		// session from a single authoritative fetch. In-flight results
		// for the abandoned requests fail the state guards and drop.
		s.Checkpoints = s.Checkpoints.reloading()
		s.Start = s.Start.reloading()
		s.Finish = s.Finish.reloading()
		return s, []Effect{FetchSchedule{}}

	case ClickedEditCheckpoints:
		if !s.CanEdit {
			return s, nil
		}
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.clickedEdit()
		return s, fx

	case CheckpointCandidatesLoaded:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.candidatesLoaded(ev.Checkpoints)
		return s, fx

	case CheckpointCandidatesFailed:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.loadFailed(ev.Err)
		return s, fx

	case ToggleCheckpoint:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.toggle(ev.ID)
		return s, fx

	case SelectAllCheckpoints:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.selectAll()
		return s, fx

	case ClearAllCheckpoints:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.clearAll()
		return s, fx

	case ClickedSaveCheckpoints:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.clickedSave()
		return s, fx

	case SelectionSaved:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.saved(ev.Checkpoints)
		return s, fx

	case SelectionSaveFailed:
		var fx []Effect
		s.Checkpoints, fx = s.Checkpoints.saveFailed(ev.Err)
		return s, fx

	case ClickedEditPlace:
		if !s.CanEdit {
			return s, nil
		}
		sl := s.place(ev.Kind)
		next, fx := sl.clickedEdit()
		*sl = next
		return s, fx

	case PlaceCandidatesLoaded:
		sl := s.place(ev.Kind)
		next, fx := sl.candidatesLoaded(ev.Places)
		*sl = next
		return s, fx

	case PlaceCandidatesFailed:
		sl := s.place(ev.Kind)
		next, fx := sl.loadFailed(ev.Err)
		*sl = next
		return s, fx

	case PickedIndex:
		sl := s.place(ev.Kind)
		next, fx := sl.pickedIndex(ev.Index)
		*sl = next
		return s, fx

	case ClickedSavePlace:
		sl := s.place(ev.Kind)
		next, fx := sl.clickedSave()
		*sl = next
		return s, fx

	case PlaceSaved:
		sl := s.place(ev.Kind)
		next, fx := sl.saved(ev.Place)
		*sl = next
		return s, fx

	case PlaceSaveFailed:
		sl := s.place(ev.Kind)
		next, fx := sl.saveFailed(ev.Err)
		*sl = next
		return s, fx

	case MarkerClicked:
		return s.markerClicked(ev)
	}
	return s, nil
}

// markerClicked translates a map click into the matching domain event.
// Clicks on markers whose entity is not currently editing are no-ops.
func (s Session) markerClicked(ev MarkerClicked) (Session, []Effect) {
	switch ev.Class {
	case model.MarkerCheckpoint, model.MarkerPossible:
		if s.Checkpoints.Status != StatusEditing {
			return s, nil
		}
		return s.Apply(ToggleCheckpoint{ID: ev.ID})
	case model.MarkerStart, model.MarkerFinish:
		kind := model.KindStart
		if ev.Class == model.MarkerFinish {
			kind = model.KindFinish
		}
		sl := *s.place(kind)
		if sl.Status != StatusEditing {
			return s, nil
		}
		for i, cand := range sl.Candidates {
			if cand.PlaceID == ev.ID {
				return s.Apply(PickedIndex{Kind: kind, Index: i})
			}
		}
	}
	return s, nil
}
