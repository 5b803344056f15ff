package mapbridge

import (
	"reflect"
	"testing"

	"hb2-cli/internal/model"
	"hb2-cli/internal/session"
)

func info(id, name string) model.PlaceInfo {
	return model.PlaceInfo{PlaceID: id, Name: name, PlaceType: "Summit", Coords: model.Coordinates{Lat: 46.5, Lng: 6.6}}
}

func cp(id string, saved bool) model.Checkpoint {
	return model.Checkpoint{Info: info(id, "Place "+id), Saved: saved}
}

func schedule() model.Schedule {
	return model.Schedule{
		Checkpoints: []model.Checkpoint{cp("a", true), cp("b", true)},
		Start:       model.Place{Kind: model.KindStart, Info: info("s1", "Col")},
		Finish:      model.Place{Kind: model.KindFinish, Info: info("f1", "Village")},
	}
}

func displaying(t *testing.T) session.Session {
	t.Helper()
	s := session.New(true)
	s, _ = s.Apply(session.ScheduleLoaded{Schedule: schedule()})
	return s
}

func TestProjectDisplayState(t *testing.T) {
	markers := Project(displaying(t))
	if len(markers) != 4 {
		t.Fatalf("len = %d", len(markers))
	}
	if markers[0].PlaceClass != model.MarkerStart || markers[0].ID != "s1" {
		t.Fatalf("first marker = %+v", markers[0])
	}
	if markers[3].PlaceClass != model.MarkerFinish || markers[3].ID != "f1" {
		t.Fatalf("last marker = %+v", markers[3])
	}
	for _, m := range markers {
		if m.Editable {
			t.Fatalf("display-state marker must not be editable: %+v", m)
		}
		if !m.Selected {
			t.Fatalf("persisted marker must render as chosen: %+v", m)
		}
	}
}

func TestProjectEditingCheckpoints(t *testing.T) {
	s := displaying(t)
	s, _ = s.Apply(session.ClickedEditCheckpoints{})
	s, _ = s.Apply(session.CheckpointCandidatesLoaded{Checkpoints: []model.Checkpoint{
		cp("a", true), cp("b", false),
	}})

	markers := Project(s)
	// start + 2 candidates + finish
	if len(markers) != 4 {
		t.Fatalf("len = %d", len(markers))
	}
	a, b := markers[1], markers[2]
	if a.ID != "a" || !a.Selected || a.PlaceClass != model.MarkerCheckpoint || !a.Editable {
		t.Fatalf("selected candidate = %+v", a)
	}
	if b.ID != "b" || b.Selected || b.PlaceClass != model.MarkerPossible || !b.Editable {
		t.Fatalf("unselected candidate = %+v", b)
	}
}

func TestProjectEditingStartCursor(t *testing.T) {
	s := displaying(t)
	s, _ = s.Apply(session.ClickedEditPlace{Kind: model.KindStart})
	s, _ = s.Apply(session.PlaceCandidatesLoaded{Kind: model.KindStart, Places: model.CandidatePlaces{
		Candidates: []model.PlaceInfo{info("x", "X"), info("y", "Y"), info("z", "Z")},
		SavedIndex: 1,
	}})

	markers := Project(s)
	var starts []model.PlaceMarker
	for _, m := range markers {
		if m.PlaceClass == model.MarkerStart {
			starts = append(starts, m)
		}
	}
	if len(starts) != 3 {
		t.Fatalf("start markers = %d", len(starts))
	}
	if starts[0].Selected || !starts[1].Selected || starts[2].Selected {
		t.Fatalf("cursor selection wrong: %v %v %v", starts[0].Selected, starts[1].Selected, starts[2].Selected)
	}

	// Repositioning the cursor flips selection accordingly.
	s, _ = s.Apply(session.PickedIndex{Kind: model.KindStart, Index: 0})
	markers = Project(s)
	if !markers[0].Selected || markers[1].Selected {
		t.Fatal("expected X selected, Y not, after repositioning")
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	s := displaying(t)
	s, _ = s.Apply(session.ClickedEditCheckpoints{})
	s, _ = s.Apply(session.CheckpointCandidatesLoaded{Checkpoints: []model.Checkpoint{cp("a", true)}})

	first := Project(s)
	second := Project(s)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("projection must be deterministic for the same state")
	}
}

func TestProjectSavingShowsPendingList(t *testing.T) {
	s := displaying(t)
	s, _ = s.Apply(session.ClickedEditCheckpoints{})
	s, _ = s.Apply(session.CheckpointCandidatesLoaded{Checkpoints: []model.Checkpoint{
		cp("a", true), cp("b", false),
	}})
	s, _ = s.Apply(session.ClickedSaveCheckpoints{})

	markers := Project(s)
	// Only the selected candidate survives into the optimistic view.
	var ids []string
	for _, m := range markers {
		if m.PlaceClass == model.MarkerCheckpoint {
			ids = append(ids, m.ID)
		}
	}
	if !reflect.DeepEqual(ids, []string{"a"}) {
		t.Fatalf("pending checkpoint ids = %v", ids)
	}
}
