// Package selection implements the set algebra behind checkpoint
// editing. All functions are pure: they never mutate their inputs and
// depend on nothing but their arguments.
package selection

import "hb2-cli/internal/model"

// Selection is a set of checkpoint place ids. Membership is the only
// observable property; order is irrelevant.
type Selection map[string]struct{}

// New builds a selection from the given ids.
func New(ids ...string) Selection {
	sel := make(Selection, len(ids))
	for _, id := range ids {
		sel[id] = struct{}{}
	}
	return sel
}

// Toggle returns a copy of sel with id added if absent, removed if
// present. Toggle is its own inverse per id.
func Toggle(id string, sel Selection) Selection {
	next := make(Selection, len(sel)+1)
	for k := range sel {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return next
}

// SelectAll returns a selection containing every candidate id.
func SelectAll(candidates []model.Checkpoint) Selection {
	sel := make(Selection, len(candidates))
	for _, cp := range candidates {
		sel[cp.Info.PlaceID] = struct{}{}
	}
	return sel
}

// ClearAll returns the empty selection.
func ClearAll() Selection {
	return Selection{}
}

// IsSelected reports membership of id in sel.
func IsSelected(id string, sel Selection) bool {
	_, ok := sel[id]
	return ok
}

// FilterSelected returns the candidates whose ids are in sel,
// preserving candidate order.
func FilterSelected(candidates []model.Checkpoint, sel Selection) []model.Checkpoint {
	out := make([]model.Checkpoint, 0, len(sel))
	for _, cp := range candidates {
		if IsSelected(cp.Info.PlaceID, sel) {
			out = append(out, cp)
		}
	}
	return out
}

// SelectedIDs returns the ids of the selected candidates in candidate
// order. This is the order used for POST bodies.
func SelectedIDs(candidates []model.Checkpoint, sel Selection) []string {
	ids := make([]string, 0, len(sel))
	for _, cp := range candidates {
		if IsSelected(cp.Info.PlaceID, sel) {
			ids = append(ids, cp.Info.PlaceID)
		}
	}
	return ids
}

// FromSaved seeds a selection with the candidates flagged saved,
// i.e. the currently persisted choice at fetch time.
func FromSaved(candidates []model.Checkpoint) Selection {
	sel := Selection{}
	for _, cp := range candidates {
		if cp.Saved {
			sel[cp.Info.PlaceID] = struct{}{}
		}
	}
	return sel
}
