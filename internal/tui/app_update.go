package tui

import (
	"context"
	"time"

	"hb2-cli/internal/mapbridge"
	"hb2-cli/internal/model"
	"hb2-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Async command results. Each carries its error inline so every outcome
// of a command is a single message on the single event queue.
type (
	scheduleMsg struct {
		schedule model.Schedule
		err      error
	}
	checkpointCandidatesMsg struct {
		checkpoints []model.Checkpoint
		err         error
	}
	selectionSavedMsg struct {
		checkpoints []model.Checkpoint
		err         error
	}
	placeCandidatesMsg struct {
		kind   model.PlaceKind
		places model.CandidatePlaces
		err    error
	}
	placeSavedMsg struct {
		kind  model.PlaceKind
		place model.PlaceInfo
		err   error
	}
	// placeClickedMsg is a marker click relayed from the map bridge.
	placeClickedMsg struct {
		click mapbridge.Click
	}
)

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.runEffects(m.sess.Init()))
}

// applyEvent runs one domain event through the session reducer and
// executes the returned effects.
func (m appModel) applyEvent(ev session.Event) (appModel, tea.Cmd) {
	next, fx := m.sess.Apply(ev)
	m.sess = next
	m.refreshLists()
	return m, m.runEffects(fx)
}

// runEffects converts reducer effects into commands. Map syncs are
// executed inline: the bridge call is non-blocking fire-and-forget, so
// the event loop never waits on it.
func (m appModel) runEffects(fx []session.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range fx {
		switch f := f.(type) {
		case session.SyncMap:
			m.bridge.SyncMarkers(mapbridge.Project(m.sess))
		case session.FetchSchedule:
			cmds = append(cmds, m.fetchScheduleCmd())
		case session.FetchCheckpointCandidates:
			cmds = append(cmds, m.fetchCheckpointCandidatesCmd())
		case session.PostSelection:
			cmds = append(cmds, m.postSelectionCmd(f.IDs))
		case session.FetchPlaceCandidates:
			cmds = append(cmds, m.fetchPlaceCandidatesCmd(f.Kind))
		case session.PostPlace:
			cmds = append(cmds, m.postPlaceCmd(f.Kind, f.PlaceID))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

const requestTimeout = 30 * time.Second

func (m appModel) fetchScheduleCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		schedule, err := client.FetchSchedule(ctx)
		return scheduleMsg{schedule: schedule, err: err}
	}
}

func (m appModel) fetchCheckpointCandidatesCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cps, err := client.FetchCandidateCheckpoints(ctx)
		return checkpointCandidatesMsg{checkpoints: cps, err: err}
	}
}

func (m appModel) postSelectionCmd(ids []string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cps, err := client.PostSelection(ctx, ids)
		return selectionSavedMsg{checkpoints: cps, err: err}
	}
}

func (m appModel) fetchPlaceCandidatesCmd(kind model.PlaceKind) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		places, err := client.FetchCandidatePlaces(ctx, kind)
		return placeCandidatesMsg{kind: kind, places: places, err: err}
	}
}

func (m appModel) postPlaceCmd(kind model.PlaceKind, placeID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		place, err := client.PostPlace(ctx, kind, placeID)
		return placeSavedMsg{kind: kind, place: place, err: err}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case scheduleMsg:
		if msg.err != nil {
			return m.applyEvent(session.ScheduleLoadFailed{Err: msg.err.Error()})
		}
		return m.applyEvent(session.ScheduleLoaded{Schedule: msg.schedule})

	case checkpointCandidatesMsg:
		if msg.err != nil {
			return m.applyEvent(session.CheckpointCandidatesFailed{Err: msg.err.Error()})
		}
		return m.applyEvent(session.CheckpointCandidatesLoaded{Checkpoints: msg.checkpoints})

	case selectionSavedMsg:
		if msg.err != nil {
			return m.applyEvent(session.SelectionSaveFailed{Err: msg.err.Error()})
		}
		return m.applyEvent(session.SelectionSaved{Checkpoints: msg.checkpoints})

	case placeCandidatesMsg:
		if msg.err != nil {
			return m.applyEvent(session.PlaceCandidatesFailed{Kind: msg.kind, Err: msg.err.Error()})
		}
		return m.applyEvent(session.PlaceCandidatesLoaded{Kind: msg.kind, Places: msg.places})

	case placeSavedMsg:
		if msg.err != nil {
			return m.applyEvent(session.PlaceSaveFailed{Kind: msg.kind, Err: msg.err.Error()})
		}
		return m.applyEvent(session.PlaceSaved{Kind: msg.kind, Place: msg.place})

	case placeClickedMsg:
		return m.applyEvent(session.MarkerClicked{
			ID:    msg.click.PlaceID,
			Class: model.MarkerClass(msg.click.PlaceClass),
		})

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil

	case "r":
		return m.applyEvent(session.ClickedRetry{})

	case "d":
		m.showDescription = !m.showDescription
		return m, nil

	case "m":
		m.showMinibuffer("Map: " + m.mapURL)
		return m, nil

	case "e":
		switch m.focus {
		case focusCheckpoints:
			return m.applyEvent(session.ClickedEditCheckpoints{})
		case focusStart:
			return m.applyEvent(session.ClickedEditPlace{Kind: model.KindStart})
		case focusFinish:
			return m.applyEvent(session.ClickedEditPlace{Kind: model.KindFinish})
		}

	case "s":
		switch m.focus {
		case focusCheckpoints:
			return m.applyEvent(session.ClickedSaveCheckpoints{})
		case focusStart:
			return m.applyEvent(session.ClickedSavePlace{Kind: model.KindStart})
		case focusFinish:
			return m.applyEvent(session.ClickedSavePlace{Kind: model.KindFinish})
		}

	case " ":
		if m.focus == focusCheckpoints && m.sess.Checkpoints.Status == session.StatusEditing {
			if row, ok := m.cpList.SelectedItem().(checkpointRow); ok {
				return m.applyEvent(session.ToggleCheckpoint{ID: row.cp.Info.PlaceID})
			}
		}
		return m, nil

	case "a":
		if m.focus == focusCheckpoints {
			return m.applyEvent(session.SelectAllCheckpoints{})
		}
		return m, nil

	case "n":
		if m.focus == focusCheckpoints {
			return m.applyEvent(session.ClearAllCheckpoints{})
		}
		return m, nil

	case "enter":
		if m.focus == focusStart {
			return m.applyEvent(session.ClickedSavePlace{Kind: model.KindStart})
		}
		if m.focus == focusFinish {
			return m.applyEvent(session.ClickedSavePlace{Kind: model.KindFinish})
		}
		return m, nil
	}

	// Everything else drives the focused list (cursor movement).
	return m.updateFocusedList(msg)
}

// updateFocusedList forwards navigation keys to the focused list. For
// start/finish, moving the cursor IS the edit, so a changed index is
// translated into a PickedIndex event (which re-syncs the map).
func (m appModel) updateFocusedList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.listFor(m.focus)
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)

	switch m.focus {
	case focusStart:
		if m.sess.Start.Status == session.StatusEditing && l.Index() != m.sess.Start.Cursor {
			next, cmd2 := m.applyEvent(session.PickedIndex{Kind: model.KindStart, Index: l.Index()})
			return next, tea.Batch(cmd, cmd2)
		}
	case focusFinish:
		if m.sess.Finish.Status == session.StatusEditing && l.Index() != m.sess.Finish.Cursor {
			next, cmd2 := m.applyEvent(session.PickedIndex{Kind: model.KindFinish, Index: l.Index()})
			return next, tea.Batch(cmd, cmd2)
		}
	}
	return m, cmd
}
