package tui

import (
	"context"
	"os"
	"strings"
	"testing"

	"hb2-cli/internal/api"
	"hb2-cli/internal/mapbridge"
	"hb2-cli/internal/model"
	"hb2-cli/internal/session"
	"hb2-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestMain(m *testing.M) {
	// Plain output keeps the view assertions independent of the
	// terminal running the tests.
	lipgloss.SetColorProfile(termenv.Ascii)
	lipgloss.SetHasDarkBackground(true)
	os.Exit(m.Run())
}

func testInfo(id, name string) model.PlaceInfo {
	return model.PlaceInfo{
		Name:          name,
		PlaceType:     "Summit",
		Altitude:      1200,
		ScheduleLabel: "1:30",
		Coords:        model.Coordinates{Lat: 46.5, Lng: 6.5},
		PlaceID:       id,
	}
}

func testSchedule() model.Schedule {
	return model.Schedule{
		Route: model.RouteInfo{Name: "Jura Crest", Activity: "Run", Description: "A long day out."},
		Checkpoints: []model.Checkpoint{
			{Info: testInfo("cp1", "Col du Marchairuz"), Saved: true},
		},
		Start:  model.Place{Kind: model.KindStart, Info: testInfo("st1", "Nyon")},
		Finish: model.Place{Kind: model.KindFinish, Info: testInfo("fi1", "Vallorbe")},
	}
}

func newTestModel(t *testing.T, canEdit bool) appModel {
	t.Helper()
	cfg := Config{ServerURL: "http://localhost", RouteID: "7", Token: "tok", CanEdit: canEdit}
	client := api.New(cfg.ServerURL, cfg.RouteID, cfg.Token)
	bridge := mapbridge.NewServer()
	m := newAppModel(cfg, client, bridge, "http://127.0.0.1:0/")
	m.width, m.height = 100, 40
	m.resizeLists()
	return m
}

// loadedModel returns a model with the schedule applied, all panels Display.
func loadedModel(t *testing.T, canEdit bool) appModel {
	t.Helper()
	m := newTestModel(t, canEdit)
	next, _ := m.Update(scheduleMsg{schedule: testSchedule()})
	return next.(appModel)
}

func key(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestScheduleLoadPopulatesView(t *testing.T) {
	m := loadedModel(t, true)
	out := m.View()
	for _, want := range []string{"Jura Crest", "Nyon", "Vallorbe", "Col du Marchairuz"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestScheduleLoadFailureShowsRetryHint(t *testing.T) {
	m := newTestModel(t, true)
	next, _ := m.Update(scheduleMsg{err: errFake("boom")})
	out := next.(appModel).View()
	if !strings.Contains(out, "boom") {
		t.Fatalf("view missing error:\n%s", out)
	}
	if !strings.Contains(out, "r to retry") {
		t.Fatalf("view missing retry hint:\n%s", out)
	}
}

func TestEditKeyStartsCheckpointEditing(t *testing.T) {
	m := loadedModel(t, true)
	next, cmd := m.Update(key("e"))
	got := next.(appModel)
	if got.sess.Checkpoints.Status != session.StatusLoading {
		t.Fatalf("status = %v", got.sess.Checkpoints.Status)
	}
	if cmd == nil {
		t.Fatal("expected a candidate fetch command")
	}
}

func TestEditKeyIgnoredWhenReadOnly(t *testing.T) {
	m := loadedModel(t, false)
	next, cmd := m.Update(key("e"))
	got := next.(appModel)
	if got.sess.Checkpoints.Status != session.StatusDisplay {
		t.Fatalf("status = %v", got.sess.Checkpoints.Status)
	}
	if cmd != nil {
		t.Fatal("read-only edit must not issue commands")
	}
}

func TestCandidateResultEntersEditingWithSeededList(t *testing.T) {
	m := loadedModel(t, true)
	next, _ := m.Update(key("e"))
	m = next.(appModel)

	cps := []model.Checkpoint{
		{Info: testInfo("cp1", "Col du Marchairuz"), Saved: true},
		{Info: testInfo("cp2", "Mont Tendre")},
	}
	next, _ = m.Update(checkpointCandidatesMsg{checkpoints: cps})
	m = next.(appModel)

	if m.sess.Checkpoints.Status != session.StatusEditing {
		t.Fatalf("status = %v", m.sess.Checkpoints.Status)
	}
	if len(m.cpList.Items()) != 2 {
		t.Fatalf("list has %d items", len(m.cpList.Items()))
	}
	out := m.View()
	if !strings.Contains(out, "1/2 selected") {
		t.Fatalf("view missing selection count:\n%s", out)
	}
}

func TestSpaceTogglesCheckpointUnderCursor(t *testing.T) {
	m := loadedModel(t, true)
	next, _ := m.Update(key("e"))
	m = next.(appModel)
	next, _ = m.Update(checkpointCandidatesMsg{checkpoints: []model.Checkpoint{
		{Info: testInfo("cp1", "Col du Marchairuz"), Saved: true},
	}})
	m = next.(appModel)

	next, _ = m.Update(key(" "))
	m = next.(appModel)
	if _, still := m.sess.Checkpoints.Sel["cp1"]; still {
		t.Fatal("toggle should have deselected cp1")
	}

	next, _ = m.Update(key(" "))
	m = next.(appModel)
	if _, back := m.sess.Checkpoints.Sel["cp1"]; !back {
		t.Fatal("second toggle should reselect cp1")
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := loadedModel(t, true)
	order := []entityFocus{focusStart, focusFinish, focusCheckpoints}
	for _, want := range order {
		next, _ := m.Update(key("tab"))
		m = next.(appModel)
		if m.focus != want {
			t.Fatalf("focus = %v, want %v", m.focus, want)
		}
	}
}

func TestDescriptionToggle(t *testing.T) {
	m := loadedModel(t, true)
	if strings.Contains(m.View(), "long day out") {
		t.Fatal("description visible before toggle")
	}
	next, _ := m.Update(key("d"))
	m = next.(appModel)
	if !m.showDescription {
		t.Fatal("d should show the description")
	}
	next, _ = m.Update(key("d"))
	m = next.(appModel)
	if m.showDescription {
		t.Fatal("d again should hide the description")
	}
}

func TestMapKeyShowsBridgeURL(t *testing.T) {
	m := loadedModel(t, true)
	next, _ := m.Update(key("m"))
	out := next.(appModel).View()
	if !strings.Contains(out, "http://127.0.0.1:0/") {
		t.Fatalf("view missing map URL:\n%s", out)
	}
}

func TestMarkerClickTogglesDuringEditing(t *testing.T) {
	m := loadedModel(t, true)
	next, _ := m.Update(key("e"))
	m = next.(appModel)
	next, _ = m.Update(checkpointCandidatesMsg{checkpoints: []model.Checkpoint{
		{Info: testInfo("cp1", "Col du Marchairuz"), Saved: true},
	}})
	m = next.(appModel)

	next, _ = m.Update(placeClickedMsg{click: mapbridge.Click{
		PlaceID:    "cp1",
		PlaceClass: string(model.MarkerCheckpoint),
	}})
	m = next.(appModel)
	if _, still := m.sess.Checkpoints.Sel["cp1"]; still {
		t.Fatal("marker click should have deselected cp1")
	}
}

func TestReadOnlyFooterHidesEditKeys(t *testing.T) {
	out := loadedModel(t, false).View()
	if !strings.Contains(out, "read-only") {
		t.Fatalf("header missing read-only badge:\n%s", out)
	}
	if strings.Contains(out, "s save") {
		t.Fatalf("read-only footer must not offer save:\n%s", out)
	}
}

func TestRememberMapPortPersistsBoundPort(t *testing.T) {
	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}

	rememberMapPort(st, "127.0.0.1:8123")
	p, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MapPort != 8123 {
		t.Fatalf("map port = %d, want 8123", p.MapPort)
	}

	// Unparseable or zero-port addresses never overwrite the pref.
	rememberMapPort(st, "not-an-addr")
	rememberMapPort(st, "127.0.0.1:0")
	p, err = st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MapPort != 8123 {
		t.Fatalf("map port = %d, want 8123", p.MapPort)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }
