package tui

import (
	"hb2-cli/internal/api"
	"hb2-cli/internal/mapbridge"
	"hb2-cli/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
)

// Config is the initialization contract for one editing session.
type Config struct {
	ServerURL string
	RouteID   string
	// Token is the anti-forgery token, opaque to the client.
	Token string
	// CanEdit gates every edit affordance.
	CanEdit bool
	// MapPort is the preferred map bridge port (0 = ephemeral).
	MapPort int
}

type entityFocus int

const (
	focusCheckpoints entityFocus = iota
	focusStart
	focusFinish
)

func (f entityFocus) String() string {
	switch f {
	case focusStart:
		return "start"
	case focusFinish:
		return "finish"
	}
	return "checkpoints"
}

type appModel struct {
	cfg    Config
	client *api.Client
	bridge *mapbridge.Server
	mapURL string

	sess  session.Session
	focus entityFocus

	width  int
	height int

	spin       spinner.Model
	cpList     list.Model
	startList  list.Model
	finishList list.Model

	showDescription bool
	minibufferText  string
}

func newAppModel(cfg Config, client *api.Client, bridge *mapbridge.Server, mapURL string) appModel {
	m := appModel{
		cfg:    cfg,
		client: client,
		bridge: bridge,
		mapURL: mapURL,
		sess:   session.New(cfg.CanEdit),
		focus:  focusCheckpoints,
	}

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = styleAccent

	m.cpList = newList("Checkpoints")
	m.startList = newList("Start")
	m.finishList = newList("Finish")

	return m
}

func (m *appModel) listFor(f entityFocus) *list.Model {
	switch f {
	case focusStart:
		return &m.startList
	case focusFinish:
		return &m.finishList
	}
	return &m.cpList
}

// refreshLists re-derives list rows from session state. Lists are
// rendering chrome only; the session is the source of truth.
func (m *appModel) refreshLists() {
	m.cpList.SetItems(checkpointRows(m.sess.Checkpoints.Candidates, m.sess.Checkpoints.Sel))
	m.startList.SetItems(placeRows(m.sess.Start.Candidates, m.sess.Start.Cursor))
	m.finishList.SetItems(placeRows(m.sess.Finish.Candidates, m.sess.Finish.Cursor))
}

func (m *appModel) resizeLists() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	h := (m.height - 14) / 2
	if h < 4 {
		h = 4
	}
	if h > 10 {
		h = 10
	}
	m.cpList.SetSize(w, h)
	m.startList.SetSize(w, h)
	m.finishList.SetSize(w, h)
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
}
