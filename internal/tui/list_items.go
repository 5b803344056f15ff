package tui

import (
	"fmt"
	"io"
	"strings"

	"hb2-cli/internal/model"
	"hb2-cli/internal/selection"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// checkpointRow is a checkpoint candidate in the editing list. The
// checkmark reflects the session's live selection, injected at refresh.
type checkpointRow struct {
	cp       model.Checkpoint
	selected bool
}

func (r checkpointRow) Title() string {
	mark := "[ ]"
	if r.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s — %s · %s", mark, r.cp.Info.Name, r.cp.Info.PlaceType, r.cp.Info.ScheduleLabel)
}
func (r checkpointRow) Description() string { return "" }
func (r checkpointRow) FilterValue() string { return r.cp.Info.Name }

// placeRow is a start/finish candidate. The cursor position is the
// selection; the glyph marks the entry currently under it.
type placeRow struct {
	place   model.PlaceInfo
	current bool
}

func (r placeRow) Title() string {
	mark := "( )"
	if r.current {
		mark = "(*)"
	}
	return fmt.Sprintf("%s %s — %s · %s", mark, r.place.Name, r.place.PlaceType, r.place.ScheduleLabel)
}
func (r placeRow) Description() string { return "" }
func (r placeRow) FilterValue() string { return r.place.Name }

func newList(title string) list.Model {
	l := list.New([]list.Item{}, newCompactDelegate(), 0, 0)
	l.Title = title
	// Panels render their own chrome; keep the list minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// ESC is "cancel edit" here, not quit.
	l.KeyMap.Quit.SetKeys("ctrl+c")
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}

func checkpointRows(candidates []model.Checkpoint, sel selection.Selection) []list.Item {
	items := make([]list.Item, 0, len(candidates))
	for _, cp := range candidates {
		items = append(items, checkpointRow{cp: cp, selected: selection.IsSelected(cp.Info.PlaceID, sel)})
	}
	return items
}

func placeRows(candidates []model.PlaceInfo, cursor int) []list.Item {
	items := make([]list.Item, 0, len(candidates))
	for i, p := range candidates {
		items = append(items, placeRow{place: p, current: i == cursor})
	}
	return items
}

type compactDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCompactDelegate() compactDelegate {
	return compactDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d compactDelegate) Height() int                             { return 1 }
func (d compactDelegate) Spacing() int                            { return 0 }
func (d compactDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d compactDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	} else {
		txt = fmt.Sprint(item)
	}

	line := txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	fmt.Fprint(w, style.Render(line))
}
