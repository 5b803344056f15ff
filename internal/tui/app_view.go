package tui

import (
	"fmt"
	"strings"

	"hb2-cli/internal/model"
	"hb2-cli/internal/session"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewPlacePanel("Start", m.sess.Start, focusStart))
	b.WriteString("\n")
	b.WriteString(m.viewCheckpointsPanel())
	b.WriteString("\n")
	b.WriteString(m.viewPlacePanel("Finish", m.sess.Finish, focusFinish))
	b.WriteString("\n")

	if m.showDescription && m.sess.Route.Description != "" {
		b.WriteString(renderMarkdown(m.sess.Route.Description, m.contentWidth()))
		b.WriteString("\n")
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m appModel) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m appModel) viewHeader() string {
	name := m.sess.Route.Name
	if name == "" {
		name = "Route " + m.cfg.RouteID
	}
	head := styleHeader.Render(name)
	if m.sess.Route.Activity != "" {
		head += styleMuted.Render(" · " + m.sess.Route.Activity)
	}
	if !m.cfg.CanEdit {
		head += styleMuted.Render(" · read-only")
	}
	return head
}

func (m appModel) panelStyle(f entityFocus) lipgloss.Style {
	st := stylePanel
	if m.focus == f {
		st = stylePanelFocus
	}
	return st.Width(m.contentWidth())
}

func (m appModel) viewCheckpointsPanel() string {
	cp := m.sess.Checkpoints
	title := styleHeader.Render("Checkpoints")

	var body string
	switch cp.Status {
	case session.StatusLoading:
		body = m.spin.View() + " Loading checkpoints…"
		if len(cp.Confirmed) > 0 {
			body += "\n" + faintIfDark(styleMuted).Render(checkpointLines(cp.Confirmed))
		}

	case session.StatusDisplay:
		if len(cp.Confirmed) == 0 {
			body = styleMuted.Render("No checkpoints on this route yet.")
		} else {
			body = checkpointLines(cp.Confirmed)
		}

	case session.StatusEditing:
		selected := 0
		for _, c := range cp.Candidates {
			if _, ok := cp.Sel[c.Info.PlaceID]; ok {
				selected++
			}
		}
		body = m.cpList.View() + "\n" +
			styleMuted.Render(fmt.Sprintf("%d/%d selected", selected, len(cp.Candidates)))

	case session.StatusSaving:
		body = m.spin.View() + " Saving…\n" + checkpointLines(cp.Pending)

	case session.StatusError:
		body = styleError.Render(cp.Err) + "\n" + styleMuted.Render("r to retry")
	}

	return m.panelStyle(focusCheckpoints).Render(title + "\n" + body)
}

func (m appModel) viewPlacePanel(title string, p session.PlaceSlice, f entityFocus) string {
	head := styleHeader.Render(title)

	var body string
	switch p.Status {
	case session.StatusLoading:
		body = m.spin.View() + " Loading…"
		if p.HasCurrent {
			body += "\n" + faintIfDark(styleMuted).Render(placeLine(p.Current))
		}

	case session.StatusDisplay:
		body = styleSaved.Render(placeLine(p.Current))

	case session.StatusEditing:
		l := m.startList
		if f == focusFinish {
			l = m.finishList
		}
		body = l.View()

	case session.StatusSaving:
		body = m.spin.View() + " Saving…\n" + placeLine(p.Pending)

	case session.StatusError:
		body = styleError.Render(p.Err) + "\n" + styleMuted.Render("r to retry")
	}

	return m.panelStyle(f).Render(head + "\n" + body)
}

func checkpointLines(cps []model.Checkpoint) string {
	lines := make([]string, 0, len(cps))
	for _, cp := range cps {
		lines = append(lines, placeLine(cp.Info))
	}
	return strings.Join(lines, "\n")
}

func placeLine(info model.PlaceInfo) string {
	return fmt.Sprintf("%s — %s · %s · %.0f m", info.Name, info.PlaceType, info.ScheduleLabel, info.Altitude)
}

func (m appModel) viewFooter() string {
	help := "tab focus · e edit · space toggle · a all · n none · s save · r retry · d description · m map · q quit"
	if !m.cfg.CanEdit {
		help = "tab focus · r retry · d description · m map · q quit"
	}
	footer := faintIfDark(styleMuted).Render(help)
	if m.minibufferText != "" {
		footer += "\n" + styleAccent.Render(m.minibufferText)
	}
	return footer
}
