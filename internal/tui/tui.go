package tui

import (
	"context"
	"net"
	"strconv"
	"time"

	"hb2-cli/internal/api"
	"hb2-cli/internal/mapbridge"
	"hb2-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the map bridge and the editing TUI for one route and
// blocks until the user quits. Marker clicks from the map page are fed
// into the program's own message queue, so every mutation (keyboard or
// map) goes through the same single-threaded update loop.
func Run(cfg Config) error {
	applyColorProfilePreference()
	applyThemePreference()

	client := api.New(cfg.ServerURL, cfg.RouteID, cfg.Token)

	bridge := mapbridge.NewServer()
	mapURL := ""
	if addr, err := bridge.Start(cfg.MapPort); err == nil {
		mapURL = "http://" + addr + "/"
		// Remember the bound port so the next run reuses it and any
		// still-open map tab reconnects to the same address.
		rememberMapPort(store.Store{}, addr)
	}
	defer bridge.Close()

	m := newAppModel(cfg, client, bridge, mapURL)
	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.SetOnClick(func(c mapbridge.Click) {
		p.Send(placeClickedMsg{click: c})
	})

	_, err := p.Run()
	return err
}

// rememberMapPort persists the port part of a bound address. Best
// effort: prefs failures never affect the session.
func rememberMapPort(st store.Store, addr string) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = st.SaveMapPort(ctx, port)
}
