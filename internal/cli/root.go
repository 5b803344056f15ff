package cli

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"hb2-cli/internal/store"
	"hb2-cli/internal/tui"

	"github.com/spf13/cobra"
)

// App carries the persistent flag values shared by all commands.
type App struct {
	ServerURL  string
	Token      string
	ReadOnly   bool
	MapPort    int
	PrettyJSON bool
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "hb2 [route-id]",
		Short:        "Home by Two route checkpoint editor (TUI + map)",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Open the checkpoint editor for a route
  hb2 2734

  # Scriptable commands
  hb2 schedule 2734
  hb2 checkpoints 2734 --pretty
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			routeID := ""
			if len(args) == 1 {
				routeID = strings.TrimSpace(args[0])
			}
			if routeID == "" {
				// Fall back to the most recently opened route.
				prefs, err := loadPrefs(cmd.Context())
				if err == nil && len(prefs.RecentRouteIDs) > 0 {
					routeID = prefs.RecentRouteIDs[0]
				}
			}
			if routeID == "" {
				return errors.New("no route id given and no recent route to reopen")
			}
			return runTUI(app, routeID)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("HB2_SERVER", "https://homebytwo.ch"), "Home by Two server base URL")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("HB2_TOKEN", ""), "Anti-forgery token for edits (passed through to the server)")
	cmd.PersistentFlags().BoolVar(&app.ReadOnly, "read-only", false, "Never offer edit affordances")
	cmd.PersistentFlags().IntVar(&app.MapPort, "map-port", 0, "Local port for the map bridge (0 = pick one)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newCheckpointsCmd(app))
	cmd.AddCommand(newRecentCmd(app))

	return cmd
}

func (a *App) canEdit() bool {
	return !a.ReadOnly && strings.TrimSpace(a.Token) != ""
}

func loadPrefs(ctx context.Context) (store.Prefs, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return store.Store{}.Load(ctx)
}

// effectiveMapPort resolves the bridge port: an explicit flag wins,
// otherwise the port remembered from the previous run, otherwise 0
// (ephemeral).
func effectiveMapPort(flag int, prefs store.Prefs) int {
	if flag != 0 {
		return flag
	}
	return prefs.MapPort
}

func runTUI(app *App, routeID string) error {
	// Best effort: prefs failures never block the session.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st := store.Store{}
	prefs, _ := st.Load(ctx)
	_ = st.TouchRoute(ctx, routeID)

	return tui.Run(tui.Config{
		ServerURL: app.ServerURL,
		RouteID:   routeID,
		Token:     app.Token,
		CanEdit:   app.canEdit(),
		MapPort:   effectiveMapPort(app.MapPort, prefs),
	})
}
