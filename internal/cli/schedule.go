package cli

import (
	"context"
	"os"
	"time"

	"hb2-cli/internal/api"
	"hb2-cli/internal/format"
	"hb2-cli/internal/model"

	"github.com/spf13/cobra"
)

// Wire-shaped output records for the scriptable commands. Internal
// names differ from the API's, so we re-serialize explicitly.
type placeOut struct {
	Name          string  `json:"name"`
	PlaceType     string  `json:"place_type"`
	PlaceID       string  `json:"place_id"`
	Altitude      float64 `json:"altitude"`
	Schedule      string  `json:"schedule"`
	Distance      float64 `json:"distance"`
	ElevationGain float64 `json:"elevation_gain"`
	ElevationLoss float64 `json:"elevation_loss"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Saved         bool    `json:"saved,omitempty"`
}

func placeOutOf(info model.PlaceInfo, saved bool) placeOut {
	return placeOut{
		Name:          info.Name,
		PlaceType:     info.PlaceType,
		PlaceID:       info.PlaceID,
		Altitude:      info.Altitude,
		Schedule:      info.ScheduleLabel,
		Distance:      info.Distance,
		ElevationGain: info.ElevationGain,
		ElevationLoss: info.ElevationLoss,
		Lat:           info.Coords.Lat,
		Lng:           info.Coords.Lng,
		Saved:         saved,
	}
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <route-id>",
		Short: "Print a route's schedule (start, checkpoints, finish) as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client := api.New(app.ServerURL, args[0], app.Token)
			schedule, err := client.FetchSchedule(ctx)
			if err != nil {
				return err
			}

			cps := make([]placeOut, 0, len(schedule.Checkpoints))
			for _, cp := range schedule.Checkpoints {
				cps = append(cps, placeOutOf(cp.Info, cp.Saved))
			}
			out := struct {
				Route       model.RouteInfo `json:"route"`
				Start       placeOut        `json:"start"`
				Checkpoints []placeOut      `json:"checkpoints"`
				Finish      placeOut        `json:"finish"`
			}{
				Route:       schedule.Route,
				Start:       placeOutOf(schedule.Start.Info, false),
				Checkpoints: cps,
				Finish:      placeOutOf(schedule.Finish.Info, false),
			}
			return format.WriteJSON(os.Stdout, out, app.PrettyJSON)
		},
	}
}

func newCheckpointsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoints <route-id>",
		Short: "Print a route's selectable checkpoints as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client := api.New(app.ServerURL, args[0], app.Token)
			cps, err := client.FetchCandidateCheckpoints(ctx)
			if err != nil {
				return err
			}

			out := make([]placeOut, 0, len(cps))
			for _, cp := range cps {
				out = append(out, placeOutOf(cp.Info, cp.Saved))
			}
			return format.WriteJSON(os.Stdout, out, app.PrettyJSON)
		},
	}
}

func newRecentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Print recently opened route ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := loadPrefs(cmd.Context())
			if err != nil {
				return err
			}
			ids := prefs.RecentRouteIDs
			if ids == nil {
				ids = []string{}
			}
			return format.WriteJSON(os.Stdout, ids, app.PrettyJSON)
		},
	}
}
