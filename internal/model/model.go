package model

// Coordinates is a WGS84 point as the Home by Two API serves it.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceKind discriminates the closed set of place variants.
type PlaceKind string

const (
	KindStart      PlaceKind = "start"
	KindFinish     PlaceKind = "finish"
	KindCheckpoint PlaceKind = "checkpoint"
)

// PlaceInfo is the shared field shape of every place along a route.
//
// PlaceID is a stable external identifier. For checkpoints the backend
// derives it from the place row and its normalized location on the route
// ("<id>_<line_location>"), so it is unique within one route but carries
// no global uniqueness promise; treat it as opaque.
type PlaceInfo struct {
	Name          string
	PlaceType     string
	Altitude      float64
	ScheduleLabel string
	Distance      float64
	ElevationGain float64
	ElevationLoss float64
	Coords        Coordinates
	PlaceID       string
}

// Place is a start or finish place. The kind is fixed at decode time.
type Place struct {
	Kind PlaceKind
	Info PlaceInfo
}

// Checkpoint is a candidate or confirmed waypoint along a route.
// Saved reflects the persisted choice at fetch time and is used to seed
// the initial selection when entering edit mode.
type Checkpoint struct {
	Info  PlaceInfo
	Saved bool
}

// RouteInfo is display metadata for the route being edited.
type RouteInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Activity    string `json:"activity,omitempty"`
}

// Schedule is the confirmed, persisted view of a route's waypoints.
// Checkpoints are ordered along the route's travel direction.
type Schedule struct {
	Route       RouteInfo
	Checkpoints []Checkpoint
	Start       Place
	Finish      Place
}

// CandidatePlaces is the result of decoding a place-candidate payload:
// all candidates in wire order, with SavedIndex pointing at the one the
// backend currently has persisted.
type CandidatePlaces struct {
	Candidates []PlaceInfo
	SavedIndex int
}

// Saved returns the currently persisted candidate.
func (c CandidatePlaces) Saved() PlaceInfo {
	return c.Candidates[c.SavedIndex]
}

// MarkerClass tells the map page how to render a marker.
type MarkerClass string

const (
	MarkerStart      MarkerClass = "start"
	MarkerFinish     MarkerClass = "finish"
	MarkerCheckpoint MarkerClass = "checkpoint"
	MarkerPossible   MarkerClass = "possible"
)

// PlaceMarker is the projection sent to the map widget. It is derived
// from session state on every sync and never stored as source of truth.
type PlaceMarker struct {
	ID            string      `json:"id"`
	PlaceClass    MarkerClass `json:"place_class"`
	Name          string      `json:"name"`
	PlaceType     string      `json:"place_type"`
	ScheduleLabel string      `json:"schedule"`
	Coords        Coordinates `json:"coords"`
	Selected      bool        `json:"selected"`
	Editable      bool        `json:"editable"`
}
