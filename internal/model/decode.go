package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError reports a malformed or missing field in a server payload.
// Decoding is atomic: a payload either decodes fully or not at all.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

// ExactlyOneSavedError is returned when a place-candidate payload does
// not contain exactly one element flagged saved. The editor cannot
// represent an ambiguous or absent current place, so this is a hard
// validation failure rather than something to paper over.
type ExactlyOneSavedError struct {
	Saved int
}

func (e *ExactlyOneSavedError) Error() string {
	return fmt.Sprintf("expected exactly one saved place, got %d", e.Saved)
}

type wireCoords struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type wirePlace struct {
	Name          *string     `json:"name"`
	PlaceType     *string     `json:"place_type"`
	Altitude      *float64    `json:"altitude"`
	Schedule      *string     `json:"schedule"`
	Distance      *float64    `json:"distance"`
	ElevationGain *float64    `json:"elevation_gain"`
	ElevationLoss *float64    `json:"elevation_loss"`
	Coords        *wireCoords `json:"coords"`
	PlaceID       *string     `json:"place_id"`
	Saved         *bool       `json:"saved"`
}

// prefixDecodeErr qualifies a field error with its location in the
// enclosing payload ("start.altitude", "checkpoints[2].coords").
func prefixDecodeErr(prefix string, err error) error {
	var derr *DecodeError
	if errors.As(err, &derr) {
		return &DecodeError{Field: prefix + "." + derr.Field, Reason: derr.Reason}
	}
	return err
}

func decodeErrFrom(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return &DecodeError{Field: field, Reason: "expected " + typeErr.Type.String() + ", got " + typeErr.Value}
	}
	return &DecodeError{Field: "payload", Reason: err.Error()}
}

func (w wirePlace) toInfo() (PlaceInfo, error) {
	switch {
	case w.Name == nil:
		return PlaceInfo{}, &DecodeError{Field: "name", Reason: "missing"}
	case w.PlaceType == nil:
		return PlaceInfo{}, &DecodeError{Field: "place_type", Reason: "missing"}
	case w.Altitude == nil:
		return PlaceInfo{}, &DecodeError{Field: "altitude", Reason: "missing"}
	case w.Schedule == nil:
		return PlaceInfo{}, &DecodeError{Field: "schedule", Reason: "missing"}
	case w.Distance == nil:
		return PlaceInfo{}, &DecodeError{Field: "distance", Reason: "missing"}
	case w.ElevationGain == nil:
		return PlaceInfo{}, &DecodeError{Field: "elevation_gain", Reason: "missing"}
	case w.ElevationLoss == nil:
		return PlaceInfo{}, &DecodeError{Field: "elevation_loss", Reason: "missing"}
	case w.Coords == nil:
		return PlaceInfo{}, &DecodeError{Field: "coords", Reason: "missing"}
	case w.Coords.Lat == nil:
		return PlaceInfo{}, &DecodeError{Field: "coords.lat", Reason: "missing"}
	case w.Coords.Lng == nil:
		return PlaceInfo{}, &DecodeError{Field: "coords.lng", Reason: "missing"}
	case w.PlaceID == nil:
		return PlaceInfo{}, &DecodeError{Field: "place_id", Reason: "missing"}
	}
	return PlaceInfo{
		Name:          *w.Name,
		PlaceType:     *w.PlaceType,
		Altitude:      *w.Altitude,
		ScheduleLabel: *w.Schedule,
		Distance:      *w.Distance,
		ElevationGain: *w.ElevationGain,
		ElevationLoss: *w.ElevationLoss,
		Coords:        Coordinates{Lat: *w.Coords.Lat, Lng: *w.Coords.Lng},
		PlaceID:       *w.PlaceID,
	}, nil
}

// DecodePlaceInfo decodes a single place object, failing with a
// DecodeError naming the offending field.
func DecodePlaceInfo(data []byte) (PlaceInfo, error) {
	var w wirePlace
	if err := json.Unmarshal(data, &w); err != nil {
		return PlaceInfo{}, decodeErrFrom(err)
	}
	return w.toInfo()
}

func decodeCheckpointEntries(raw []json.RawMessage) ([]Checkpoint, error) {
	cps := make([]Checkpoint, 0, len(raw))
	for i, entry := range raw {
		var w wirePlace
		if err := json.Unmarshal(entry, &w); err != nil {
			return nil, decodeErrFrom(err)
		}
		info, err := w.toInfo()
		if err != nil {
			return nil, prefixDecodeErr(fmt.Sprintf("checkpoints[%d]", i), err)
		}
		saved := w.Saved != nil && *w.Saved
		cps = append(cps, Checkpoint{Info: info, Saved: saved})
	}
	return cps, nil
}

// DecodeCheckpoints decodes a `{"checkpoints": [...]}` payload,
// preserving wire order. The server owns display order.
func DecodeCheckpoints(data []byte) ([]Checkpoint, error) {
	var envelope struct {
		Checkpoints []json.RawMessage `json:"checkpoints"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, decodeErrFrom(err)
	}
	if envelope.Checkpoints == nil {
		return nil, &DecodeError{Field: "checkpoints", Reason: "missing"}
	}
	return decodeCheckpointEntries(envelope.Checkpoints)
}

// DecodeCandidatePlaces decodes a `{"places": [...]}` payload where each
// entry carries a saved flag. It succeeds iff exactly one entry is
// flagged saved, returning all candidates in wire order.
func DecodeCandidatePlaces(data []byte) (CandidatePlaces, error) {
	var envelope struct {
		Places []json.RawMessage `json:"places"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return CandidatePlaces{}, decodeErrFrom(err)
	}
	if envelope.Places == nil {
		return CandidatePlaces{}, &DecodeError{Field: "places", Reason: "missing"}
	}

	candidates := make([]PlaceInfo, 0, len(envelope.Places))
	savedIdx := -1
	savedCount := 0
	for i, entry := range envelope.Places {
		var w wirePlace
		if err := json.Unmarshal(entry, &w); err != nil {
			return CandidatePlaces{}, decodeErrFrom(err)
		}
		info, err := w.toInfo()
		if err != nil {
			return CandidatePlaces{}, prefixDecodeErr(fmt.Sprintf("places[%d]", i), err)
		}
		if w.Saved != nil && *w.Saved {
			savedIdx = i
			savedCount++
		}
		candidates = append(candidates, info)
	}
	if savedCount != 1 {
		return CandidatePlaces{}, &ExactlyOneSavedError{Saved: savedCount}
	}
	return CandidatePlaces{Candidates: candidates, SavedIndex: savedIdx}, nil
}

// DecodeSchedule decodes the full schedule payload: route metadata, the
// persisted checkpoint list, and the current start and finish places.
func DecodeSchedule(data []byte) (Schedule, error) {
	var envelope struct {
		Route *struct {
			Name        *string `json:"name"`
			Description string  `json:"description"`
			Activity    string  `json:"activity"`
		} `json:"route"`
		Checkpoints []json.RawMessage `json:"checkpoints"`
		Start       json.RawMessage   `json:"start"`
		Finish      json.RawMessage   `json:"finish"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Schedule{}, decodeErrFrom(err)
	}
	if envelope.Route == nil {
		return Schedule{}, &DecodeError{Field: "route", Reason: "missing"}
	}
	if envelope.Route.Name == nil {
		return Schedule{}, &DecodeError{Field: "route.name", Reason: "missing"}
	}
	if envelope.Checkpoints == nil {
		return Schedule{}, &DecodeError{Field: "checkpoints", Reason: "missing"}
	}
	if len(envelope.Start) == 0 {
		return Schedule{}, &DecodeError{Field: "start", Reason: "missing"}
	}
	if len(envelope.Finish) == 0 {
		return Schedule{}, &DecodeError{Field: "finish", Reason: "missing"}
	}

	cps, err := decodeCheckpointEntries(envelope.Checkpoints)
	if err != nil {
		return Schedule{}, err
	}
	start, err := DecodePlaceInfo(envelope.Start)
	if err != nil {
		return Schedule{}, prefixDecodeErr("start", err)
	}
	finish, err := DecodePlaceInfo(envelope.Finish)
	if err != nil {
		return Schedule{}, prefixDecodeErr("finish", err)
	}

	return Schedule{
		Route: RouteInfo{
			Name:        *envelope.Route.Name,
			Description: envelope.Route.Description,
			Activity:    envelope.Route.Activity,
		},
		Checkpoints: cps,
		Start:       Place{Kind: KindStart, Info: start},
		Finish:      Place{Kind: KindFinish, Info: finish},
	}, nil
}

// EncodeSelection serializes an ordered list of checkpoint ids as the
// POST body the backend expects.
func EncodeSelection(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(struct {
		Checkpoints []string `json:"checkpoints"`
	}{Checkpoints: ids})
}

// EncodePlaceChoice serializes a start/finish place choice.
func EncodePlaceChoice(placeID string) ([]byte, error) {
	return json.Marshal(struct {
		PlaceID string `json:"place_id"`
	}{PlaceID: placeID})
}
