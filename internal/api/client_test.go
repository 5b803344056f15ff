package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hb2-cli/internal/model"
)

const placeBody = `{
	"name": "Mont Tendre", "place_type": "Summit", "altitude": 1679.0,
	"schedule": "2:10", "distance": 18.2, "elevation_gain": 920.0,
	"elevation_loss": 310.0, "coords": {"lat": 46.59, "lng": 6.31},
	"place_id": "77_0.41", "saved": true
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "42", "secret-token")
}

func TestFetchScheduleRequestsRoutePath(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, `{
			"route": {"name": "R"},
			"checkpoints": [],
			"start": `+placeBody+`,
			"finish": `+placeBody+`
		}`)
	})

	schedule, err := c.FetchSchedule(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/routes/42/schedule.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if schedule.Start.Info.Name != "Mont Tendre" {
		t.Fatalf("start = %+v", schedule.Start.Info)
	}
}

func TestPostSelectionSendsBodyAndCSRFHeader(t *testing.T) {
	var gotBody []byte
	var gotToken, gotContentType string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotToken = r.Header.Get("X-CSRFToken")
		gotContentType = r.Header.Get("Content-Type")
		io.WriteString(w, `{"checkpoints": [`+placeBody+`]}`)
	})

	cps, err := c.PostSelection(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(gotBody) != `{"checkpoints":["a","b"]}` {
		t.Fatalf("body = %s", gotBody)
	}
	if gotToken != "secret-token" {
		t.Fatalf("token = %q", gotToken)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if len(cps) != 1 || cps[0].Info.PlaceID != "77_0.41" {
		t.Fatalf("checkpoints = %+v", cps)
	}
}

func TestGetDoesNotSendCSRFHeader(t *testing.T) {
	var gotToken string
	var hasHeader bool
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRFToken")
		_, hasHeader = r.Header["X-Csrftoken"]
		io.WriteString(w, `{"checkpoints": []}`)
	})

	if _, err := c.FetchCandidateCheckpoints(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasHeader || gotToken != "" {
		t.Fatalf("GET must not carry the token, got %q", gotToken)
	}
}

func TestStatusErrorCopyPerClass(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{400, "rejected"},
		{500, "server had a problem"},
		{502, "server had a problem"},
		{403, "unknown error"},
		{404, "unknown error"},
	}
	for _, tc := range cases {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
		})
		_, err := c.FetchSchedule(context.Background())
		var serr *StatusError
		if !errors.As(err, &serr) {
			t.Fatalf("code %d: expected StatusError, got %v", tc.code, err)
		}
		if serr.Code != tc.code {
			t.Fatalf("code = %d, want %d", serr.Code, tc.code)
		}
		if msg := serr.Error(); !strings.Contains(msg, tc.want) {
			t.Fatalf("code %d: message %q must contain %q", tc.code, msg, tc.want)
		}
	}
}

func TestFetchCandidatePlacesURLPerKind(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, `{"places": [`+placeBody+`]}`)
	})

	places, err := c.FetchCandidatePlaces(context.Background(), model.KindFinish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/routes/42/finish/edit.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if places.Saved().PlaceID != "77_0.41" {
		t.Fatalf("saved = %+v", places.Saved())
	}
}

func TestPostPlaceBody(t *testing.T) {
	var gotBody map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		io.WriteString(w, placeBody)
	})

	place, err := c.PostPlace(context.Background(), model.KindStart, "77_0.41")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["place_id"] != "77_0.41" {
		t.Fatalf("body = %v", gotBody)
	}
	if place.Name != "Mont Tendre" {
		t.Fatalf("place = %+v", place)
	}
}
