// Package api implements the command/query layer against the Home by
// Two JSON API. Every call is a plain request/response; results feed
// the session as events and superseded results are dropped there, so
// the client carries no cancellation of its own beyond the context.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hb2-cli/internal/model"
)

// StatusError is a non-2xx response, with user-facing copy per class.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	switch {
	case e.Code == http.StatusBadRequest:
		return "the server rejected the request (400)"
	case e.Code >= 500:
		return fmt.Sprintf("the server had a problem (%d), try again later", e.Code)
	default:
		return fmt.Sprintf("unknown error talking to the server (%d)", e.Code)
	}
}

// Client talks to one route's endpoints. Token is the anti-forgery
// token supplied by the hosting page config, passed through unchanged.
type Client struct {
	BaseURL string
	RouteID string
	Token   string

	HTTP *http.Client
}

// New returns a client with a sane default timeout.
func New(baseURL, routeID, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		RouteID: routeID,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) url(parts ...string) string {
	return c.BaseURL + "/routes/" + c.RouteID + "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.Token != "" {
		req.Header.Set("X-CSRFToken", c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return data, nil
}

// FetchSchedule loads the persisted schedule for all three entities.
func (c *Client) FetchSchedule(ctx context.Context) (model.Schedule, error) {
	data, err := c.do(ctx, http.MethodGet, c.url("schedule.json"), nil)
	if err != nil {
		return model.Schedule{}, err
	}
	return model.DecodeSchedule(data)
}

// FetchCandidateCheckpoints loads places along the route selectable as
// checkpoints, with saved flags marking the persisted choice.
func (c *Client) FetchCandidateCheckpoints(ctx context.Context) ([]model.Checkpoint, error) {
	data, err := c.do(ctx, http.MethodGet, c.url("checkpoints", "edit.json"), nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeCheckpoints(data)
}

// PostSelection proposes a checkpoint selection. The server responds
// with the authoritative persisted list; it, not the client, decides
// final order and content.
func (c *Client) PostSelection(ctx context.Context, ids []string) ([]model.Checkpoint, error) {
	body, err := model.EncodeSelection(ids)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, c.url("checkpoints")+"/", body)
	if err != nil {
		return nil, err
	}
	return model.DecodeCheckpoints(data)
}

// FetchCandidatePlaces loads start or finish candidates. Exactly one
// must be flagged saved.
func (c *Client) FetchCandidatePlaces(ctx context.Context, kind model.PlaceKind) (model.CandidatePlaces, error) {
	data, err := c.do(ctx, http.MethodGet, c.url(string(kind), "edit.json"), nil)
	if err != nil {
		return model.CandidatePlaces{}, err
	}
	return model.DecodeCandidatePlaces(data)
}

// PostPlace saves a start/finish choice and returns the persisted place.
func (c *Client) PostPlace(ctx context.Context, kind model.PlaceKind, placeID string) (model.PlaceInfo, error) {
	body, err := model.EncodePlaceChoice(placeID)
	if err != nil {
		return model.PlaceInfo{}, err
	}
	data, err := c.do(ctx, http.MethodPost, c.url(string(kind))+"/", body)
	if err != nil {
		return model.PlaceInfo{}, err
	}
	return model.DecodePlaceInfo(data)
}
