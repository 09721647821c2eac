// Package client implements model.Service against a remote calgrid server.
// It is behaviorally interchangeable with the in-process store; error
// conditions travel as status codes and are mapped back onto the shared
// taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"calgrid/internal/model"
)

// Client talks to one calgrid server.
type Client struct {
	baseURL  string
	http     *http.Client
	username string
	password string
}

// New creates a Client for the given base URL (e.g. "http://127.0.0.1:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBasicAuth sets credentials sent with every request.
func (c *Client) WithBasicAuth(username, password string) *Client {
	c.username = username
	c.password = password
	return c
}

var _ model.Service = (*Client)(nil)

func (c *Client) ListCalendars(ctx context.Context) ([]model.Calendar, error) {
	var out []model.Calendar
	err := c.do(ctx, http.MethodGet, "/api/calendars", nil, &out)
	return out, err
}

func (c *Client) CreateCalendar(ctx context.Context, name string, color model.Color) (model.Calendar, error) {
	body := map[string]string{"name": name, "color": string(color)}
	var out model.Calendar
	err := c.do(ctx, http.MethodPost, "/api/calendars", body, &out)
	return out, err
}

func (c *Client) UpdateCalendar(ctx context.Context, id string, patch model.CalendarPatch) (model.Calendar, error) {
	var out model.Calendar
	err := c.do(ctx, http.MethodPut, "/api/calendars/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) DeleteCalendar(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/calendars/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetCalendarVisibility(ctx context.Context, id string, visible bool) ([]model.Calendar, error) {
	body := map[string]bool{"visible": visible}
	var out []model.Calendar
	err := c.do(ctx, http.MethodPut, "/api/calendars/"+url.PathEscape(id)+"/visibility", body, &out)
	return out, err
}

func (c *Client) ListEvents(ctx context.Context, visibleCalendarIDs []string) ([]model.Event, error) {
	path := "/api/events"
	if len(visibleCalendarIDs) > 0 {
		path += "?calendars=" + url.QueryEscape(strings.Join(visibleCalendarIDs, ","))
	}
	var out []model.Event
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) SearchEvents(ctx context.Context, query string, includeHidden bool) ([]model.Event, error) {
	q := url.Values{}
	q.Set("q", query)
	if includeHidden {
		q.Set("includeHidden", "true")
	}
	var out []model.Event
	err := c.do(ctx, http.MethodGet, "/api/events/search?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	var out model.Event
	err := c.do(ctx, http.MethodPost, "/api/events", ev, &out)
	return out, err
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, error) {
	var out model.Event
	err := c.do(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil)
}

// dateResponse matches the server's navigation reply shape.
type dateResponse struct {
	CurrentDate string `json:"currentDate"`
}

func (c *Client) CurrentDate(ctx context.Context) (time.Time, error) {
	var out dateResponse
	if err := c.do(ctx, http.MethodGet, "/api/current-date", nil, &out); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, out.CurrentDate)
}

func (c *Client) Navigate(ctx context.Context, dir model.Direction) (time.Time, error) {
	var out dateResponse
	path := "/api/navigate/" + url.PathEscape(string(dir))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, out.CurrentDate)
}

// Refresh asks the server to re-import its ICS subscriptions now.
func (c *Client) Refresh(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/refresh", nil, nil)
}

// do performs one round trip. body is JSON-encoded when non-nil; out is
// JSON-decoded from 2xx responses when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError rebuilds a taxonomy error from an error response.
func statusError(resp *http.Response) error {
	msg := resp.Status
	var er struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		msg = er.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", model.ErrValidation, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", model.ErrConflict, msg)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}
}
