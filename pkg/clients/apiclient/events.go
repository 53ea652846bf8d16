package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// EventFilter narrows ListEvents; zero fields are not sent
type EventFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
}

func eventPath(id string, rest ...string) string {
	p := "/events/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ListEvents returns the events visible to the caller
func (c *Client) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	q := url.Values{}
	if !filter.StartDate.IsZero() {
		q.Set("startDate", filter.StartDate.Format("2006-01-02"))
	}
	if !filter.EndDate.IsZero() {
		q.Set("endDate", filter.EndDate.Format("2006-01-02"))
	}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}

	var events []model.Event
	if err := c.do(ctx, request{method: http.MethodGet, path: "/events", query: q}, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches an event with both forms. It works without a session so rushees can open
// the public form link.
func (c *Client) GetEvent(ctx context.Context, fratID, eventID string) (*model.Event, error) {
	var e model.Event
	if err := c.do(ctx, c.optionalAuth(request{method: http.MethodGet, path: eventPath(eventID), query: fratQuery(fratID)}), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent stores a new event
func (c *Client) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	var created model.Event
	if err := c.do(ctx, request{method: http.MethodPost, path: "/events", body: e}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SubmitBrotherForm records the caller's answers to an event's brother form
func (c *Client) SubmitBrotherForm(ctx context.Context, eventID string, responses model.FormResponse) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   eventPath(eventID, "submit", "brother"),
		body:   map[string]any{"responses": responses},
	}, nil)
}

// SubmitRusheeForm records a rushee's answers; works without a session
func (c *Client) SubmitRusheeForm(ctx context.Context, fratID, eventID, rusheeID string, responses model.FormResponse) error {
	return c.do(ctx, c.optionalAuth(request{
		method: http.MethodPost,
		path:   eventPath(eventID, "submit", "rushee"),
		query:  fratQuery(fratID),
		body: map[string]any{
			"rusheeId":  rusheeID,
			"responses": responses,
		},
	}), nil)
}

// ListSubmissions returns the submissions of one type for an event
func (c *Client) ListSubmissions(ctx context.Context, eventID string, kind model.SubmissionType) ([]model.Submission, error) {
	frat, err := c.fraternity()
	if err != nil {
		return nil, err
	}
	q := fratQuery(frat)
	q.Set("type", string(kind))

	var subs []model.Submission
	if err := c.do(ctx, request{method: http.MethodGet, path: eventPath(eventID, "submissions"), query: q}, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
