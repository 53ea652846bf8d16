package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// NewRushee is the payload for creating a rushee
type NewRushee struct {
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Major          string       `json:"major,omitempty"`
	Year           string       `json:"year,omitempty"`
	GPA            string       `json:"gpa,omitempty"`
	Picture        string       `json:"picture,omitempty"`
	Resume         string       `json:"resume,omitempty"`
	Status         model.Status `json:"status,omitempty"`
	Fraternity     string       `json:"fraternity"`
	EventsAttended []string     `json:"eventsAttended,omitempty"`
}

// RusheeUpdate holds the editable profile fields; empty fields are left unchanged
type RusheeUpdate struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Major   string `json:"major,omitempty"`
	Year    string `json:"year,omitempty"`
	GPA     string `json:"gpa,omitempty"`
	Picture string `json:"picture,omitempty"`
	Resume  string `json:"resume,omitempty"`
}

func rusheePath(id string, rest ...string) string {
	p := "/rushees/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ListRushees returns every rushee of the caller's fraternity
func (c *Client) ListRushees(ctx context.Context) ([]model.Rushee, error) {
	frat, err := c.fraternity()
	if err != nil {
		return nil, err
	}

	var rushees []model.Rushee
	if err := c.do(ctx, request{method: http.MethodGet, path: "/rushees", query: fratQuery(frat)}, &rushees); err != nil {
		return nil, err
	}
	return rushees, nil
}

// GetRushee fetches one rushee with notes and events populated
func (c *Client) GetRushee(ctx context.Context, id string) (*model.Rushee, error) {
	frat, err := c.fraternity()
	if err != nil {
		return nil, err
	}

	var r model.Rushee
	if err := c.do(ctx, request{method: http.MethodGet, path: rusheePath(id), query: fratQuery(frat)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FindRusheeByEmail looks a rushee up within a fraternity. Returns ErrNotFound when there is
// no match. It works without a session so the public rushee forms can use it.
func (c *Client) FindRusheeByEmail(ctx context.Context, fratID, email string) (*model.Rushee, error) {
	q := fratQuery(fratID)
	q.Set("email", email)

	var r model.Rushee
	if err := c.do(ctx, c.optionalAuth(request{method: http.MethodGet, path: "/rushees/search", query: q}), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRushee creates a rushee; works without a session
func (c *Client) CreateRushee(ctx context.Context, r NewRushee) (*model.Rushee, error) {
	var created model.Rushee
	if err := c.do(ctx, c.optionalAuth(request{method: http.MethodPost, path: "/rushees", body: r}), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRushee patches profile fields; works without a session
func (c *Client) UpdateRushee(ctx context.Context, fratID, id string, u RusheeUpdate) error {
	return c.do(ctx, c.optionalAuth(request{
		method: http.MethodPatch,
		path:   rusheePath(id),
		query:  fratQuery(fratID),
		body:   u,
	}), nil)
}

// UpdateRusheeStatus sets the status; any status may follow any other
func (c *Client) UpdateRusheeStatus(ctx context.Context, id string, status model.Status) error {
	frat, err := c.fraternity()
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   rusheePath(id, "status"),
		query:  fratQuery(frat),
		body:   map[string]model.Status{"status": status},
	}, nil)
}

// DeleteRushee removes a rushee
func (c *Client) DeleteRushee(ctx context.Context, id string) error {
	frat, err := c.fraternity()
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: rusheePath(id), query: fratQuery(frat)}, nil)
}

// AddNote posts a note authored by the caller
func (c *Client) AddNote(ctx context.Context, rusheeID, content string, anonymous bool) error {
	frat, err := c.fraternity()
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   rusheePath(rusheeID, "notes"),
		query:  fratQuery(frat),
		body: map[string]any{
			"content":     content,
			"isAnonymous": anonymous,
		},
	}, nil)
}

// DeleteNote removes a note by its ID
func (c *Client) DeleteNote(ctx context.Context, rusheeID, noteID string) error {
	frat, err := c.fraternity()
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: rusheePath(rusheeID, "notes", noteID), query: fratQuery(frat)}, nil)
}

// VoteNote sends a single vote verb for the caller on a note
func (c *Client) VoteNote(ctx context.Context, rusheeID, noteID string, action model.VoteAction) error {
	frat, err := c.fraternity()
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   rusheePath(rusheeID, "notes", noteID, string(action)),
		query:  fratQuery(frat),
	}, nil)
}

// AddRusheeTag attaches a tag
func (c *Client) AddRusheeTag(ctx context.Context, rusheeID, tag string) error {
	return c.do(ctx, request{method: http.MethodPost, path: rusheePath(rusheeID, "tags"), body: map[string]string{"tag": tag}}, nil)
}

// RemoveRusheeTag detaches a tag
func (c *Client) RemoveRusheeTag(ctx context.Context, rusheeID, tag string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: rusheePath(rusheeID, "tags"), body: map[string]string{"tag": tag}}, nil)
}

// optionalAuth sends req with the token when logged in and without it otherwise
func (c *Client) optionalAuth(req request) request {
	req.public = !c.session.LoggedIn()
	return req
}
