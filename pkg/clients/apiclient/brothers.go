package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

type loginResponse struct {
	Token   string        `json:"token"`
	Brother model.Brother `json:"brother"`
}

// Login exchanges credentials for a token and starts a session
func (c *Client) Login(ctx context.Context, email, password string) (*model.Brother, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/brothers/login",
		body:   map[string]string{"email": email, "password": password},
		public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.Login(resp.Token, resp.Brother); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	c.logger.Info("Logged in",
		zap.String("brother_id", resp.Brother.ID),
		zap.String("position", string(resp.Brother.Position)))

	return &resp.Brother, nil
}

// Logout clears the session
func (c *Client) Logout() error {
	return c.session.Clear()
}

// ListBrothers returns every brother of the caller's fraternity
func (c *Client) ListBrothers(ctx context.Context) ([]model.Brother, error) {
	frat, err := c.fraternity()
	if err != nil {
		return nil, err
	}

	var brothers []model.Brother
	if err := c.do(ctx, request{method: http.MethodGet, path: "/brothers", query: fratQuery(frat)}, &brothers); err != nil {
		return nil, err
	}
	return brothers, nil
}

// NewBrother is the payload for creating a brother account
type NewBrother struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Position model.Position `json:"position"`
}

// CreateBrother adds a brother to the caller's fraternity
func (c *Client) CreateBrother(ctx context.Context, b NewBrother) (*model.Brother, error) {
	var created model.Brother
	if err := c.do(ctx, request{method: http.MethodPost, path: "/brothers", body: b}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePosition changes a brother's position
func (c *Client) UpdatePosition(ctx context.Context, brotherID string, position model.Position) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/brothers/" + url.PathEscape(brotherID) + "/position",
		body:   map[string]model.Position{"position": position},
	}, nil)
}

// ToggleActive flips a brother's active flag
func (c *Client) ToggleActive(ctx context.Context, brotherID string) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/brothers/" + url.PathEscape(brotherID) + "/toggle-active",
	}, nil)
}

// ProfileUpdate holds the fields a brother may edit on their own profile
type ProfileUpdate struct {
	Phone string `json:"phone"`
	Major string `json:"major"`
	Year  string `json:"year"`
}

// UpdateProfile edits the caller's profile and refreshes the stored identity
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*model.Brother, error) {
	if err := c.do(ctx, request{method: http.MethodPatch, path: "/brothers/profile", body: p}, nil); err != nil {
		return nil, err
	}

	rec, ok := c.session.Current()
	if !ok {
		return nil, fmt.Errorf("session ended during profile update")
	}
	updated := rec.Brother
	updated.Phone = p.Phone
	updated.Major = p.Major
	updated.Year = model.FlexString(p.Year)
	if err := c.session.Login(rec.Token, updated); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &updated, nil
}

// ResetPassword changes the caller's password
func (c *Client) ResetPassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/brothers/reset-password",
		body: map[string]string{
			"currentPassword": currentPassword,
			"newPassword":     newPassword,
		},
	}, nil)
}
