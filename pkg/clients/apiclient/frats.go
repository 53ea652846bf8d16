package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

func fratPath(id string, rest ...string) string {
	p := "/frats/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// GetFraternity fetches a fraternity and its tag vocabulary; works without a session
func (c *Client) GetFraternity(ctx context.Context, fratID string) (*model.Fraternity, error) {
	var f model.Fraternity
	if err := c.do(ctx, c.optionalAuth(request{method: http.MethodGet, path: fratPath(fratID)}), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// AddFraternityTag adds a tag to the vocabulary
func (c *Client) AddFraternityTag(ctx context.Context, fratID, tag string) error {
	return c.do(ctx, request{method: http.MethodPost, path: fratPath(fratID, "tags"), body: map[string]string{"tag": tag}}, nil)
}

// RemoveFraternityTag removes a tag from the vocabulary
func (c *Client) RemoveFraternityTag(ctx context.Context, fratID, tag string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fratPath(fratID, "tags"), body: map[string]string{"tag": tag}}, nil)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage posts an image to the API's upload endpoint and returns the hosted URL
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write data to multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath("/upload/image").String(), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var resp uploadResponse
	if err := c.send(httpReq, !c.session.LoggedIn(), &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("upload response did not include a url")
	}
	return resp.URL, nil
}
