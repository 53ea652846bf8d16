package imageclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// smallest valid PNG header is enough for content sniffing
var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type mockAPI struct {
	filename string
	data     []byte
	url      string
	err      error
}

func (m *mockAPI) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	m.filename = filename
	m.data = data
	return m.url, m.err
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{Provider: ProviderAPI}, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(Options{Provider: ProviderImgBB}, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(Options{Provider: "s3"}, &mockAPI{}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient(Options{}, &mockAPI{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ProviderAPI, c.opts.Provider)
	assert.Equal(t, int64(DefaultMaxBytes), c.opts.MaxBytes)
}

func TestUpload_APIProvider(t *testing.T) {
	api := &mockAPI{url: "https://img.example/a.png"}
	c, err := NewClient(Options{}, api, zap.NewNop())
	require.NoError(t, err)

	u, err := c.Upload(context.Background(), "a.png", pngData)

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a.png", u)
	assert.Equal(t, "a.png", api.filename)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	api := &mockAPI{}
	c, err := NewClient(Options{}, api, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "notes.txt", []byte("just some text"))

	assert.ErrorIs(t, err, ErrNotImage)
	assert.Empty(t, api.filename, "nothing should be uploaded")
}

func TestUpload_RejectsLargeImage(t *testing.T) {
	c, err := NewClient(Options{MaxBytes: 16}, &mockAPI{}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.png", pngData)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngData, 0600))

	api := &mockAPI{url: "https://img.example/me.png"}
	c, err := NewClient(Options{}, api, zap.NewNop())
	require.NoError(t, err)

	u, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/me.png", u)
	assert.Equal(t, "me.png", api.filename)
	assert.Equal(t, pngData, api.data)

	_, err = c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestUpload_APIErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewClient(Options{}, &mockAPI{err: boom}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.png", pngData)
	assert.ErrorIs(t, err, boom)
}

func TestUpload_ImgBB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "a.png", header.Filename)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"url": "https://i.ibb.co/a.png"},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Options{Provider: ProviderImgBB, Endpoint: srv.URL + "/1/upload", APIKey: "secret"}, nil, zap.NewNop())
	require.NoError(t, err)

	u, err := c.Upload(context.Background(), "a.png", pngData)
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/a.png", u)
}

func TestUpload_ImgBBFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"message": "Invalid API v1 key."},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Options{Provider: ProviderImgBB, Endpoint: srv.URL, APIKey: "bad"}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.png", pngData)
	assert.ErrorContains(t, err, "Invalid API v1 key.")
}
