package imageclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the largest image accepted for upload
const DefaultMaxBytes = 5 * 1024 * 1024

// Provider selects where images are hosted
type Provider string

const (
	ProviderAPI   Provider = "api"
	ProviderImgBB Provider = "imgbb"
)

var (
	ErrTooLarge = errors.New("image is too large")
	ErrNotImage = errors.New("file is not an image")
)

// APIUploader uploads through the rushtracker API
type APIUploader interface {
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

// Options configures a Client
type Options struct {
	Provider Provider
	Endpoint string
	APIKey   string
	MaxBytes int64
	Timeout  time.Duration
}

// Client checks images locally and uploads them to the configured host
type Client struct {
	opts       Options
	api        APIUploader
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an uploader. api is only used by the api provider.
func NewClient(opts Options, api APIUploader, logger *zap.Logger) (*Client, error) {
	if opts.Provider == "" {
		opts.Provider = ProviderAPI
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	switch opts.Provider {
	case ProviderAPI:
		if api == nil {
			return nil, fmt.Errorf("api provider requires an api client")
		}
	case ProviderImgBB:
		if opts.Endpoint == "" || opts.APIKey == "" {
			return nil, fmt.Errorf("imgbb provider requires an endpoint and api key")
		}
	default:
		return nil, fmt.Errorf("unknown image provider %q", opts.Provider)
	}

	return &Client{
		opts:       opts,
		api:        api,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}, nil
}

// UploadFile reads path and uploads it
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	if info.Size() > c.opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), c.opts.MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return c.Upload(ctx, filepath.Base(path), data)
}

// Upload checks size and content type, then uploads data and returns the hosted URL
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if err := c.Check(data); err != nil {
		return "", err
	}

	c.logger.Info("Uploading image",
		zap.String("provider", string(c.opts.Provider)),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)))

	var (
		hosted string
		err    error
	)
	switch c.opts.Provider {
	case ProviderImgBB:
		hosted, err = c.uploadImgBB(ctx, filename, data)
	default:
		hosted, err = c.api.UploadImage(ctx, filename, data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	c.logger.Debug("Image uploaded", zap.String("url", hosted))
	return hosted, nil
}

// Check enforces the size limit and that the content sniffs as an image
func (c *Client) Check(data []byte) error {
	if int64(len(data)) > c.opts.MaxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), c.opts.MaxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return nil
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) uploadImgBB(ctx context.Context, filename string, data []byte) (string, error) {
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

	u, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse upload endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", c.opts.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to post image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	var result imgbbResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode upload response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success || result.Data.URL == "" {
		msg := result.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}

	return result.Data.URL, nil
}
