package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rushtracker/rushtracker/pkg/core/forms"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxImageBytes  = 5 << 20
	DefaultImgBBEndpoint  = "https://api.imgbb.com/1/upload"
)

// ImageUploadConfig selects where profile pictures are uploaded
type ImageUploadConfig struct {
	Provider string `yaml:"provider,omitempty" validate:"omitempty,oneof=api imgbb"`
	Endpoint string `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	APIKey   string `yaml:"apiKey,omitempty" validate:"required_if=Provider imgbb"`
	MaxBytes int64  `yaml:"maxBytes,omitempty" validate:"omitempty,min=1"`
}

// FormsConfig holds form validation policy
type FormsConfig struct {
	AllowEmptyRequiredCheckbox bool `yaml:"allowEmptyRequiredCheckbox"`
}

// Config represents the application configuration
type Config struct {
	APIBaseURL     string            `yaml:"apiBaseURL" validate:"required,url"`
	PublicBaseURL  string            `yaml:"publicBaseURL,omitempty" validate:"omitempty,url"`
	RequestTimeout time.Duration     `yaml:"requestTimeout,omitempty" validate:"min=0"`
	SessionFile    string            `yaml:"sessionFile,omitempty"`
	ExportDir      string            `yaml:"exportDir,omitempty"`
	ImageUpload    ImageUploadConfig `yaml:"imageUpload,omitempty"`
	Forms          FormsConfig       `yaml:"forms,omitempty"`
}

// FormPolicy converts the forms section into the engine's validation policy
func (c *Config) FormPolicy() forms.Policy {
	return forms.Policy{AllowEmptyRequiredCheckbox: c.Forms.AllowEmptyRequiredCheckbox}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment suffix
// For example, env="test" will look for "rushtracker_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads and validates the configuration from a specific path. Defaults are not
// applied.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes and validates a configuration document. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults(env string) error {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	if c.ImageUpload.Provider == "" {
		c.ImageUpload.Provider = "api"
	}
	if c.ImageUpload.Provider == "imgbb" && c.ImageUpload.Endpoint == "" {
		c.ImageUpload.Endpoint = DefaultImgBBEndpoint
	}
	if c.ImageUpload.MaxBytes == 0 {
		c.ImageUpload.MaxBytes = DefaultMaxImageBytes
	}
	if c.SessionFile == "" {
		path, err := DefaultSessionFile(env)
		if err != nil {
			return err
		}
		c.SessionFile = path
	}
	return nil
}

// DefaultSessionFile is ~/.rushtracker/session.<env>.json
func DefaultSessionFile(env string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	name := "session.json"
	if env != "" {
		name = "session." + env + ".json"
	}
	return filepath.Join(homeDir, ".rushtracker", name), nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "rushtracker_config.yaml"
	if env != "" {
		configFileName = "rushtracker_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
