package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxBatchSize is the largest number of images the archive API returns
	// for a single request.
	MaxBatchSize = 8

	// ImageExtension is appended to custom file names lacking it.
	ImageExtension = ".jpg"

	// DefaultBaseURL is the origin of the image-of-the-day archive.
	DefaultBaseURL = "https://www.bing.com"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "bing-wallpaper"
)

var (
	// ErrInvalidBatchSize is returned when the batch size is not a positive integer.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidSettings is returned for any other invalid setting.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings holds all configuration options.
type Settings struct {
	// Source settings
	BaseURL    string     `json:"base_url"`
	Market     string     `json:"market"`
	Resolution Resolution `json:"resolution"`
	Timeout    int        `json:"timeout_seconds"`
	UserAgent  string     `json:"user_agent"`

	// Selection and naming
	BatchSize  int    `json:"batch_size"` // 0 = latest image only
	FileName   string `json:"file_name"`
	DatePrefix bool   `json:"date_prefix"`

	// Destination
	PictureDir string   `json:"picture_dir"` // directory or s3://bucket/prefix
	Force      bool     `json:"force"`
	S3         S3Config `json:"s3"`

	// Output
	Quiet       bool   `json:"quiet"`
	Verbose     bool   `json:"verbose"`
	Progress    bool   `json:"progress"`
	MetricsFile string `json:"metrics_file"`
}

// S3Config holds settings for s3:// picture directories.
type S3Config struct {
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UsePathStyle    bool   `json:"use_path_style"`
}

// DefaultSettings returns settings with default values.
//
// Images go to the current working directory at 1920x1080.
func DefaultSettings() *Settings {
	workDir, _ := os.Getwd()
	return &Settings{
		BaseURL:    DefaultBaseURL,
		Resolution: DefaultResolution,
		Timeout:    60,
		UserAgent:  DefaultUserAgent,
		PictureDir: workDir,
	}
}

// DefaultPath returns the default settings file location,
// $XDG_CONFIG_HOME/bing-wallpaper/config.json or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bing-wallpaper", "config.json")
}

// Load reads settings from a JSON file.
//
// A missing file yields DefaultSettings.
func Load(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// BatchMode reports whether a batch of images was requested, even a batch of one.
func (s *Settings) BatchMode() bool {
	return s.BatchSize > 0
}

// Count returns the number of images to request from the API, capped at
// MaxBatchSize.
func (s *Settings) Count() int {
	if s.BatchSize > 0 {
		return min(s.BatchSize, MaxBatchSize)
	}
	return 1
}

// BatchClamped reports whether BatchSize exceeds what the archive serves.
func (s *Settings) BatchClamped() bool {
	return s.BatchSize > MaxBatchSize
}

// RequestTimeout returns Timeout as a duration. Zero disables the timeout.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// Normalize applies the canonical form of user-supplied values.
func (s *Settings) Normalize() {
	s.FileName = NormalizeFileName(s.FileName)
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
}

// Validate checks the settings invariants.
func (s *Settings) Validate() error {
	if _, err := ParseResolution(string(s.Resolution)); err != nil {
		return err
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("%w: %d (must be a positive integer)", ErrInvalidBatchSize, s.BatchSize)
	}
	if strings.TrimSpace(s.PictureDir) == "" {
		return fmt.Errorf("%w: picture directory is empty", ErrInvalidSettings)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("%w: base URL is empty", ErrInvalidSettings)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidSettings)
	}
	return nil
}

// NormalizeFileName appends ImageExtension to a non-empty name lacking it.
//
// Example:
//
//	NormalizeFileName("wallpaper")     // "wallpaper.jpg"
//	NormalizeFileName("wallpaper.jpg") // "wallpaper.jpg"
//	NormalizeFileName("")              // ""
func NormalizeFileName(name string) string {
	if name == "" || strings.HasSuffix(name, ImageExtension) {
		return name
	}
	return name + ImageExtension
}
