// Package config loads the capture rig configuration. Fields are pointer
// typed so a partial JSON file only overrides what it names; the Get*
// methods provide the fallback defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical capture defaults file.
const DefaultConfigPath = "config/capture.defaults.json"

// QualityMode selects the pre-adaptation frame resize target. Smaller frames
// adapt faster at the cost of landmark precision.
type QualityMode string

const (
	QualitySpeed    QualityMode = "speed"
	QualityBalanced QualityMode = "balanced"
	QualityQuality  QualityMode = "quality"
)

// CaptureConfig represents the root configuration for the swing capture
// pipeline. The same JSON shape serves startup configuration and the batch
// CLI flags.
type CaptureConfig struct {
	// Camera params
	FrontCamera   *string  `json:"front_camera,omitempty"`
	SideCamera    *string  `json:"side_camera,omitempty"`
	BufferSeconds *float64 `json:"buffer_seconds,omitempty"`
	FPS           *float64 `json:"fps,omitempty"`
	Quality       *string  `json:"quality,omitempty"` // speed|balanced|quality

	// Live loop params
	PollInterval *string `json:"poll_interval,omitempty"` // duration string like "50ms"
	Debounce     *string `json:"debounce,omitempty"`      // duration string like "3s"

	// Batch params
	BatchTimeout     *string `json:"batch_timeout,omitempty"` // duration string like "10m"
	DownsampleFactor *int    `json:"downsample_factor,omitempty"`

	// Launch monitor params
	ShotListenAddr  *string `json:"shot_listen_addr,omitempty"` // UDP addr, e.g. "127.0.0.1:5555"
	ShotSerialPath  *string `json:"shot_serial_path,omitempty"`
	MinShotInterval *string `json:"min_shot_interval,omitempty"`

	// Server / storage params
	ListenAddr    *string `json:"listen_addr,omitempty"`
	DBPath        *string `json:"db_path,omitempty"`
	MigrationsDir *string `json:"migrations_dir,omitempty"`
}

// EmptyCaptureConfig returns a CaptureConfig with all fields set to nil.
func EmptyCaptureConfig() *CaptureConfig {
	return &CaptureConfig{}
}

// LoadCaptureConfig loads a CaptureConfig from a JSON file. Fields omitted
// from the JSON retain their defaults, so partial configs are safe.
func LoadCaptureConfig(path string) (*CaptureConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCaptureConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *CaptureConfig) Validate() error {
	if c.BufferSeconds != nil && *c.BufferSeconds <= 0 {
		return fmt.Errorf("buffer_seconds must be positive, got %f", *c.BufferSeconds)
	}
	if c.FPS != nil && *c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %f", *c.FPS)
	}
	if c.Quality != nil {
		switch QualityMode(*c.Quality) {
		case QualitySpeed, QualityBalanced, QualityQuality:
		default:
			return fmt.Errorf("unknown quality mode %q: expected speed, balanced, or quality", *c.Quality)
		}
	}
	if c.DownsampleFactor != nil && *c.DownsampleFactor < 1 {
		return fmt.Errorf("downsample_factor must be at least 1, got %d", *c.DownsampleFactor)
	}

	for name, field := range map[string]*string{
		"poll_interval":     c.PollInterval,
		"debounce":          c.Debounce,
		"batch_timeout":     c.BatchTimeout,
		"min_shot_interval": c.MinShotInterval,
	} {
		if field != nil && *field != "" {
			if _, err := time.ParseDuration(*field); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *field, err)
			}
		}
	}

	return nil
}

// GetFrontCamera returns the front camera identifier or the default.
func (c *CaptureConfig) GetFrontCamera() string {
	if c.FrontCamera == nil || *c.FrontCamera == "" {
		return "camera-front"
	}
	return *c.FrontCamera
}

// GetSideCamera returns the side camera identifier or the default.
func (c *CaptureConfig) GetSideCamera() string {
	if c.SideCamera == nil || *c.SideCamera == "" {
		return "camera-side"
	}
	return *c.SideCamera
}

// GetBufferSeconds returns the ring buffer duration or the default.
func (c *CaptureConfig) GetBufferSeconds() float64 {
	if c.BufferSeconds == nil {
		return 5.0
	}
	return *c.BufferSeconds
}

// GetFPS returns the nominal capture rate or the default.
func (c *CaptureConfig) GetFPS() float64 {
	if c.FPS == nil {
		return 60.0
	}
	return *c.FPS
}

// GetQuality returns the quality mode or the default.
func (c *CaptureConfig) GetQuality() QualityMode {
	if c.Quality == nil || *c.Quality == "" {
		return QualityBalanced
	}
	return QualityMode(*c.Quality)
}

// GetResizeWidth maps the quality mode to its pre-adaptation frame target
// width in pixels.
func (c *CaptureConfig) GetResizeWidth() int {
	switch c.GetQuality() {
	case QualitySpeed:
		return 320
	case QualityQuality:
		return 640
	default:
		return 480
	}
}

// GetPollInterval parses and returns the live loop tick period.
func (c *CaptureConfig) GetPollInterval() time.Duration {
	return c.duration(c.PollInterval, 50*time.Millisecond)
}

// GetDebounce parses and returns the minimum inter-swing interval.
func (c *CaptureConfig) GetDebounce() time.Duration {
	return c.duration(c.Debounce, 3*time.Second)
}

// GetBatchTimeout parses and returns the batch run budget.
func (c *CaptureConfig) GetBatchTimeout() time.Duration {
	return c.duration(c.BatchTimeout, 10*time.Minute)
}

// GetMinShotInterval parses and returns the launch monitor debounce.
func (c *CaptureConfig) GetMinShotInterval() time.Duration {
	return c.duration(c.MinShotInterval, 3*time.Second)
}

func (c *CaptureConfig) duration(field *string, def time.Duration) time.Duration {
	if field == nil || *field == "" {
		return def
	}
	d, err := time.ParseDuration(*field)
	if err != nil {
		return def
	}
	return d
}

// GetDownsampleFactor returns the batch downsample factor or the default.
func (c *CaptureConfig) GetDownsampleFactor() int {
	if c.DownsampleFactor == nil {
		return 1
	}
	return *c.DownsampleFactor
}

// GetShotListenAddr returns the UDP listen address for the launch monitor
// connector, or empty when the feed is disabled.
func (c *CaptureConfig) GetShotListenAddr() string {
	if c.ShotListenAddr == nil {
		return ""
	}
	return *c.ShotListenAddr
}

// GetShotSerialPath returns the serial device path for the launch monitor,
// or empty when not attached over serial.
func (c *CaptureConfig) GetShotSerialPath() string {
	if c.ShotSerialPath == nil {
		return ""
	}
	return *c.ShotSerialPath
}

// GetListenAddr returns the HTTP listen address or the default.
func (c *CaptureConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetDBPath returns the sqlite database path or the default.
func (c *CaptureConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "swing.db"
	}
	return *c.DBPath
}

// GetMigrationsDir returns the migrations directory or the default.
func (c *CaptureConfig) GetMigrationsDir() string {
	if c.MigrationsDir == nil || *c.MigrationsDir == "" {
		return "internal/db/migrations"
	}
	return *c.MigrationsDir
}
