// Package config loads the optional TOML settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"LocalPaint/internal/paint"
)

const (
	EnvConfig   = "LOCALPAINT_CONFIG"
	EnvLogLevel = "LOG_LEVEL"
	EnvDebug    = "DEBUG"
)

type Config struct {
	LogLevel string `toml:"log_level"`
	Canvas   Canvas `toml:"canvas"`
	Brush    Brush  `toml:"brush"`
	Files    Files  `toml:"files"`
	Share    Share  `toml:"share"`
}

type Canvas struct {
	Divisor        float64 `toml:"divisor"`
	FallbackWidth  int     `toml:"fallback_width"`
	FallbackHeight int     `toml:"fallback_height"`
	Interpolate    bool    `toml:"interpolate"`
}

type Brush struct {
	Size  float64 `toml:"size"`
	Color string  `toml:"color"`
	Shape string  `toml:"shape"`
}

type Files struct {
	QuickSaveName string `toml:"quick_save_name"`
	SaveDir       string `toml:"save_dir"`
}

type Share struct {
	Port            int      `toml:"port"`
	Service         string   `toml:"service"`
	DiscoverTimeout Duration `toml:"discover_timeout"`
	// Advertise announces hosted canvases over mDNS.
	Advertise bool `toml:"advertise"`
}

// Duration lets TOML files spell durations as "3s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Canvas: Canvas{
			Divisor:        1.5,
			FallbackWidth:  1280,
			FallbackHeight: 720,
			Interpolate:    true,
		},
		Brush: Brush{
			Size:  10,
			Color: "#000000ff",
			Shape: "brush",
		},
		Files: Files{
			QuickSaveName: "paint.png",
			SaveDir:       ".",
		},
		Share: Share{
			Port:            8899,
			Service:         "_localpaint._tcp",
			DiscoverTimeout: Duration{3 * time.Second},
			Advertise:       true,
		},
	}
}

// Path is where the settings file lives unless LOCALPAINT_CONFIG says otherwise.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "localpaint", "config.toml"), nil
}

// Load reads the file at path on top of the defaults. A missing file is not
// an error. Environment overrides are not folded in, so saving the result
// never persists them; see LogLevelOverride.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevelOverride is the level to log at for this run: LOG_LEVEL, then
// DEBUG=1, then the file's log_level.
func (c Config) LogLevelOverride() string {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		return lvl
	}
	if os.Getenv(EnvDebug) == "1" {
		return "debug"
	}
	return c.LogLevel
}

func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Canvas.Divisor <= 0 {
		return fmt.Errorf("canvas divisor must be positive, got %v", c.Canvas.Divisor)
	}
	if c.Canvas.FallbackWidth <= 0 || c.Canvas.FallbackHeight <= 0 {
		return fmt.Errorf("fallback canvas size must be positive, got %dx%d",
			c.Canvas.FallbackWidth, c.Canvas.FallbackHeight)
	}
	if _, err := c.DefaultBrush(); err != nil {
		return err
	}
	if c.Files.QuickSaveName == "" || filepath.Base(c.Files.QuickSaveName) != c.Files.QuickSaveName {
		return fmt.Errorf("quick save name must be a plain file name, got %q", c.Files.QuickSaveName)
	}
	if c.Share.Port <= 0 || c.Share.Port > 65535 {
		return fmt.Errorf("share port out of range: %d", c.Share.Port)
	}
	return nil
}

// DefaultBrush is the brush the canvas starts with.
func (c Config) DefaultBrush() (paint.Brush, error) {
	b := paint.DefaultBrush()
	if c.Brush.Size <= 0 {
		return b, fmt.Errorf("brush: %w", paint.ErrInvalidSize)
	}
	b.Size = c.Brush.Size
	col, err := paint.ParseHex(c.Brush.Color)
	if err != nil {
		return b, fmt.Errorf("brush: %w", err)
	}
	b.Color = col
	shape, err := paint.ParseShape(c.Brush.Shape)
	if err != nil {
		return b, fmt.Errorf("brush: %w", err)
	}
	b.Shape = shape
	return b, nil
}

// RememberBrush copies the brush into the settings so the next session
// starts with it.
func (c *Config) RememberBrush(b paint.Brush) {
	c.Brush = Brush{
		Size:  b.Size,
		Color: paint.FormatHex(b.Color),
		Shape: b.Shape.String(),
	}
}

// Save writes the settings, creating the directory if needed. The file is
// replaced only once the new content is fully written.
func (c Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
