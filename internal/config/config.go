package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/envelope/internal/geometry"
	"github.com/kikiluvv/envelope/pkg/util"
)

type contextKey string

const configKey contextKey = "config"

// DefaultPlaceholder is shown in the letter panel when no text is configured
const DefaultPlaceholder = "This is letter content that will be displayed here..."

// Config holds all application configuration
type Config struct {
	// Media assets
	Assets AssetsConfig `yaml:"assets"`

	// Letter copy
	Letter LetterConfig `yaml:"letter"`

	// Letter panel placement
	Overlay OverlayConfig `yaml:"overlay"`

	// Window settings
	Window WindowConfig `yaml:"window"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

type AssetsConfig struct {
	ClosedImage string `yaml:"closed_image"`
	Video       string `yaml:"video"`
	OpenImage   string `yaml:"open_image"`
}

type LetterConfig struct {
	Text        string `yaml:"text"`
	Path        string `yaml:"path"`
	Placeholder string `yaml:"placeholder"`
}

type OverlayConfig struct {
	Base         geometry.NormalizedRect `yaml:"base"`
	TargetHeight float64                 `yaml:"target_height"`
	Anchor       geometry.Anchor         `yaml:"anchor"`
}

// Target returns the normalized panel rect derived from base, height and anchor
func (o OverlayConfig) Target() geometry.NormalizedRect {
	return geometry.DeriveTargetRect(o.Base, o.TargetHeight, o.Anchor)
}

type WindowConfig struct {
	Title  string  `yaml:"title"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"ffprobe_path"`
	Threads    int    `yaml:"threads"`
	MaxHeight  int    `yaml:"max_height"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// anchors are case-insensitive in the file
	cfg.Overlay.Anchor, _ = geometry.ParseAnchor(string(cfg.Overlay.Anchor))

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := util.EnsureParentDir(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports configuration that would produce a broken layout
func (c *Config) Validate() error {
	var errs []error

	if err := c.Overlay.Base.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("overlay.base: %w", err))
	}
	if c.Overlay.TargetHeight < 0 || c.Overlay.TargetHeight > 1 {
		errs = append(errs, fmt.Errorf("overlay.target_height=%g out of range [0,1]", c.Overlay.TargetHeight))
	}
	if _, err := geometry.ParseAnchor(string(c.Overlay.Anchor)); err != nil {
		errs = append(errs, fmt.Errorf("overlay.anchor: %w", err))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %gx%g must be positive", c.Window.Width, c.Window.Height))
	}
	if c.FFmpeg.MaxHeight < 0 {
		errs = append(errs, fmt.Errorf("ffmpeg.max_height must not be negative"))
	}

	return errors.Join(errs...)
}

// Warnings reports settings that load but degrade the layout
func (c *Config) Warnings() []error {
	var warns []error
	if err := c.Overlay.Base.Overflow(); err != nil {
		warns = append(warns, fmt.Errorf("overlay.base: %w", err))
	}
	if err := c.Overlay.Target().Overflow(); err != nil {
		warns = append(warns, fmt.Errorf("overlay target: %w", err))
	}
	return warns
}

// LetterText returns the letter copy, reading Letter.Path when set
func (c *Config) LetterText() (string, error) {
	if c.Letter.Path == "" {
		return c.Letter.Text, nil
	}
	data, err := os.ReadFile(c.Letter.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read letter: %w", err)
	}
	return string(data), nil
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Assets: AssetsConfig{
			ClosedImage: "./assets/close_state.png",
			Video:       "./assets/process.mp4",
			OpenImage:   "./assets/open_state.png",
		},
		Letter: LetterConfig{
			Placeholder: DefaultPlaceholder,
		},
		Overlay: OverlayConfig{
			Base:         geometry.NormalizedRect{X: 0.25, Y: 0.20, W: 0.5, H: 0.44},
			TargetHeight: 0.7,
			Anchor:       geometry.AnchorCenter,
		},
		Window: WindowConfig{
			Title:  "envelope",
			Width:  480,
			Height: 800,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			MaxHeight:  1080,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./envelope.yaml",
		"./envelope.yml",
		filepath.Join(os.Getenv("HOME"), ".envelope", "config.yaml"),
	}

	for _, path := range candidates {
		if util.FileExists(path) {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
