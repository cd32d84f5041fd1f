package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/imagefocus/pkg/imagefocus"
)

// FileName is the project configuration file looked up by Load
const FileName = "imagefocus.yaml"

// Config represents the imagefocus.yaml configuration
type Config struct {
	// Overlay settings passed to the image focus core
	Overlay *OverlayConfig `yaml:"overlay,omitempty"`

	// Viewport used by headless commands
	Viewport *ViewportConfig `yaml:"viewport,omitempty"`

	// Development server configuration
	Dev *DevConfig `yaml:"dev,omitempty"`
}

// OverlayConfig mirrors imagefocus.Options. Empty fields take the core's
// defaults.
type OverlayConfig struct {
	ContentImages      string        `yaml:"contentImages,omitempty"`
	ExcludedContainers string        `yaml:"excludedContainers,omitempty"`
	GalleryScope       string        `yaml:"galleryScope,omitempty"`
	Footnotes          string        `yaml:"footnotes,omitempty"`
	ThumbnailClass     string        `yaml:"thumbnailClass,omitempty"`
	ShrinkRatio        float64       `yaml:"shrinkRatio,omitempty"`
	HideUIAfter        time.Duration `yaml:"hideUIAfter,omitempty"`
	DropShadow         string        `yaml:"dropShadow,omitempty"`
	SlidePrefix        string        `yaml:"slidePrefix,omitempty"`
	AccessKey          string        `yaml:"accessKey,omitempty"`
}

// ViewportConfig is the simulated browser viewport
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	// Server port
	Port int `yaml:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty"`

	// Directory of pages to serve
	Root string `yaml:"root,omitempty"`

	// Path to the compiled WASM client
	Wasm string `yaml:"wasm,omitempty"`

	// Glob patterns, relative to Root, whose changes reload the browser
	Watch []string `yaml:"watch,omitempty"`
}

// Load loads configuration from imagefocus.yaml in dir. A missing file
// yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Save writes configuration to imagefocus.yaml in dir
func Save(config *Config, dir string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Overlay: &OverlayConfig{},
		Viewport: &ViewportConfig{
			Width:  1280,
			Height: 800,
		},
		Dev: &DevConfig{
			Port: 8080,
			Host: "localhost",
			Root: ".",
			Wasm: "public/imagefocus.wasm",
			Watch: []string{
				"**/*.{html,htm,md,markdown}",
				"**/*.{css,js}",
				"**/*.{png,jpg,jpeg,gif,svg,webp}",
			},
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Overlay == nil {
		config.Overlay = defaults.Overlay
	}

	if config.Viewport == nil {
		config.Viewport = defaults.Viewport
	} else {
		if config.Viewport.Width <= 0 {
			config.Viewport.Width = defaults.Viewport.Width
		}
		if config.Viewport.Height <= 0 {
			config.Viewport.Height = defaults.Viewport.Height
		}
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
		if config.Dev.Root == "" {
			config.Dev.Root = defaults.Dev.Root
		}
		if config.Dev.Wasm == "" {
			config.Dev.Wasm = defaults.Dev.Wasm
		}
		if len(config.Dev.Watch) == 0 {
			config.Dev.Watch = defaults.Dev.Watch
		}
	}
}

// Options converts the overlay settings for the image focus core
func (c *Config) Options(logger *slog.Logger) *imagefocus.Options {
	o := c.Overlay
	if o == nil {
		o = &OverlayConfig{}
	}
	return &imagefocus.Options{
		ContentImagesSelector:      o.ContentImages,
		ExcludedContainersSelector: o.ExcludedContainers,
		GalleryScopeSelector:       o.GalleryScope,
		FootnotesSelector:          o.Footnotes,
		ThumbnailClass:             o.ThumbnailClass,
		ShrinkRatio:                o.ShrinkRatio,
		HideUIAfter:                o.HideUIAfter,
		DropShadowFilter:           o.DropShadow,
		SlideFragmentPrefix:        o.SlidePrefix,
		AccessKey:                  o.AccessKey,
		Logger:                     logger,
	}
}
