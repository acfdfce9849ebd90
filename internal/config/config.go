package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// Config represents the full configuration for both synchronization passes
type Config struct {
	Wiki            WikiSettings    `mapstructure:"wiki" yaml:"wiki"`
	Storage         StorageSettings `mapstructure:"storage" yaml:"storage"`
	Images          ImageSettings   `mapstructure:"images" yaml:"images"`
	Logging         LoggingSettings `mapstructure:"logging" yaml:"logging"`
	DefaultBuyLimit int             `mapstructure:"defaultBuyLimit" yaml:"defaultBuyLimit"`
}

// WikiSettings describes the remote wiki endpoints
type WikiSettings struct {
	BaseURL      string        `mapstructure:"baseURL" yaml:"baseURL"`
	FeedPath     string        `mapstructure:"feedPath" yaml:"feedPath"`     // GE ID JSON module, relative to BaseURL
	LimitsPath   string        `mapstructure:"limitsPath" yaml:"limitsPath"` // buy limits article, relative to BaseURL
	UserAgent    string        `mapstructure:"userAgent" yaml:"userAgent"`
	FeedTimeout  time.Duration `mapstructure:"feedTimeout" yaml:"feedTimeout"`   // feed and limits page
	ImageTimeout time.Duration `mapstructure:"imageTimeout" yaml:"imageTimeout"` // per image request
}

// StorageSettings contains the local output directories
type StorageSettings struct {
	ItemsDir  string `mapstructure:"itemsDir" yaml:"itemsDir"`
	ImagesDir string `mapstructure:"imagesDir" yaml:"imagesDir"`
}

// ImageSettings controls image downloads
type ImageSettings struct {
	// Delay is the start-to-start spacing between two attempted items, enforced
	// with golang.org/x/time/rate. The idle gap after an item is Delay minus the
	// time its requests took. Skipped items are not paced.
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
	MinBytes MinBytes      `mapstructure:"minBytes" yaml:"minBytes"`
}

// MinBytes holds the payload size a response must exceed to be accepted.
// These are heuristics against placeholder images, not guarantees.
type MinBytes struct {
	Full       int `mapstructure:"full" yaml:"full"`
	Thumb      int `mapstructure:"thumb" yaml:"thumb"`
	Detail     int `mapstructure:"detail" yaml:"detail"`
	ThumbLarge int `mapstructure:"thumbLarge" yaml:"thumbLarge"`
}

// LoggingSettings configures log/slog output
type LoggingSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiSettings{
			BaseURL:      "https://oldschool.runescape.wiki",
			FeedPath:     "/?title=Module:GEIDs/data.json&action=raw&ctype=application/json",
			LimitsPath:   "/w/Grand_Exchange/Buying_limits",
			UserAgent:    "geitems/1.0 (item reference sync)",
			FeedTimeout:  30 * time.Second,
			ImageTimeout: 10 * time.Second,
		},
		Storage: StorageSettings{
			ItemsDir:  "items-json",
			ImagesDir: "images",
		},
		Images: ImageSettings{
			Delay: 1 * time.Second,
			MinBytes: MinBytes{
				Full:       100,
				Thumb:      100,
				Detail:     1000,
				ThumbLarge: 500,
			},
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
		DefaultBuyLimit: 10000,
	}
}

// FeedURL returns the absolute URL of the GE ID feed
func (c *Config) FeedURL() string {
	return strings.TrimRight(c.Wiki.BaseURL, "/") + c.Wiki.FeedPath
}

// LimitsURL returns the absolute URL of the buy limits article
func (c *Config) LimitsURL() string {
	return strings.TrimRight(c.Wiki.BaseURL, "/") + c.Wiki.LimitsPath
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Wiki.BaseURL)
	if err != nil {
		return fmt.Errorf("wiki.baseURL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("wiki.baseURL must use http or https, got %q", c.Wiki.BaseURL)
	}
	if c.Wiki.FeedPath == "" {
		return fmt.Errorf("wiki.feedPath must be set")
	}
	if c.Wiki.LimitsPath == "" {
		return fmt.Errorf("wiki.limitsPath must be set")
	}
	if c.Wiki.FeedTimeout <= 0 {
		return fmt.Errorf("wiki.feedTimeout must be positive")
	}
	if c.Wiki.ImageTimeout <= 0 {
		return fmt.Errorf("wiki.imageTimeout must be positive")
	}

	if c.Storage.ItemsDir == "" {
		return fmt.Errorf("storage.itemsDir must be set")
	}
	if c.Storage.ImagesDir == "" {
		return fmt.Errorf("storage.imagesDir must be set")
	}

	if c.Images.Delay < 0 {
		return fmt.Errorf("images.delay cannot be negative")
	}
	thresholds := map[string]int{
		"full":       c.Images.MinBytes.Full,
		"thumb":      c.Images.MinBytes.Thumb,
		"detail":     c.Images.MinBytes.Detail,
		"thumbLarge": c.Images.MinBytes.ThumbLarge,
	}
	for name, v := range thresholds {
		if v < 0 {
			return fmt.Errorf("images.minBytes.%s cannot be negative", name)
		}
	}

	if c.DefaultBuyLimit < 1 {
		return fmt.Errorf("defaultBuyLimit must be at least 1")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}

	return nil
}
