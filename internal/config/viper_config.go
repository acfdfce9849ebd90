package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// flagKeys maps command line flags to viper keys
var flagKeys = map[string]string{
	"base-url":   "wiki.baseurl",
	"items-dir":  "storage.itemsdir",
	"images-dir": "storage.imagesdir",
	"delay":      "images.delay",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// RegisterFlags adds the flags understood by LoadConfig to fs
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "path to a geitems.yaml config file")
	fs.String("base-url", d.Wiki.BaseURL, "wiki base URL")
	fs.String("items-dir", d.Storage.ItemsDir, "directory for per-item JSON files")
	fs.String("images-dir", d.Storage.ImagesDir, "directory for per-item images")
	fs.Duration("delay", d.Images.Delay, "minimum time between the starts of two image downloads")
	fs.String("log-level", d.Logging.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", d.Logging.Format, "log format (text, json)")
}

// LoadConfig loads configuration using Viper
// Priority order: Flags > Environment variables > Config file > Defaults
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("geitems")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/geitems")
	}

	// GEITEMS_WIKI_BASEURL, GEITEMS_STORAGE_ITEMSDIR, ...
	v.SetEnvPrefix("GEITEMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
			}
		}
	}

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; continue with env vars and defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("wiki.baseurl", d.Wiki.BaseURL)
	v.SetDefault("wiki.feedpath", d.Wiki.FeedPath)
	v.SetDefault("wiki.limitspath", d.Wiki.LimitsPath)
	v.SetDefault("wiki.useragent", d.Wiki.UserAgent)
	v.SetDefault("wiki.feedtimeout", d.Wiki.FeedTimeout.String())
	v.SetDefault("wiki.imagetimeout", d.Wiki.ImageTimeout.String())

	v.SetDefault("storage.itemsdir", d.Storage.ItemsDir)
	v.SetDefault("storage.imagesdir", d.Storage.ImagesDir)

	v.SetDefault("images.delay", d.Images.Delay.String())
	v.SetDefault("images.minbytes.full", d.Images.MinBytes.Full)
	v.SetDefault("images.minbytes.thumb", d.Images.MinBytes.Thumb)
	v.SetDefault("images.minbytes.detail", d.Images.MinBytes.Detail)
	v.SetDefault("images.minbytes.thumblarge", d.Images.MinBytes.ThumbLarge)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("defaultbuylimit", d.DefaultBuyLimit)
}

// WriteYAML writes the effective configuration to w
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("unable to encode config: %w", err)
	}
	return enc.Close()
}
