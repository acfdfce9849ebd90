package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test loading default config when file doesn't exist
	t.Run("LoadDefaultWhenMissing", func(t *testing.T) {
		config, err := LoadConfig("nonexistent.yaml", nil)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "https://oldschool.runescape.wiki", config.Wiki.BaseURL)
		assert.Equal(t, 10*time.Second, config.Wiki.ImageTimeout)
		assert.Equal(t, time.Second, config.Images.Delay)
		assert.Equal(t, 100, config.Images.MinBytes.Full)
		assert.Equal(t, 100, config.Images.MinBytes.Thumb)
		assert.Equal(t, 1000, config.Images.MinBytes.Detail)
		assert.Equal(t, 500, config.Images.MinBytes.ThumbLarge)
		assert.Equal(t, 10000, config.DefaultBuyLimit)
		assert.Equal(t, "items-json", config.Storage.ItemsDir)
		assert.Equal(t, "images", config.Storage.ImagesDir)
	})

	// Test loading from YAML file
	t.Run("LoadFromYAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "geitems.yaml")

		yamlContent := `
wiki:
  baseURL: http://localhost:8080
  imageTimeout: 3s
storage:
  itemsDir: out/items
  imagesDir: out/images
images:
  delay: 2s
  minBytes:
    detail: 2048
defaultBuyLimit: 500
logging:
  format: json
`
		require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

		config, err := LoadConfig(configPath, nil)
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080", config.Wiki.BaseURL)
		assert.Equal(t, 3*time.Second, config.Wiki.ImageTimeout)
		assert.Equal(t, "out/items", config.Storage.ItemsDir)
		assert.Equal(t, "out/images", config.Storage.ImagesDir)
		assert.Equal(t, 2*time.Second, config.Images.Delay)
		assert.Equal(t, 2048, config.Images.MinBytes.Detail)
		assert.Equal(t, 500, config.Images.MinBytes.ThumbLarge, "unset keys keep defaults")
		assert.Equal(t, 500, config.DefaultBuyLimit)
		assert.Equal(t, "json", config.Logging.Format)
		assert.Equal(t, "http://localhost:8080/w/Grand_Exchange/Buying_limits", config.LimitsURL())
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "geitems.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  imagesDir: from-file\n"), 0644))

		t.Setenv("GEITEMS_STORAGE_IMAGESDIR", "from-env")

		config, err := LoadConfig(configPath, nil)
		require.NoError(t, err)
		assert.Equal(t, "from-env", config.Storage.ImagesDir)
	})

	t.Run("FlagsOverrideEnvironment", func(t *testing.T) {
		t.Setenv("GEITEMS_STORAGE_ITEMSDIR", "from-env")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs)
		require.NoError(t, fs.Parse([]string{"--items-dir", "from-flag", "--delay", "250ms"}))

		config, err := LoadConfig("nonexistent.yaml", fs)
		require.NoError(t, err)
		assert.Equal(t, "from-flag", config.Storage.ItemsDir)
		assert.Equal(t, 250*time.Millisecond, config.Images.Delay)
	})

	t.Run("InvalidFileIsRejected", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "geitems.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("wiki: [unclosed"), 0644))

		_, err := LoadConfig(configPath, nil)
		assert.Error(t, err)
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "ValidConfig",
			mutate: func(c *Config) {},
		},
		{
			name:     "BaseURLWithoutScheme",
			mutate:   func(c *Config) { c.Wiki.BaseURL = "oldschool.runescape.wiki" },
			errorMsg: "must use http or https",
		},
		{
			name:     "ZeroImageTimeout",
			mutate:   func(c *Config) { c.Wiki.ImageTimeout = 0 },
			errorMsg: "wiki.imageTimeout must be positive",
		},
		{
			name:     "MissingItemsDir",
			mutate:   func(c *Config) { c.Storage.ItemsDir = "" },
			errorMsg: "storage.itemsDir must be set",
		},
		{
			name:     "NegativeDelay",
			mutate:   func(c *Config) { c.Images.Delay = -time.Second },
			errorMsg: "images.delay cannot be negative",
		},
		{
			name:     "NegativeThreshold",
			mutate:   func(c *Config) { c.Images.MinBytes.Detail = -1 },
			errorMsg: "images.minBytes.detail cannot be negative",
		},
		{
			name:     "ZeroDefaultBuyLimit",
			mutate:   func(c *Config) { c.DefaultBuyLimit = 0 },
			errorMsg: "defaultBuyLimit must be at least 1",
		},
		{
			name:     "UnknownLogLevel",
			mutate:   func(c *Config) { c.Logging.Level = "verbose" },
			errorMsg: "logging.level",
		},
		{
			name:     "UnknownLogFormat",
			mutate:   func(c *Config) { c.Logging.Format = "xml" },
			errorMsg: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DefaultConfig().WriteYAML(&buf))

	out := buf.String()
	assert.Contains(t, out, "baseURL: https://oldschool.runescape.wiki")
	assert.Contains(t, out, "imageTimeout: 10s")
	assert.Contains(t, out, "defaultBuyLimit: 10000")
}
