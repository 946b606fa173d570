package transcript

import (
	"github.com/hazyhaar/streamscribe/transcript/internal/config"
)

// Config is the top-level streamscribe configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// SelectorConfig locates the transcript pane.
type SelectorConfig = config.SelectorConfig

// CollectConfig tunes the scroll loop.
type CollectConfig = config.CollectConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration for the Microsoft Stream player.
func DefaultConfig() *Config {
	return config.Default()
}
