// Package config handles streamscribe configuration from YAML files.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/streamscribe/horosafe"
)

// Config is the top-level streamscribe configuration.
type Config struct {
	Browser   BrowserConfig  `yaml:"browser"`
	Selectors SelectorConfig `yaml:"selectors"`
	Collect   CollectConfig  `yaml:"collect"`
	Title     TitleConfig    `yaml:"title"`
	Trigger   TriggerConfig  `yaml:"trigger"`
	Output    OutputConfig   `yaml:"output"`
	Sinks     []SinkConfig   `yaml:"sinks"`
	Server    ServerConfig   `yaml:"server"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Stealth          string        `yaml:"stealth"` // headless | headful
	XvfbDisplay      string        `yaml:"xvfb_display"`
	UseXvfb          bool          `yaml:"use_xvfb"`
	UserDataDir      string        `yaml:"user_data_dir"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// SelectorConfig locates the transcript pane. Defaults match the
// Microsoft Stream player.
type SelectorConfig struct {
	Containers []string `yaml:"containers"` // tried in order
	Panel      []string `yaml:"panel"`      // presence gates the trigger button
	Row        string   `yaml:"row"`
	Key        string   `yaml:"key"`
	Text       string   `yaml:"text"`
	Heading    string   `yaml:"heading"`
}

// CollectConfig tunes the scroll loop. A zero field takes the loop's
// default; min_text_length: -1 keeps every non-empty row.
type CollectConfig struct {
	ScrollIncrement       float64       `yaml:"scroll_increment"`
	StartDelay            time.Duration `yaml:"start_delay"`
	SettleDelay           time.Duration `yaml:"settle_delay"`
	BottomDelay           time.Duration `yaml:"bottom_delay"`
	BottomTolerance       float64       `yaml:"bottom_tolerance"`
	MinTextLength         int           `yaml:"min_text_length"`
	StagnationLimit       int           `yaml:"stagnation_limit"`
	BottomStagnationLimit int           `yaml:"bottom_stagnation_limit"`
	MaxIterations         int           `yaml:"max_iterations"`
}

// TitleConfig controls title detection.
type TitleConfig struct {
	StripPatterns []string `yaml:"strip_patterns"`
	Fallback      string   `yaml:"fallback"`
}

// TriggerConfig controls the injected page button.
type TriggerConfig struct {
	Label        string        `yaml:"label"`
	RestoreDelay time.Duration `yaml:"restore_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// OutputConfig controls the rendered document.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	TimeLayout string `yaml:"time_layout"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // file | stdout | webhook
	Dir  string `yaml:"dir"`  // for file
	URL  string `yaml:"url"`  // for webhook

	// Webhook delivery. Retries is a pointer so that "retries: 0" (one
	// attempt) differs from leaving it out (3).
	Retries *int          `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"` // first retry delay, doubled each attempt
	Timeout time.Duration `yaml:"timeout"` // per attempt
}

// DefaultWebhookRetries applies when a webhook sink sets no retries.
const DefaultWebhookRetries = 3

// ServerConfig controls the HTTP trigger surface.
type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero fields. Collect fields are left at zero: the
// collect package owns those defaults.
func (c *Config) ApplyDefaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}

	if len(c.Selectors.Containers) == 0 {
		c.Selectors.Containers = []string{
			"#scrollToTargetTargetedFocusZone",
			`[id*="scrollToTarget"]`,
			"#OneTranscript",
		}
	}
	if len(c.Selectors.Panel) == 0 {
		c.Selectors.Panel = []string{`[aria-label="Transcript"]`, "#pluginContent"}
	}
	if c.Selectors.Row == "" {
		c.Selectors.Row = `[id^="listItem-"]`
	}
	if c.Selectors.Key == "" {
		c.Selectors.Key = `button[id^="Left-timestamp-"]`
	}
	if c.Selectors.Text == "" {
		c.Selectors.Text = `[id^="sub-entry-"]`
	}
	if c.Selectors.Heading == "" {
		c.Selectors.Heading = "h1"
	}

	if c.Trigger.Label == "" {
		c.Trigger.Label = "Extract Full Transcript"
	}
	if c.Trigger.RestoreDelay <= 0 {
		c.Trigger.RestoreDelay = 8 * time.Second
	}
	if c.Trigger.PollInterval <= 0 {
		c.Trigger.PollInterval = time.Second
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}

	for i := range c.Sinks {
		if c.Sinks[i].Type == "file" && c.Sinks[i].Dir == "" {
			c.Sinks[i].Dir = c.Output.Dir
		}
		if c.Sinks[i].Type != "webhook" {
			continue
		}
		if c.Sinks[i].Retries == nil {
			n := DefaultWebhookRetries
			c.Sinks[i].Retries = &n
		}
		if c.Sinks[i].Backoff <= 0 {
			c.Sinks[i].Backoff = time.Second
		}
		if c.Sinks[i].Timeout <= 0 {
			c.Sinks[i].Timeout = 30 * time.Second
		}
	}

	if c.Server.RunTimeout <= 0 {
		c.Server.RunTimeout = 10 * time.Minute
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	switch c.Browser.Stealth {
	case "headless", "headful":
	default:
		return fmt.Errorf("config: browser.stealth %q: want headless or headful", c.Browser.Stealth)
	}
	for _, s := range c.Sinks {
		switch s.Type {
		case "file", "stdout":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: webhook sink requires url")
			}
			if err := horosafe.ValidateURL(context.Background(), s.URL); err != nil {
				return fmt.Errorf("config: webhook url %q: %w", s.URL, err)
			}
			if s.Retries != nil && *s.Retries < 0 {
				return fmt.Errorf("config: webhook retries %d: must not be negative", *s.Retries)
			}
		default:
			return fmt.Errorf("config: unknown sink type %q", s.Type)
		}
	}
	return nil
}
