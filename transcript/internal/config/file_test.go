package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Browser.Stealth != "headless" {
		t.Errorf("Stealth: got %q", cfg.Browser.Stealth)
	}
	if cfg.Selectors.Containers[0] != "#scrollToTargetTargetedFocusZone" {
		t.Errorf("Containers[0]: got %q", cfg.Selectors.Containers[0])
	}
	if cfg.Selectors.Row != `[id^="listItem-"]` {
		t.Errorf("Row: got %q", cfg.Selectors.Row)
	}
	if cfg.Trigger.RestoreDelay != 8*time.Second {
		t.Errorf("RestoreDelay: got %v", cfg.Trigger.RestoreDelay)
	}
	if cfg.Collect.ScrollIncrement != 0 {
		t.Errorf("Collect left to collect package defaults, got %v", cfg.Collect.ScrollIncrement)
	}
}

func TestLoadFile(t *testing.T) {
	yml := `
browser:
  stealth: headful
  navigate_timeout: 45s
selectors:
  containers: ["#transcript"]
collect:
  scroll_increment: 250
  settle_delay: 900ms
  stagnation_limit: 20
output:
  dir: /tmp/out
sinks:
  - type: file
  - type: webhook
    url: https://hooks.example.com/transcripts
  - type: webhook
    url: https://hooks.example.com/archive
    retries: 0
    backoff: 250ms
`
	path := filepath.Join(t.TempDir(), "streamscribe.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Stealth != "headful" || cfg.Browser.NavigateTimeout != 45*time.Second {
		t.Errorf("Browser: got %+v", cfg.Browser)
	}
	if len(cfg.Selectors.Containers) != 1 || cfg.Selectors.Containers[0] != "#transcript" {
		t.Errorf("Containers: got %v", cfg.Selectors.Containers)
	}
	if cfg.Selectors.Key == "" {
		t.Error("Key default not applied")
	}
	if cfg.Collect.ScrollIncrement != 250 || cfg.Collect.SettleDelay != 900*time.Millisecond || cfg.Collect.StagnationLimit != 20 {
		t.Errorf("Collect: got %+v", cfg.Collect)
	}
	if cfg.Sinks[0].Dir != "/tmp/out" {
		t.Errorf("file sink dir: got %q", cfg.Sinks[0].Dir)
	}
	if r := cfg.Sinks[1].Retries; r == nil || *r != DefaultWebhookRetries {
		t.Errorf("webhook retries: got %v, want default", r)
	}
	if cfg.Sinks[1].Backoff != time.Second || cfg.Sinks[1].Timeout != 30*time.Second {
		t.Errorf("webhook defaults: got %+v", cfg.Sinks[1])
	}
	if r := cfg.Sinks[2].Retries; r == nil || *r != 0 {
		t.Errorf("explicit zero retries: got %v", r)
	}
	if cfg.Sinks[2].Backoff != 250*time.Millisecond {
		t.Errorf("backoff: got %v", cfg.Sinks[2].Backoff)
	}
	if cfg.Sinks[0].Retries != nil {
		t.Error("file sink must not get webhook defaults")
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"stealth":       "browser:\n  stealth: invisible\n",
		"sink type":     "sinks:\n  - type: carrier_pigeon\n",
		"webhook url":   "sinks:\n  - type: webhook\n",
		"webhook ssrf":  "sinks:\n  - type: webhook\n    url: http://169.254.169.254/latest/\n",
		"webhook local": "sinks:\n  - type: webhook\n    url: http://127.0.0.1:9222/json\n",
		"retries":       "sinks:\n  - type: webhook\n    url: https://hooks.example.com/x\n    retries: -1\n",
		"yaml":          "browser: [\n",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "config:") {
			t.Errorf("%s: error not prefixed: %v", name, err)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
