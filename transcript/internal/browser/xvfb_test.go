package browser

import (
	"errors"
	"testing"
)

func TestDisplaySocket(t *testing.T) {
	for display, want := range map[string]string{
		":99":   "/tmp/.X11-unix/X99",
		":0":    "/tmp/.X11-unix/X0",
		":10.0": "/tmp/.X11-unix/X10",
	} {
		got, err := displaySocket(display)
		if err != nil || got != want {
			t.Errorf("displaySocket(%q): got (%q, %v), want %q", display, got, err, want)
		}
	}

	for _, bad := range []string{"", "99", ":", ":x1", "host:1"} {
		if _, err := displaySocket(bad); !errors.Is(err, errBadDisplay) {
			t.Errorf("displaySocket(%q): got %v, want errBadDisplay", bad, err)
		}
	}
}
