package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// xvfbReadyTimeout bounds the wait for the display socket.
const xvfbReadyTimeout = 3 * time.Second

var errBadDisplay = errors.New("browser: display must look like :N")

// displaySocket maps an X display such as ":99" or ":99.0" to the Unix
// socket Xvfb creates once it accepts clients.
func displaySocket(display string) (string, error) {
	num, ok := strings.CutPrefix(display, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q", errBadDisplay, display)
	}
	num, _, _ = strings.Cut(num, ".")
	if num == "" || strings.Trim(num, "0123456789") != "" {
		return "", fmt.Errorf("%w: %q", errBadDisplay, display)
	}
	return "/tmp/.X11-unix/X" + num, nil
}

// startXvfb runs a virtual display so a visible Chrome works on machines
// without a screen. It returns once the display socket exists.
func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil
	}

	display := m.cfg.XvfbDisplay
	socket, err := displaySocket(display)
	if err != nil {
		return err
	}
	cmd := exec.Command("Xvfb", display, "-screen", "0", "1920x1080x24", "-ac", "-nolisten", "tcp")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser: start xvfb on %s: %w", display, err)
	}
	m.xvfb = cmd

	deadline := time.Now().Add(xvfbReadyTimeout)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			m.stopXvfb()
			return fmt.Errorf("browser: xvfb on %s not ready after %s", display, xvfbReadyTimeout)
		}
		time.Sleep(50 * time.Millisecond)
	}

	m.cfg.Logger.Info("browser: virtual display up", "display", display, "xvfb_pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if p := m.xvfb.Process; p != nil {
		_ = p.Kill()
		_ = m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: virtual display down", "display", m.cfg.XvfbDisplay)
	m.xvfb = nil
}
