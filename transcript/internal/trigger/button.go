package trigger

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

//go:embed button.js
var buttonJS string

const (
	buttonID    = "streamscribeExtractBtn"
	bindingName = "__streamscribe_trigger"
)

const showJS = `(id, text, color, disabled) => {
	const b = document.getElementById(id);
	if (!b) return;
	b.textContent = text;
	b.style.background = color;
	b.disabled = disabled;
}`

const alertJS = `(msg) => { setTimeout(() => alert(msg), 0); }`

// ButtonConfig configures the injected button.
type ButtonConfig struct {
	Label        string
	Panel        []string      // the button appears once one of these matches
	PollInterval time.Duration // how often to look for the panel
	Logger       *slog.Logger
}

// Button is a fixed-position button injected into a page. Clicks reach Go
// through a CDP runtime binding. It implements Surface.
type Button struct {
	page   *rod.Page
	label  string
	logger *slog.Logger
}

// InstallButton registers the binding and injects the button script. The
// button itself appears when the transcript panel is present.
func InstallButton(ctx context.Context, page *rod.Page, cfg ButtonConfig) (*Button, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	p := page.Context(ctx)
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p); err != nil {
		cfg.Logger.Warn("trigger: addBinding failed (may already exist)", "error", err)
	}

	_, err := p.Eval(buttonJS, map[string]any{
		"id":      buttonID,
		"label":   cfg.Label,
		"color":   colorIdle,
		"panel":   cfg.Panel,
		"binding": bindingName,
		"pollMs":  cfg.PollInterval.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("trigger: inject button: %w", err)
	}

	cfg.Logger.Info("trigger: button installed", "panel", cfg.Panel)
	return &Button{page: page, label: cfg.Label, logger: cfg.Logger}, nil
}

// Listen calls onClick for every button click until ctx is done. onClick
// runs on the event goroutine and must not block.
func (b *Button) Listen(ctx context.Context, onClick func()) {
	b.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		b.logger.Debug("trigger: button clicked")
		onClick()
	})()
}

// Show implements Surface. Failures are reported with alert(), as users
// of the page expect, followed by the label update.
func (b *Button) Show(ctx context.Context, s State) error {
	p := b.page.Context(ctx)
	if s.Kind == Failed {
		_, err := p.Eval(alertJS, s.Message)
		return err
	}
	text, color := s.Label(b.label)
	_, err := p.Eval(showJS, buttonID, text, color, s.Kind == Working)
	return err
}
