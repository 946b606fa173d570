// Package transcript extracts the full transcript from a virtualized
// transcript pane (Microsoft Stream by default) and delivers it as a
// plain-text document.
//
// An Extractor drives Chrome through go-rod: it opens the video page,
// scrolls the pane in steps until every row has been seen, renders the
// document and fans it out to sinks. Saved HTML pages can be processed
// without a browser via ExtractHTML.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/streamscribe/idgen"
	"github.com/hazyhaar/streamscribe/transcript/internal/browser"
	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
	"github.com/hazyhaar/streamscribe/transcript/internal/config"
	"github.com/hazyhaar/streamscribe/transcript/internal/document"
	"github.com/hazyhaar/streamscribe/transcript/internal/pagescroll"
	"github.com/hazyhaar/streamscribe/transcript/internal/sink"
	"github.com/hazyhaar/streamscribe/transcript/internal/snapshot"
	"github.com/hazyhaar/streamscribe/transcript/internal/trigger"
)

// Extractor is the top-level orchestrator. It owns the browser, the sinks
// and the single-flight guard. Create one per process.
type Extractor struct {
	cfg    *config.Config
	mgr    *browser.Manager
	sinkR  *sink.Router
	guard  *trigger.Guard
	titles document.TitleRules
	logger *slog.Logger

	newID func() string
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error // nil = collect default
}

// New creates an Extractor from configuration. It fails only when the
// title strip patterns do not compile.
func New(cfg *config.Config, logger *slog.Logger, sinks ...sink.Sink) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	rules := document.DefaultTitleRules()
	if len(cfg.Title.StripPatterns) > 0 || cfg.Title.Fallback != "" {
		var err error
		rules, err = document.CompileTitleRules(cfg.Title.StripPatterns, cfg.Title.Fallback)
		if err != nil {
			return nil, fmt.Errorf("transcript: %w", err)
		}
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Mode:             browser.ParseMode(cfg.Browser.Stealth),
		UseXvfb:          cfg.Browser.UseXvfb,
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		UserDataDir:      cfg.Browser.UserDataDir,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})

	return &Extractor{
		cfg:    cfg,
		mgr:    mgr,
		sinkR:  sink.NewRouter(logger, sinks...),
		guard:  trigger.NewGuard(trigger.NopSurface{}, cfg.Trigger.RestoreDelay, logger),
		titles: rules,
		logger: logger,
		newID:  idgen.Run,
		now:    time.Now,
	}, nil
}

// Start launches (or connects to) Chrome.
func (e *Extractor) Start(ctx context.Context) error {
	if _, err := e.mgr.Start(ctx); err != nil {
		return fmt.Errorf("transcript: start browser: %w", err)
	}
	e.logger.Info("transcript: ready", "mode", e.mgr.Mode(), "sinks", e.sinkR.Len())
	return nil
}

// Stop closes the sinks and the browser.
func (e *Extractor) Stop() error {
	if err := e.sinkR.Close(); err != nil {
		e.logger.Warn("transcript: close sinks", "error", err)
	}
	return e.mgr.Close()
}

// Running reports whether a run is in progress.
func (e *Extractor) Running() bool { return e.guard.Running() }

// Extract opens pageURL in a new tab, collects its transcript and delivers
// it. It returns ErrBusy when another Extract or ExtractHTML is running.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Document, []byte, error) {
	var doc *Document
	var body []byte
	err := e.guard.Run(ctx, func(ctx context.Context, report func(collect.Progress)) (int, error) {
		tab, err := browser.OpenTab(ctx, e.mgr, pageURL, e.cfg.Browser.NavigateTimeout)
		if err != nil {
			return 0, fmt.Errorf("transcript: open tab: %w", err)
		}
		defer tab.Close()

		doc, body, err = e.collectLive(ctx, e.panelWaiter(tab), e.liveLocator(tab), e.liveTitles(tab), pageURL, report)
		if err != nil {
			return 0, err
		}
		return len(doc.Entries), nil
	})
	return doc, body, err
}

// ExtractHTML collects the transcript from a saved page. Only the rows that
// were rendered when the page was saved are present, so the result is
// usually partial for long videos.
func (e *Extractor) ExtractHTML(ctx context.Context, r io.Reader, sourceURL string) (*Document, []byte, error) {
	page, err := snapshot.Parse(r, snapshot.Selectors{
		Containers: e.cfg.Selectors.Containers,
		Row:        e.cfg.Selectors.Row,
		Key:        e.cfg.Selectors.Key,
		Text:       e.cfg.Selectors.Text,
		Heading:    e.cfg.Selectors.Heading,
	})
	if err != nil {
		return nil, nil, err
	}

	var doc *Document
	var body []byte
	err = e.guard.Run(ctx, func(ctx context.Context, report func(collect.Progress)) (int, error) {
		// A static page renders nothing new, so pauses only check ctx.
		d, b, err := e.run(ctx, page, page, sourceURL, noWait, report)
		doc, body = d, b
		if err != nil {
			return 0, err
		}
		return len(d.Entries), nil
	})
	return doc, body, err
}

// Watch opens pageURL, injects the extract button next to the transcript
// pane and runs a collection on every click until ctx is done. Clicks
// during a run, including one started by Extract, are ignored. Failures are shown to the user on the page and
// logged; Watch itself only fails when the page cannot be prepared.
func (e *Extractor) Watch(ctx context.Context, pageURL string) error {
	if e.mgr.Mode() != browser.ModeHeadful {
		e.logger.Warn("transcript: watch in headless mode, nobody can click the button")
	}

	tab, err := browser.OpenTab(ctx, e.mgr, pageURL, e.cfg.Browser.NavigateTimeout)
	if err != nil {
		return fmt.Errorf("transcript: open tab: %w", err)
	}
	defer tab.Close()
	// Runs dispatched from clicks use the tab; wait for them before closing it.
	var inflight sync.WaitGroup
	defer inflight.Wait()

	btn, err := trigger.InstallButton(ctx, tab.Page, trigger.ButtonConfig{
		Label:        e.cfg.Trigger.Label,
		Panel:        e.cfg.Selectors.Panel,
		PollInterval: e.cfg.Trigger.PollInterval,
		Logger:       e.logger,
	})
	if err != nil {
		return err
	}

	job := func(ctx context.Context, report func(collect.Progress)) (int, error) {
		doc, _, err := e.collectLive(ctx, e.panelWaiter(tab), e.liveLocator(tab), e.liveTitles(tab), pageURL, report)
		if err != nil {
			return 0, err
		}
		return len(doc.Entries), nil
	}

	e.logger.Info("transcript: watching", "url", pageURL)
	btn.Listen(ctx, func() {
		e.dispatch(ctx, btn, job, &inflight)
	})
	return nil
}

// dispatch starts job on the shared guard in the background and tracks it
// in wg. Busy and failed runs are only logged.
func (e *Extractor) dispatch(ctx context.Context, surface trigger.Surface, job trigger.Job, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := e.guard.RunOn(ctx, surface, job)
		switch {
		case err == nil:
		case errors.Is(err, trigger.ErrBusy):
			e.logger.Debug("transcript: click ignored, run in progress")
		default:
			e.logger.Warn("transcript: run failed", "error", err)
		}
	}()
}

// collectLive waits for the transcript panel, then runs a collection. A
// panel that never shows up is logged and the locator gets its chance
// anyway, so the caller sees ErrMissingContainer rather than a timeout.
func (e *Extractor) collectLive(
	ctx context.Context,
	wait func(context.Context) error,
	loc collect.Locator,
	titles document.TitleSource,
	pageURL string,
	report func(collect.Progress),
) (*Document, []byte, error) {
	if err := wait(ctx); err != nil {
		if !errors.Is(err, pagescroll.ErrPanelTimeout) {
			return nil, nil, fmt.Errorf("transcript: wait for panel: %w", err)
		}
		e.logger.Warn("transcript: panel not rendered in time", "url", pageURL, "timeout", e.cfg.Browser.NavigateTimeout)
	}
	return e.run(ctx, loc, titles, pageURL, e.sleep, report)
}

// panelWaiter polls the tab for the panel or any container candidate.
func (e *Extractor) panelWaiter(tab *browser.Tab) func(context.Context) error {
	sels := make([]string, 0, len(e.cfg.Selectors.Panel)+len(e.cfg.Selectors.Containers))
	sels = append(sels, e.cfg.Selectors.Panel...)
	sels = append(sels, e.cfg.Selectors.Containers...)
	return func(ctx context.Context) error {
		return pagescroll.WaitPanel(ctx, tab.Page, sels, e.cfg.Trigger.PollInterval, e.cfg.Browser.NavigateTimeout)
	}
}

func (e *Extractor) liveLocator(tab *browser.Tab) collect.Locator {
	return pagescroll.Locator{
		Page: tab.Page,
		Selectors: pagescroll.Selectors{
			Containers: e.cfg.Selectors.Containers,
			Row:        e.cfg.Selectors.Row,
			Key:        e.cfg.Selectors.Key,
			Text:       e.cfg.Selectors.Text,
		},
	}
}

func (e *Extractor) liveTitles(tab *browser.Tab) document.TitleSource {
	return pagescroll.Titles{Page: tab.Page, HeadingSelector: e.cfg.Selectors.Heading}
}

func noWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }
