// Package trigger provides the user-facing start surface for a collection
// run: a single-flight Guard and the button injected into the page.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
)

// ErrBusy is returned when a run is already in progress.
var ErrBusy = errors.New("trigger: a collection run is already in progress")

// Kind enumerates the states of the trigger surface.
type Kind int

const (
	Idle Kind = iota
	Working
	Saved
	Failed
)

// State is what the surface should display.
type State struct {
	Kind    Kind
	Percent int
	Entries int
	Message string // for Failed
}

// Surface displays trigger state. Implementations: the page Button, or
// nothing (NopSurface) for headless and HTTP runs.
type Surface interface {
	Show(ctx context.Context, s State) error
}

// NopSurface discards every state.
type NopSurface struct{}

func (NopSurface) Show(context.Context, State) error { return nil }

// Job performs one collection and returns the number of entries saved.
// It calls report as the loop progresses.
type Job func(ctx context.Context, report func(collect.Progress)) (int, error)

// Guard lets one Job run at a time and keeps the surface in step: working
// while running, then saved (restored after RestoreDelay) or failed
// (restored immediately).
type Guard struct {
	surface      Surface
	restoreDelay time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	gen     uint64 // bumped per run so a stale restore timer is a no-op
	timer   *time.Timer
	pending Surface // surface the timer will restore
}

// NewGuard creates a Guard. A nil surface is replaced with NopSurface.
func NewGuard(surface Surface, restoreDelay time.Duration, logger *slog.Logger) *Guard {
	if surface == nil {
		surface = NopSurface{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{surface: surface, restoreDelay: restoreDelay, logger: logger}
}

// Running reports whether a run is in progress.
func (g *Guard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Run executes job on the guard's own surface. See RunOn.
func (g *Guard) Run(ctx context.Context, job Job) error {
	return g.RunOn(ctx, g.surface, job)
}

// RunOn executes job unless another run is active, in which case it
// returns ErrBusy without touching any surface. States for this run go to
// surface, so several triggers (a page button, the HTTP API) can share one
// guard. The job's error is returned as is.
func (g *Guard) RunOn(ctx context.Context, surface Surface, job Job) error {
	if surface == nil {
		surface = NopSurface{}
	}

	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return ErrBusy
	}
	g.running = true
	g.gen++
	gen := g.gen
	var orphan Surface
	if g.timer != nil {
		if g.timer.Stop() && g.pending != surface {
			orphan = g.pending
		}
		g.timer, g.pending = nil, nil
	}
	g.mu.Unlock()

	// A pending restore on another surface would otherwise never fire.
	if orphan != nil {
		g.show(ctx, orphan, State{Kind: Idle})
	}
	g.show(ctx, surface, State{Kind: Working})

	n, err := g.runJob(ctx, surface, job)

	// The final states are shown before the guard is released so a new
	// run cannot be overwritten by this one's outcome.
	defer func() {
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
	}()

	if err != nil {
		g.show(ctx, surface, State{Kind: Failed, Message: FailureMessage(err)})
		g.show(ctx, surface, State{Kind: Idle})
		return err
	}

	g.show(ctx, surface, State{Kind: Saved, Entries: n})
	g.scheduleRestore(surface, gen)
	return nil
}

// runJob isolates the job so a panic still releases the guard and resets
// the surface.
func (g *Guard) runJob(ctx context.Context, surface Surface, job Job) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger: job panicked: %v", r)
		}
	}()
	return job(ctx, func(p collect.Progress) {
		g.show(ctx, surface, State{Kind: Working, Percent: p.Percent(), Entries: p.Entries})
	})
}

func (g *Guard) scheduleRestore(surface Surface, gen uint64) {
	if g.restoreDelay <= 0 {
		g.show(context.Background(), surface, State{Kind: Idle})
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = surface
	g.timer = time.AfterFunc(g.restoreDelay, func() {
		// Held across the draw: a run starting now waits, then paints
		// Working over this Idle rather than under it.
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen != gen || g.running {
			return
		}
		g.timer, g.pending = nil, nil
		g.show(context.Background(), surface, State{Kind: Idle})
	})
}

func (g *Guard) show(ctx context.Context, surface Surface, s State) {
	if err := surface.Show(ctx, s); err != nil {
		g.logger.Warn("trigger: update surface failed", "kind", s.Kind, "error", err)
	}
}

// FailureMessage is the user-facing text for a failed run.
func FailureMessage(err error) string {
	switch {
	case collect.IsMissing(err):
		return "Cannot find transcript container!"
	case collect.IsEmpty(err):
		return "No transcript entries found. Please make sure transcript is visible."
	default:
		return fmt.Sprintf("Transcript extraction failed: %v", err)
	}
}
