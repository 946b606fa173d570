// Package collect implements the scroll-and-collect loop that reassembles a
// virtualized list into a deduplicated, ordered set of entries.
//
// Virtualized lists only render the rows near the current scroll position,
// so no single DOM read contains the whole transcript. The loop scrolls in
// fixed steps, waits for the list to render, and merges whatever is visible
// into an Accumulator keyed by the row label.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Outcome describes why a run stopped.
type Outcome string

const (
	// OutcomeSettled: no new entries and no forward scroll for
	// StagnationLimit consecutive iterations.
	OutcomeSettled Outcome = "settled"
	// OutcomeBottom: the container reached its bottom and stayed stagnant
	// for BottomStagnationLimit iterations.
	OutcomeBottom Outcome = "bottom"
	// OutcomeIterationCap: MaxIterations was reached. The result is partial.
	OutcomeIterationCap Outcome = "iteration_cap"
)

// Config tunes the loop. Zero values take the defaults below, which were
// measured against the Microsoft Stream transcript pane.
type Config struct {
	// ScrollIncrement is the per-iteration scroll step in pixels. Default: 300.
	ScrollIncrement float64
	// StartDelay is the pause after resetting to the top. Default: 1s.
	StartDelay time.Duration
	// SettleDelay is the pause after each scroll step. Default: 700ms.
	SettleDelay time.Duration
	// BottomDelay is the pause before re-sampling at the bottom. Default: 1.5s.
	BottomDelay time.Duration
	// BottomTolerance is the pixel slack for bottom detection. Default: 20.
	BottomTolerance float64
	// MinTextLength: rows with text of this many characters or fewer are
	// skipped. Zero means the default of 3; a negative value keeps every
	// row with non-empty text.
	MinTextLength int
	// StagnationLimit ends the run after this many stagnant iterations. Default: 15.
	StagnationLimit int
	// BottomStagnationLimit ends the run at the bottom. Default: 5.
	BottomStagnationLimit int
	// MaxIterations is the hard cap. Default: 500.
	MaxIterations int

	// OnProgress, if set, is called once per iteration.
	OnProgress func(Progress)
	// Sleep pauses for d. Default: a timer that honours ctx.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ScrollIncrement <= 0 {
		c.ScrollIncrement = 300
	}
	if c.StartDelay <= 0 {
		c.StartDelay = time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 700 * time.Millisecond
	}
	if c.BottomDelay <= 0 {
		c.BottomDelay = 1500 * time.Millisecond
	}
	if c.BottomTolerance <= 0 {
		c.BottomTolerance = 20
	}
	if c.MinTextLength == 0 {
		c.MinTextLength = 3
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 15
	}
	if c.BottomStagnationLimit <= 0 {
		c.BottomStagnationLimit = 5
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 500
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Progress is reported after each iteration's sample.
type Progress struct {
	Iteration  int
	Offset     float64
	Extent     float64 // extent measured when the run started
	Entries    int
	New        int
	Stagnation int
}

// Percent is the scroll position as a share of the initial extent, capped
// at 95 so that 100 is left for completion.
func (p Progress) Percent() int {
	if p.Extent <= 0 {
		return 0
	}
	return int(math.Min(95, math.Round(p.Offset/p.Extent*100)))
}

// Result is the outcome of one run.
type Result struct {
	Entries    *Accumulator
	Outcome    Outcome
	Iterations int
}

// Partial reports whether the run was cut short by the iteration cap.
func (r *Result) Partial() bool { return r.Outcome == OutcomeIterationCap }

// Collect locates the container and runs the loop on it. It returns
// ErrMissingContainer when loc finds nothing and ErrEmptyResult (with the
// non-nil Result) when the run collects no entries.
func Collect(ctx context.Context, loc Locator, cfg Config) (*Result, error) {
	c, err := loc.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrMissingContainer
	}
	res, err := Run(ctx, c, cfg)
	if err != nil {
		return nil, err
	}
	if res.Entries.Len() == 0 {
		return res, ErrEmptyResult
	}
	return res, nil
}

// Run drives c from the top until one of the termination conditions holds.
// It mutates the scroll offset of c and nothing else.
func Run(ctx context.Context, c Container, cfg Config) (*Result, error) {
	cfg.defaults()
	log := cfg.Logger

	if err := c.ScrollTo(ctx, 0); err != nil {
		return nil, fmt.Errorf("collect: reset scroll: %w", err)
	}
	if err := cfg.Sleep(ctx, cfg.StartDelay); err != nil {
		return nil, err
	}

	start, err := c.Metrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: metrics: %w", err)
	}
	log.Debug("collect: starting", "extent", start.Extent, "visible", start.Visible)

	acc := NewAccumulator()
	res := &Result{Entries: acc, Outcome: OutcomeSettled}

	var (
		maxOffset  float64
		stagnation int
	)

	for stagnation < cfg.StagnationLimit {
		res.Iterations++

		added, err := sample(ctx, c, acc, cfg.MinTextLength)
		if err != nil {
			return nil, err
		}

		m, err := c.Metrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect: metrics: %w", err)
		}

		if added == 0 {
			stagnation++
		} else {
			stagnation = 0
		}
		// Forward scroll counts as progress even when rendering lags.
		if m.Offset > maxOffset {
			maxOffset = m.Offset
			stagnation = 0
		}

		p := Progress{
			Iteration:  res.Iterations,
			Offset:     m.Offset,
			Extent:     start.Extent,
			Entries:    acc.Len(),
			New:        added,
			Stagnation: stagnation,
		}
		if cfg.OnProgress != nil {
			cfg.OnProgress(p)
		}
		log.Debug("collect: iteration",
			"iteration", p.Iteration, "offset", m.Offset, "extent", m.Extent,
			"new", added, "total", p.Entries)

		if m.AtBottom(cfg.BottomTolerance) {
			log.Debug("collect: at bottom, waiting for trailing rows")
			if err := cfg.Sleep(ctx, cfg.BottomDelay); err != nil {
				return nil, err
			}
			if _, err := sample(ctx, c, acc, cfg.MinTextLength); err != nil {
				return nil, err
			}
			if stagnation >= cfg.BottomStagnationLimit {
				res.Outcome = OutcomeBottom
				break
			}
		}

		if err := c.ScrollBy(ctx, cfg.ScrollIncrement); err != nil {
			return nil, fmt.Errorf("collect: scroll: %w", err)
		}
		if err := cfg.Sleep(ctx, cfg.SettleDelay); err != nil {
			return nil, err
		}

		if res.Iterations >= cfg.MaxIterations {
			res.Outcome = OutcomeIterationCap
			log.Warn("collect: iteration cap reached", "iterations", res.Iterations, "entries", acc.Len())
			break
		}
	}

	log.Info("collect: complete",
		"outcome", res.Outcome, "iterations", res.Iterations, "entries", acc.Len())
	return res, nil
}

// sample merges the currently rendered rows into acc and returns how many
// new keys were added.
func sample(ctx context.Context, c Container, acc *Accumulator, minLen int) (int, error) {
	rows, err := c.Rows(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect: rows: %w", err)
	}
	added := 0
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		text := strings.TrimSpace(r.Text)
		if key == "" || text == "" || utf8.RuneCountInString(text) <= minLen {
			continue
		}
		if acc.Put(key, text) {
			added++
		}
	}
	return added, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsMissing reports whether err means no container was found.
func IsMissing(err error) bool { return errors.Is(err, ErrMissingContainer) }

// IsEmpty reports whether err means the run found nothing.
func IsEmpty(err error) bool { return errors.Is(err, ErrEmptyResult) }
