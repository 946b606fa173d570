// Package pagescroll adapts a live Chrome element to collect.Container.
// All DOM access goes through small JS functions evaluated on the element,
// so the Go side only ever sees JSON.
package pagescroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
)

// Selectors describe the transcript list.
type Selectors struct {
	Containers []string // candidate scroll containers, tried in order
	Row        string   // a rendered row, relative to the container
	Key        string   // the row label, relative to the row
	Text       string   // the caption text, relative to the row
}

const metricsJS = `() => JSON.stringify({
	offset: this.scrollTop,
	extent: this.scrollHeight,
	visible: this.clientHeight
})`

const rowsJS = `(row, key, text) => JSON.stringify(
	Array.from(this.querySelectorAll(row)).map(item => {
		const k = item.querySelector(key);
		const t = item.querySelector(text);
		if (!k || !t) return null;
		return {key: k.textContent.trim(), text: t.textContent.trim()};
	}).filter(Boolean)
)`

// Container is a scrollable element in a Rod page.
type Container struct {
	el   *rod.Element
	sels Selectors
}

// Locator finds the first matching container on a page without waiting.
type Locator struct {
	Page      *rod.Page
	Selectors Selectors
}

// Locate implements collect.Locator.
func (l Locator) Locate(ctx context.Context) (collect.Container, error) {
	if l.Page == nil {
		return nil, collect.ErrMissingContainer
	}
	page := l.Page.Context(ctx)
	for _, sel := range l.Selectors.Containers {
		ok, el, err := page.Has(sel)
		if err != nil {
			return nil, fmt.Errorf("pagescroll: query %q: %w", sel, err)
		}
		if ok {
			return &Container{el: el, sels: l.Selectors}, nil
		}
	}
	return nil, fmt.Errorf("pagescroll: tried %v: %w", l.Selectors.Containers, collect.ErrMissingContainer)
}

// ErrPanelTimeout is returned by WaitPanel when nothing matched in time.
var ErrPanelTimeout = errors.New("pagescroll: transcript panel did not appear")

// WaitPanel polls page every interval until one of selectors matches,
// giving up after timeout. The transcript pane is rendered some time after
// navigation, so Locate alone would usually see nothing.
func WaitPanel(ctx context.Context, page *rod.Page, selectors []string, interval, timeout time.Duration) error {
	if page == nil || len(selectors) == 0 {
		return nil
	}
	return poll(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		p := page.Context(ctx)
		for _, sel := range selectors {
			ok, _, err := p.Has(sel)
			if err != nil {
				return false, fmt.Errorf("pagescroll: query %q: %w", sel, err)
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	})
}

// poll runs check immediately and then every interval until it reports
// true, fails, or timeout elapses. A non-positive timeout checks once.
func poll(ctx context.Context, interval, timeout time.Duration, check func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := check(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrPanelTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Metrics implements collect.Container.
func (c *Container) Metrics(ctx context.Context) (collect.Metrics, error) {
	res, err := c.el.Context(ctx).Eval(metricsJS)
	if err != nil {
		return collect.Metrics{}, fmt.Errorf("pagescroll: metrics: %w", err)
	}
	return decodeMetrics(res.Value.Str())
}

// ScrollTo implements collect.Container.
func (c *Container) ScrollTo(ctx context.Context, offset float64) error {
	_, err := c.el.Context(ctx).Eval(`(y) => { this.scrollTop = y; }`, offset)
	if err != nil {
		return fmt.Errorf("pagescroll: scroll to: %w", err)
	}
	return nil
}

// ScrollBy implements collect.Container.
func (c *Container) ScrollBy(ctx context.Context, delta float64) error {
	_, err := c.el.Context(ctx).Eval(`(dy) => { this.scrollBy(0, dy); }`, delta)
	if err != nil {
		return fmt.Errorf("pagescroll: scroll by: %w", err)
	}
	return nil
}

// Rows implements collect.Container.
func (c *Container) Rows(ctx context.Context) ([]collect.Row, error) {
	res, err := c.el.Context(ctx).Eval(rowsJS, c.sels.Row, c.sels.Key, c.sels.Text)
	if err != nil {
		return nil, fmt.Errorf("pagescroll: rows: %w", err)
	}
	return decodeRows(res.Value.Str())
}

func decodeMetrics(raw string) (collect.Metrics, error) {
	var m struct {
		Offset  float64 `json:"offset"`
		Extent  float64 `json:"extent"`
		Visible float64 `json:"visible"`
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return collect.Metrics{}, fmt.Errorf("pagescroll: decode metrics: %w", err)
	}
	return collect.Metrics{Offset: m.Offset, Extent: m.Extent, Visible: m.Visible}, nil
}

func decodeRows(raw string) ([]collect.Row, error) {
	var rows []collect.Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("pagescroll: decode rows: %w", err)
	}
	return rows, nil
}
