package collect

import (
	"context"
	"errors"
)

// ErrMissingContainer is returned when no scrollable transcript container
// can be located. No iteration is attempted.
var ErrMissingContainer = errors.New("collect: transcript container not found")

// ErrEmptyResult is returned when a run completes without collecting a
// single entry.
var ErrEmptyResult = errors.New("collect: no transcript entries found")

// Metrics is a snapshot of a container's scroll geometry, in pixels.
type Metrics struct {
	Offset  float64 // scrollTop
	Extent  float64 // scrollHeight
	Visible float64 // clientHeight
}

// AtBottom reports whether the visible window reaches the end of the
// scrollable extent, within tolerance pixels.
func (m Metrics) AtBottom(tolerance float64) bool {
	return m.Offset+m.Visible >= m.Extent-tolerance
}

// Row is one currently rendered list row. Either field may be empty when
// the row has not finished rendering.
type Row struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Container is a scrollable, virtualized list. Implementations exist for a
// live Chrome element and for a parsed HTML snapshot.
type Container interface {
	Metrics(ctx context.Context) (Metrics, error)
	ScrollTo(ctx context.Context, offset float64) error
	ScrollBy(ctx context.Context, delta float64) error
	Rows(ctx context.Context) ([]Row, error)
}

// Locator finds the container to collect from. It returns
// ErrMissingContainer (possibly wrapped) when there is none.
type Locator interface {
	Locate(ctx context.Context) (Container, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (Container, error)

// Locate calls f(ctx).
func (f LocatorFunc) Locate(ctx context.Context) (Container, error) { return f(ctx) }
