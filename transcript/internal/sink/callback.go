package sink

import (
	"context"

	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

// Func is called for each document.
type Func func(ctx context.Context, doc *document.Document, body []byte) error

// Callback delivers documents via a Go function call, for programs that
// embed the Extractor.
type Callback struct {
	fn Func
}

// NewCallback creates a Callback sink. A nil fn drops every document.
func NewCallback(fn Func) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, doc *document.Document, body []byte) error {
	if c.fn != nil {
		return c.fn(ctx, doc, body)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
