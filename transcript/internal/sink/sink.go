// Package sink defines output backends for finished transcripts.
package sink

import (
	"context"

	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

// Sink is the output interface. body is doc rendered once by the caller so
// every sink writes identical bytes.
type Sink interface {
	Send(ctx context.Context, doc *document.Document, body []byte) error
	Close() error
}
