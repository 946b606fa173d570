package sink

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

// Stdout writes the rendered text to an io.Writer (default os.Stdout).
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w}
}

func (s *Stdout) Send(_ context.Context, _ *document.Document, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(body)
	return err
}

func (s *Stdout) Close() error { return nil }
