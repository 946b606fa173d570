package transcript

import (
	"context"
	"net/http"

	"github.com/hazyhaar/streamscribe/transcript/internal/server"
)

// Handler returns the HTTP API backed by e: POST /extract and GET /health.
func (e *Extractor) Handler() http.Handler {
	return server.New(e, server.Config{RunTimeout: e.cfg.Server.RunTimeout, Logger: e.logger})
}

// Serve runs the HTTP API on addr until ctx is done.
func (e *Extractor) Serve(ctx context.Context, addr string) error {
	return server.New(e, server.Config{RunTimeout: e.cfg.Server.RunTimeout, Logger: e.logger}).ListenAndServe(ctx, addr)
}
