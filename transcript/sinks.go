package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/streamscribe/transcript/internal/document"
	"github.com/hazyhaar/streamscribe/transcript/internal/sink"
)

// Document is a finished transcript.
type Document = document.Document

// Sink is the output interface for finished transcripts.
type Sink = sink.Sink

// NewFileSink writes transcripts into dir.
func NewFileSink(dir string, logger *slog.Logger) Sink {
	return sink.NewFile(dir, logger)
}

// NewStdoutSink writes the rendered text to w (os.Stdout when nil).
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry, configured from
// sc (url, retries, backoff, timeout). Zero fields keep the sink defaults.
func NewWebhookSink(sc SinkConfig, logger *slog.Logger) Sink {
	opts := []sink.WebhookOption{sink.WithWebhookLogger(logger)}
	if sc.Retries != nil {
		opts = append(opts, sink.WithWebhookRetries(*sc.Retries))
	}
	if sc.Backoff > 0 {
		opts = append(opts, sink.WithWebhookBackoff(sc.Backoff))
	}
	if sc.Timeout > 0 {
		opts = append(opts, sink.WithWebhookTimeout(sc.Timeout))
	}
	return sink.NewWebhook(sc.URL, opts...)
}

// NewCallbackSink delivers transcripts to an in-process function.
func NewCallbackSink(fn func(ctx context.Context, doc *Document, body []byte) error) Sink {
	return sink.NewCallback(fn)
}

// SinksFromConfig builds the sinks a configuration names. With none
// configured, transcripts go to a file sink in the output directory.
func SinksFromConfig(cfg *Config, logger *slog.Logger) ([]Sink, error) {
	var sinks []Sink
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "file":
			sinks = append(sinks, NewFileSink(sc.Dir, logger))
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(sc, logger))
		default:
			return nil, fmt.Errorf("transcript: unknown sink type %q", sc.Type)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NewFileSink(cfg.Output.Dir, logger))
	}
	return sinks, nil
}
