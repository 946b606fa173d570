// Command streamscribe saves the full transcript of a Microsoft Stream video.
//
// Usage:
//
//	streamscribe -url https://contoso.sharepoint.com/...   # extract once and exit
//	streamscribe -watch -url https://...                   # inject the page button, extract on click
//	streamscribe -html saved.html                          # read a saved page, no browser
//	streamscribe -serve :8080                              # POST /extract {"url": "..."}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/streamscribe/transcript"
)

type options struct {
	configPath  string
	url         string
	watch       bool
	htmlPath    string
	serveAddr   string
	outDir      string
	stdout      bool
	remote      string
	userDataDir string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to streamscribe.yaml config file")
	flag.StringVar(&opts.url, "url", "", "video page URL")
	flag.BoolVar(&opts.watch, "watch", false, "open -url in a visible browser and extract on button click")
	flag.StringVar(&opts.htmlPath, "html", "", "extract from a saved HTML page instead of a live browser")
	flag.StringVar(&opts.serveAddr, "serve", "", "serve POST /extract on this address")
	flag.StringVar(&opts.outDir, "out", "", "output directory (overrides config)")
	flag.BoolVar(&opts.stdout, "stdout", false, "write the transcript to stdout instead of a file")
	flag.StringVar(&opts.remote, "remote", "", "WebSocket URL of a running Chrome (overrides config)")
	flag.StringVar(&opts.userDataDir, "user-data-dir", "", "Chrome profile directory, for an existing SharePoint login")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("streamscribe: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.url == "" && opts.htmlPath == "" && opts.serveAddr == "" {
		opts.serveAddr = cfg.Server.Addr
	}
	if opts.url == "" && opts.htmlPath == "" && opts.serveAddr == "" {
		fmt.Fprintln(os.Stderr, "usage: streamscribe [-config <file>] -url <url> [-watch] | -html <file> | -serve <addr>")
		os.Exit(2)
	}

	sinks, err := buildSinks(cfg, opts, logger)
	if err != nil {
		return err
	}

	ex, err := transcript.New(cfg, logger, sinks...)
	if err != nil {
		return err
	}

	if opts.htmlPath != "" {
		return runHTML(ctx, ex, opts.htmlPath, opts.url)
	}

	if err := ex.Start(ctx); err != nil {
		return err
	}
	defer ex.Stop()

	switch {
	case opts.serveAddr != "":
		return ex.Serve(ctx, opts.serveAddr)
	case opts.watch:
		return ex.Watch(ctx, opts.url)
	default:
		doc, _, err := ex.Extract(ctx, opts.url)
		if err != nil {
			return describe(err)
		}
		logger.Info("streamscribe: saved", "file", doc.Filename(), "entries", len(doc.Entries), "partial", doc.Partial)
		return nil
	}
}

func runHTML(ctx context.Context, ex *transcript.Extractor, path, sourceURL string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := ex.ExtractHTML(ctx, f, sourceURL); err != nil {
		return describe(err)
	}
	return nil
}

func loadConfig(opts options) (*transcript.Config, error) {
	cfg := transcript.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = transcript.LoadConfigFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if opts.watch {
		cfg.Browser.Stealth = "headful"
	}
	if opts.remote != "" {
		cfg.Browser.Remote = opts.remote
	}
	if opts.userDataDir != "" {
		cfg.Browser.UserDataDir = opts.userDataDir
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
		for i := range cfg.Sinks {
			if cfg.Sinks[i].Type == "file" {
				cfg.Sinks[i].Dir = opts.outDir
			}
		}
	}
	return cfg, nil
}

func buildSinks(cfg *transcript.Config, opts options, logger *slog.Logger) ([]transcript.Sink, error) {
	if opts.stdout {
		return []transcript.Sink{transcript.NewStdoutSink(nil)}, nil
	}
	return transcript.SinksFromConfig(cfg, logger)
}

// describe maps the sentinel errors to the messages users know.
func describe(err error) error {
	switch {
	case errors.Is(err, transcript.ErrMissingContainer):
		return fmt.Errorf("cannot find transcript container (is the Transcript pane open?): %w", err)
	case errors.Is(err, transcript.ErrEmptyResult):
		return fmt.Errorf("no transcript entries found, make sure the transcript is visible: %w", err)
	}
	return err
}
