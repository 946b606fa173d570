package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
	"github.com/hazyhaar/streamscribe/transcript/internal/config"
	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

// run is one collection: scroll the container, build the document, render
// it and hand it to the sinks. Nothing is delivered when collection fails.
func (e *Extractor) run(
	ctx context.Context,
	loc collect.Locator,
	titles document.TitleSource,
	sourceURL string,
	sleep func(context.Context, time.Duration) error,
	report func(collect.Progress),
) (*document.Document, []byte, error) {
	runID := e.newID()
	log := e.logger.With("run_id", runID)

	cc := collectConfig(e.cfg.Collect)
	cc.OnProgress = report
	cc.Sleep = sleep
	cc.Logger = log

	log.Info("transcript: run started", "url", sourceURL)
	res, err := collect.Collect(ctx, loc, cc)
	if err != nil {
		log.Warn("transcript: run failed", "error", err)
		return nil, nil, err
	}

	doc := &document.Document{
		RunID:       runID,
		SourceURL:   sourceURL,
		Title:       e.titles.Detect(ctx, titles),
		ExtractedAt: e.now(),
		Entries:     res.Entries.Entries(),
		Partial:     res.Partial(),
		TimeLayout:  e.cfg.Output.TimeLayout,
	}
	body := doc.Render()

	log.Info("transcript: collected",
		"title", doc.Title,
		"entries", len(doc.Entries),
		"iterations", res.Iterations,
		"outcome", res.Outcome,
		"partial", doc.Partial,
	)

	if err := e.sinkR.Send(ctx, doc, body); err != nil {
		return doc, body, fmt.Errorf("transcript: deliver: %w", err)
	}
	return doc, body, nil
}

func collectConfig(c config.CollectConfig) collect.Config {
	return collect.Config{
		ScrollIncrement:       c.ScrollIncrement,
		StartDelay:            c.StartDelay,
		SettleDelay:           c.SettleDelay,
		BottomDelay:           c.BottomDelay,
		BottomTolerance:       c.BottomTolerance,
		MinTextLength:         c.MinTextLength,
		StagnationLimit:       c.StagnationLimit,
		BottomStagnationLimit: c.BottomStagnationLimit,
		MaxIterations:         c.MaxIterations,
	}
}
