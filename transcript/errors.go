package transcript

import (
	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
	"github.com/hazyhaar/streamscribe/transcript/internal/trigger"
)

var (
	// ErrMissingContainer: no transcript pane on the page.
	ErrMissingContainer = collect.ErrMissingContainer
	// ErrEmptyResult: the pane was found but yielded no entries.
	ErrEmptyResult = collect.ErrEmptyResult
	// ErrBusy: another run is in progress on this Extractor.
	ErrBusy = trigger.ErrBusy
)
