package document

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DefaultFallbackTitle is used when the page offers no usable title.
const DefaultFallbackTitle = "Stream Video Transcript"

// DefaultStripPatterns remove the player branding from document titles.
var DefaultStripPatterns = []string{
	`(?i)\s*-\s*Microsoft Stream.*$`,
	`(?i)\s*-\s*Stream.*$`,
	`(?i)\.mp4$`,
}

// TitleSource exposes the two places a page title can come from.
type TitleSource interface {
	// Heading returns the text of the main page heading, or "".
	Heading(ctx context.Context) (string, error)
	// DocumentTitle returns the document's <title>, or "".
	DocumentTitle(ctx context.Context) (string, error)
}

// TitleRules configure title detection.
type TitleRules struct {
	Strip    []*regexp.Regexp
	Fallback string
}

// CompileTitleRules builds rules from regexp sources. Empty inputs take
// the defaults.
func CompileTitleRules(patterns []string, fallback string) (TitleRules, error) {
	if len(patterns) == 0 {
		patterns = DefaultStripPatterns
	}
	if fallback == "" {
		fallback = DefaultFallbackTitle
	}
	r := TitleRules{Fallback: fallback}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return TitleRules{}, fmt.Errorf("document: title pattern %q: %w", p, err)
		}
		r.Strip = append(r.Strip, re)
	}
	return r, nil
}

// DefaultTitleRules returns the rules for Microsoft Stream pages.
func DefaultTitleRules() TitleRules {
	r, _ := CompileTitleRules(nil, "")
	return r
}

// Detect tries the heading, then the stripped document title, then the
// fallback. Source errors count as "no title here".
func (r TitleRules) Detect(ctx context.Context, src TitleSource) string {
	if src != nil {
		if h, err := src.Heading(ctx); err == nil {
			if h = strings.TrimSpace(h); h != "" {
				return h
			}
		}
		if t, err := src.DocumentTitle(ctx); err == nil {
			if t = r.StripTitle(t); t != "" {
				return t
			}
		}
	}
	if r.Fallback == "" {
		return DefaultFallbackTitle
	}
	return r.Fallback
}

// StripTitle applies the strip patterns in order and trims the result.
func (r TitleRules) StripTitle(title string) string {
	for _, re := range r.Strip {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}
