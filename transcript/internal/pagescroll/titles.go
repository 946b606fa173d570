package pagescroll

import (
	"context"

	"github.com/go-rod/rod"
)

// Titles reads title candidates from a Rod page. It implements
// document.TitleSource.
type Titles struct {
	Page            *rod.Page
	HeadingSelector string // e.g. "h1"
}

// Heading returns the heading's textContent, or "" when absent.
func (t Titles) Heading(ctx context.Context) (string, error) {
	if t.HeadingSelector == "" {
		return "", nil
	}
	ok, el, err := t.Page.Context(ctx).Has(t.HeadingSelector)
	if err != nil || !ok {
		return "", err
	}
	res, err := el.Context(ctx).Eval(`() => this.textContent || ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// DocumentTitle returns document.title.
func (t Titles) DocumentTitle(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.title`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}
