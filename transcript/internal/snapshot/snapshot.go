// Package snapshot reads a transcript from saved HTML ("Save page as…")
// instead of a live tab. A snapshot holds only the rows that were rendered
// when it was saved, so it behaves as a container that is already at its
// bottom and never grows.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
)

// Selectors mirror pagescroll.Selectors.
type Selectors struct {
	Containers []string
	Row        string
	Key        string
	Text       string
	Heading    string
}

// Page is a parsed HTML document.
type Page struct {
	doc  *goquery.Document
	sels Selectors
}

// Parse reads HTML from r.
func Parse(r io.Reader, sels Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse: %w", err)
	}
	return &Page{doc: doc, sels: sels}, nil
}

// Locate implements collect.Locator.
func (p *Page) Locate(context.Context) (collect.Container, error) {
	for _, sel := range p.sels.Containers {
		if s := p.doc.Find(sel).First(); s.Length() > 0 {
			return &Container{sel: s, sels: p.sels}, nil
		}
	}
	return nil, fmt.Errorf("snapshot: tried %v: %w", p.sels.Containers, collect.ErrMissingContainer)
}

// Heading implements document.TitleSource.
func (p *Page) Heading(context.Context) (string, error) {
	if p.sels.Heading == "" {
		return "", nil
	}
	return p.doc.Find(p.sels.Heading).First().Text(), nil
}

// DocumentTitle implements document.TitleSource.
func (p *Page) DocumentTitle(context.Context) (string, error) {
	return p.doc.Find("title").First().Text(), nil
}

// Container is a static selection. Scrolling is a no-op.
type Container struct {
	sel  *goquery.Selection
	sels Selectors
}

// Metrics reports a container whose content fits its viewport.
func (c *Container) Metrics(context.Context) (collect.Metrics, error) {
	return collect.Metrics{Offset: 0, Extent: 0, Visible: 0}, nil
}

func (c *Container) ScrollTo(context.Context, float64) error { return nil }
func (c *Container) ScrollBy(context.Context, float64) error { return nil }

// Rows returns every row that has both a key and a text element.
func (c *Container) Rows(context.Context) ([]collect.Row, error) {
	var rows []collect.Row
	c.sel.Find(c.sels.Row).Each(func(_ int, item *goquery.Selection) {
		k := item.Find(c.sels.Key).First()
		t := item.Find(c.sels.Text).First()
		if k.Length() == 0 || t.Length() == 0 {
			return
		}
		rows = append(rows, collect.Row{
			Key:  strings.TrimSpace(k.Text()),
			Text: strings.TrimSpace(t.Text()),
		})
	})
	return rows, nil
}
