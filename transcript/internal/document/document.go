// Package document renders a collected transcript into the plain-text
// layout users download, and derives its filename.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
)

// DefaultTimeLayout mimics the en-US Date.toLocaleString() format.
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

const rule = 80

// Document is a finished transcript ready to be written to a sink.
type Document struct {
	RunID       string          `json:"run_id"`
	SourceURL   string          `json:"source_url,omitempty"`
	Title       string          `json:"title"`
	ExtractedAt time.Time       `json:"extracted_at"`
	Entries     []collect.Entry `json:"entries"`
	Partial     bool            `json:"partial"`
	TimeLayout  string          `json:"-"`
}

// Filename returns the sanitized download name for d.
func (d *Document) Filename() string {
	return Filename(d.Title)
}

// DurationMinutes is the rough content length, counting one entry per
// second of speech.
func (d *Document) DurationMinutes() int {
	return len(d.Entries) / 60
}

// Render produces the text file body.
func (d *Document) Render() []byte {
	layout := d.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "TRANSCRIPT: %s\n", d.Title)
	fmt.Fprintf(&b, "Extracted: %s\n", d.ExtractedAt.Format(layout))
	fmt.Fprintf(&b, "Total entries: %d\n", len(d.Entries))
	fmt.Fprintf(&b, "Duration: ~%d minutes of content\n", d.DurationMinutes())
	b.WriteString(strings.Repeat("=", rule))
	b.WriteString("\n\n")

	for _, e := range d.Entries {
		b.WriteString(e.Key)
		b.WriteByte('\n')
		b.WriteString(e.Text)
		b.WriteString("\n\n")
	}
	return b.Bytes()
}
