package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

func testDoc() *document.Document {
	return &document.Document{
		RunID:       "run-1",
		Title:       "Team: sync",
		ExtractedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Entries:     []collect.Entry{{Key: "0:00", Text: "Hello there"}},
	}
}

func TestFile_Send(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	f := NewFile(dir, nil)
	doc := testDoc()
	body := doc.Render()

	if err := f.Send(context.Background(), doc, body); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "Team_sync_transcript.txt")
	if f.Path(doc) != path {
		t.Errorf("Path: got %q, want %q", f.Path(doc), path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("content mismatch:\n%s", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestStdout_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	if err := s.Send(context.Background(), testDoc(), []byte("body")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "body" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWebhook_Headers(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	if err := wh.Send(context.Background(), testDoc(), []byte("TRANSCRIPT: x\n")); err != nil {
		t.Fatal(err)
	}
	if string(gotBody) != "TRANSCRIPT: x\n" {
		t.Errorf("body: got %q", gotBody)
	}
	if gotHeader.Get(HeaderFilename) != "Team_sync_transcript.txt" {
		t.Errorf("filename header: got %q", gotHeader.Get(HeaderFilename))
	}
	if gotHeader.Get(HeaderEntries) != "1" || gotHeader.Get(HeaderPartial) != "false" {
		t.Errorf("headers: got %v", gotHeader)
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testDoc(), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls: got %d, want 3", calls.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(1), WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testDoc(), []byte("x")); err == nil {
		t.Fatal("expected error")
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Send(context.Context, *document.Document, []byte) error {
	f.calls++
	return errors.New("disk full")
}
func (f *failingSink) Close() error { return nil }

func TestRouter_FanOutContinuesPastErrors(t *testing.T) {
	bad := &failingSink{}
	var delivered []byte
	good := NewCallback(func(_ context.Context, _ *document.Document, body []byte) error {
		delivered = body
		return nil
	})

	r := NewRouter(nil, bad, good)
	if r.Len() != 2 {
		t.Fatalf("Len: got %d", r.Len())
	}
	err := r.Send(context.Background(), testDoc(), []byte("payload"))
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("err: got %v, want first sink error", err)
	}
	if bad.calls != 1 || string(delivered) != "payload" {
		t.Errorf("fan-out incomplete: bad=%d delivered=%q", bad.calls, delivered)
	}
}

func TestWebhook_NoRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(0), WithWebhookTimeout(time.Second))
	if err := wh.Send(context.Background(), testDoc(), []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", calls.Load())
	}
}
