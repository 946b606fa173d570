package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/streamscribe/transcript/internal/document"
)

// File writes each document to <dir>/<doc.Filename()>, replacing any file
// of the same name.
type File struct {
	dir    string
	logger *slog.Logger
}

// NewFile creates a File sink. An empty dir means the working directory.
func NewFile(dir string, logger *slog.Logger) *File {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &File{dir: dir, logger: logger}
}

// Path returns where doc would be written.
func (f *File) Path(doc *document.Document) string {
	return filepath.Join(f.dir, doc.Filename())
}

func (f *File) Send(_ context.Context, doc *document.Document, body []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("file: mkdir: %w", err)
	}
	path := f.Path(doc)

	// Temp file + rename: the final name never holds a partial transcript.
	tmp, err := os.CreateTemp(f.dir, ".streamscribe-*")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file: rename: %w", err)
	}

	f.logger.Info("file: transcript saved", "path", path, "entries", len(doc.Entries))
	return nil
}

func (f *File) Close() error { return nil }
