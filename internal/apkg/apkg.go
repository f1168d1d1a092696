// Package apkg bundles a collection database and its media into a zip
// archive in the layout the flashcard application imports.
package apkg

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/media"
)

const (
	// CollectionEntry is the archive name of the embedded database.
	CollectionEntry = "collection.anki2"
	// ManifestEntry is the archive name of the media manifest.
	ManifestEntry = "media"

	// DefaultTimeout bounds a single archive run.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrInvalidDatabaseFile is returned when the collection file is missing,
	// not a regular file, or empty.
	ErrInvalidDatabaseFile = errors.New("invalid database file")

	// ErrArchive is returned when the zip writer fails.
	ErrArchive = errors.New("archive failed")

	// ErrTimeout is returned when archiving exceeds its deadline.
	ErrTimeout = errors.New("archive timed out")
)

// MediaSource provides the audio entries and manifest for a package.
type MediaSource interface {
	Entries() []media.Entry
	Manifest() media.Manifest
}

// Builder writes packages.
type Builder struct {
	Timeout time.Duration
	Level   int
}

// NewBuilder returns a Builder with maximum compression.
func NewBuilder(timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Builder{Timeout: timeout, Level: flate.BestCompression}
}

// Build archives the database at dbPath together with the media of src.
func (b *Builder) Build(ctx context.Context, dbPath string, src MediaSource) ([]byte, error) {
	if err := checkDatabaseFile(dbPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := b.write(ctx, dbPath, src)
		done <- result{data, err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, b.timeout())
		}
		return res.data, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, b.timeout())
		}
		return nil, fmt.Errorf("%w: %w", ErrArchive, ctx.Err())
	}
}

func (b *Builder) timeout() time.Duration {
	if b.Timeout <= 0 {
		return DefaultTimeout
	}
	return b.Timeout
}

func (b *Builder) write(ctx context.Context, dbPath string, src MediaSource) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	level := b.Level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	if err := addFile(zw, CollectionEntry, dbPath); err != nil {
		return nil, err
	}

	for _, entry := range src.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(entry.Data) == 0 {
			continue
		}
		if err := addBytes(zw, fmt.Sprint(entry.Index), entry.Data); err != nil {
			return nil, err
		}
	}

	manifest, err := json.Marshal(src.Manifest())
	if err != nil {
		return nil, fmt.Errorf("%w: encoding media manifest: %w", ErrArchive, err)
	}
	if err := addBytes(zw, ManifestEntry, manifest); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing archive: %w", ErrArchive, err)
	}
	return buf.Bytes(), nil
}

func checkDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDatabaseFile, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidDatabaseFile, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidDatabaseFile, path)
	}
	return nil
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrArchive, path, err)
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrArchive, name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrArchive, name, err)
	}
	return nil
}

func addBytes(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrArchive, name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrArchive, name, err)
	}
	return nil
}
