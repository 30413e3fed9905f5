// Package asyncarchive wraps archive.Writer and archive.Reader for callers
// that want to drive the same state machines from a goroutine with
// cancellation, without a dedicated async runtime: each method here
// accepts a context.Context and returns promptly if it is canceled while
// blocked on I/O.
package asyncarchive

import (
	"context"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"golang.org/x/xerrors"
)

// Writer adapts archive.Writer to context-aware callers.
type Writer struct {
	aw *archive.Writer
}

// NewWriter wraps w as an async archive writer for the first volume.
func NewWriter(w io.Writer) *Writer {
	return &Writer{aw: archive.NewWriter(w)}
}

// WriteHeaderContext is archive.Writer.WriteHeader, returning early if ctx
// is canceled before the (synchronous, typically fast) write completes.
func (w *Writer) WriteHeaderContext(ctx context.Context) error {
	return runContext(ctx, w.aw.WriteHeader)
}

// AddEntryContext is archive.Writer.AddEntry, returning early if ctx is
// canceled before the write completes.
func (w *Writer) AddEntryContext(ctx context.Context, e *entry.Entry) error {
	return runContext(ctx, func() error { return w.aw.AddEntry(e) })
}

// FinalizeContext is archive.Writer.Finalize, returning early if ctx is
// canceled before the write completes.
func (w *Writer) FinalizeContext(ctx context.Context) error {
	return runContext(ctx, w.aw.Finalize)
}

// Reader adapts archive.Reader to context-aware callers.
type Reader struct {
	ar *archive.Reader
}

// OpenContext is archive.Open, returning early if ctx is canceled before
// the magic and header have been validated.
func OpenContext(ctx context.Context, r io.Reader, opts entry.ReadOptions) (*Reader, error) {
	var ar *archive.Reader
	err := runContext(ctx, func() error {
		var err error
		ar, err = archive.Open(r, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Reader{ar: ar}, nil
}

// NextContext is archive.Reader.Next, returning early if ctx is canceled
// before the next item has been decoded.
func (r *Reader) NextContext(ctx context.Context) (*archive.Item, error) {
	var item *archive.Item
	err := runContext(ctx, func() error {
		var err error
		item, err = r.ar.Next()
		return err
	})
	return item, err
}

// runContext checks ctx first, so an already-canceled context short
// circuits before doing any work, then races fn on its own goroutine
// against ctx.Done. fn keeps running after a cancellation is observed
// here; archive.Writer/Reader are not safe for concurrent use, so a
// caller that abandons a canceled call must not reuse the same Writer or
// Reader afterward.
func runContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return xerrors.Errorf("asyncarchive: %w", err)
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case <-ctx.Done():
		return xerrors.Errorf("asyncarchive: %w", ctx.Err())
	case err := <-done:
		return err
	}
}
