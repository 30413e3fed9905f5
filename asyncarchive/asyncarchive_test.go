package asyncarchive

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
)

func TestWriteReadRoundTripContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, err := entry.NewFile("hello.txt", entry.WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte("world")); err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	aw := NewWriter(&buf)
	if err := aw.WriteHeaderContext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := aw.AddEntryContext(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := aw.FinalizeContext(ctx); err != nil {
		t.Fatal(err)
	}

	ar, err := OpenContext(ctx, bytes.NewReader(buf.Bytes()), entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	item, err := ar.NextContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r, err := item.Entry.Reader(entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "world" {
		t.Errorf("got %q, want %q", got, "world")
	}
}

func TestCanceledContextShortCircuits(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	aw := NewWriter(&buf)
	if err := aw.WriteHeaderContext(ctx); err == nil {
		t.Error("expected an error from a canceled context")
	}
}
