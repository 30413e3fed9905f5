package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
)

func TestEmptyArchive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	aw := NewWriter(&buf)
	if err := aw.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := aw.Finalize(); err != nil {
		t.Fatal(err)
	}

	want := 8 + (4 + 4 + 8 + 4) + (4 + 4 + 0 + 4)
	if buf.Len() != want {
		t.Errorf("empty archive length = %d, want %d", buf.Len(), want)
	}

	ar, err := Open(bytes.NewReader(buf.Bytes()), entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.Next(); err != io.EOF {
		t.Errorf("Next() on empty archive = %v, want io.EOF", err)
	}
}

func TestSingleStoreFileRoundTrip(t *testing.T) {
	t.Parallel()

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
	if err := aw.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := aw.AddEntry(e); err != nil {
		t.Fatal(err)
	}
	if err := aw.Finalize(); err != nil {
		t.Fatal(err)
	}

	ar, err := Open(bytes.NewReader(buf.Bytes()), entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	item, err := ar.Next()
	if err != nil {
		t.Fatal(err)
	}
	if item.Entry == nil {
		t.Fatal("expected an entry item")
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
	if _, err := ar.Next(); err != io.EOF {
		t.Errorf("Next() after last entry = %v, want io.EOF", err)
	}
}

func TestAES256CTRRoundTripAndWrongPassword(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xAA}, 1024)
	b, err := entry.NewFile("data.bin", entry.WriteOptions{
		Compression: pna.CompressionStore,
		Encryption:  pna.EncryptionAes256,
		CipherMode:  pna.CipherModeCtr,
		Password:    "password",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write(payload); err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	aw := NewWriter(&buf)
	if err := aw.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := aw.AddEntry(e); err != nil {
		t.Fatal(err)
	}
	if err := aw.Finalize(); err != nil {
		t.Fatal(err)
	}

	ar, err := Open(bytes.NewReader(buf.Bytes()), entry.ReadOptions{Password: "password"})
	if err != nil {
		t.Fatal(err)
	}
	item, err := ar.Next()
	if err != nil {
		t.Fatal(err)
	}
	r, err := item.Entry.Reader(entry.ReadOptions{Password: "password"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("round trip mismatch")
	}

	ar2, err := Open(bytes.NewReader(buf.Bytes()), entry.ReadOptions{Password: "wrong"})
	if err != nil {
		t.Fatal(err)
	}
	item2, err := ar2.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := item2.Entry.Reader(entry.ReadOptions{Password: "wrong"}); !errors.Is(err, pna.ErrWrongPassword) {
		t.Errorf("wrong password = %v, want ErrWrongPassword", err)
	}
}

func TestCorruptFDATYieldsCorruptChunk(t *testing.T) {
	t.Parallel()

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
	if err := aw.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := aw.AddEntry(e); err != nil {
		t.Fatal(err)
	}
	if err := aw.Finalize(); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	idx := bytes.Index(raw, []byte("world"))
	if idx < 0 {
		t.Fatal("payload not found in raw archive bytes")
	}
	raw[idx] ^= 0xFF

	// The FDAT chunk's CRC covers its data, so the corruption is caught as
	// soon as that chunk is pulled off the stream, inside Next() itself.
	ar, err := Open(bytes.NewReader(raw), entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.Next(); !errors.Is(err, pna.ErrCorruptChunk) {
		t.Errorf("Next() = %v, want ErrCorruptChunk", err)
	}
}

func TestUnsafePathOnExtraction(t *testing.T) {
	t.Parallel()

	b, err := entry.NewFile("../escape.txt", entry.WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	aw := NewWriter(&buf)
	if err := aw.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := aw.AddEntry(e); err != nil {
		t.Fatal(err)
	}
	if err := aw.Finalize(); err != nil {
		t.Fatal(err)
	}

	ar, err := Open(bytes.NewReader(buf.Bytes()), entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	item, err := ar.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := item.Entry.Path(); !errors.Is(err, pna.ErrUnsafePath) {
		t.Errorf("Path() = %v, want ErrUnsafePath", err)
	}
}
