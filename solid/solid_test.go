package solid

import (
	"bytes"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
)

func buildInnerEntry(t *testing.T, path, payload string) *entry.Entry {
	t.Helper()
	b, err := entry.NewFile(path, entry.WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSolidBlockRoundTripZstd(t *testing.T) {
	t.Parallel()

	sw, err := NewWriter(entry.WriteOptions{Compression: pna.CompressionZstd})
	if err != nil {
		t.Fatal(err)
	}
	if err := sw.Add(buildInnerEntry(t, "a.txt", "hello")); err != nil {
		t.Fatal(err)
	}
	if err := sw.Add(buildInnerEntry(t, "b.txt", "world")); err != nil {
		t.Fatal(err)
	}
	block, err := sw.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cw := chunk.NewWriter(&buf)
	if err := Encode(block, cw); err != nil {
		t.Fatal(err)
	}

	cr := chunk.NewReader(&buf)
	sr, err := Decode(cr, entry.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for {
		er, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		r, err := er.Reader(entry.ReadOptions{})
		if err != nil {
			t.Fatal(err)
		}
		payload, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, string(payload))
	}

	if len(got) != 2 || got[0] != "hello" || got[1] != "world" {
		t.Errorf("got %v, want [hello world]", got)
	}
}

func TestSolidBlockRejectsInnerEntryWithEncryption(t *testing.T) {
	t.Parallel()

	sw, err := NewWriter(entry.WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	b, err := entry.NewFile("a.txt", entry.WriteOptions{
		Compression: pna.CompressionStore,
		Encryption:  pna.EncryptionAes256,
		CipherMode:  pna.CipherModeCtr,
		Password:    "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := sw.Add(e); err == nil {
		t.Error("expected an error adding an encrypted inner entry to a solid block")
	}
}
