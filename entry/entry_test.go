package entry

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/google/go-cmp/cmp"
)

// toReader concatenates an Entry's FDAT payload chunks into one io.Reader,
// standing in for what the archive layer would assemble from consecutive
// FDAT chunks.
func toReader(e *Entry) io.Reader {
	var buf bytes.Buffer
	for _, d := range e.Data {
		buf.Write(d)
	}
	return &buf
}

func TestFileRoundTripStoreNoEncryption(t *testing.T) {
	t.Parallel()

	b, err := NewFile("hello.txt", WriteOptions{Compression: pna.CompressionStore})
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

	r := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	pr, err := r.Reader(ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "world" {
		t.Errorf("got %q, want %q", got, "world")
	}
}

func TestFileRoundTripAES256CTR(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xAA}, 1024)
	b, err := NewFile("data.bin", WriteOptions{
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
	if e.PHSF == "" {
		t.Fatal("expected a phsf string for an encrypted entry")
	}

	r := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	pr, err := r.Reader(ReadOptions{Password: "password"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("round trip mismatch")
	}

	r2 := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	if _, err := r2.Reader(ReadOptions{Password: "wrong"}); !errors.Is(err, pna.ErrWrongPassword) {
		t.Errorf("Reader with wrong password = %v, want ErrWrongPassword", err)
	}

	r3 := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	if _, err := r3.Reader(ReadOptions{}); !errors.Is(err, pna.ErrPasswordRequired) {
		t.Errorf("Reader with no password = %v, want ErrPasswordRequired", err)
	}
}

func TestDirEntryHasNoPayload(t *testing.T) {
	t.Parallel()

	b, err := NewDir("subdir")
	if err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Data) != 0 {
		t.Errorf("directory entry has payload: %v", e.Data)
	}
	if e.Header.DataKind != pna.KindDirectory {
		t.Errorf("DataKind = %v, want KindDirectory", e.Header.DataKind)
	}
}

func TestSymlinkPayloadIsTarget(t *testing.T) {
	t.Parallel()

	b, err := NewSymlink("link", "target/path", WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	pr, err := r.Reader(ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "target/path" {
		t.Errorf("got %q, want %q", got, "target/path")
	}
}

func TestInvalidOptionsRejected(t *testing.T) {
	t.Parallel()

	cases := []WriteOptions{
		{CipherMode: pna.CipherModeCtr},                                   // cipher mode without encryption
		{Password: "x"},                                                   // password without encryption
		{Encryption: pna.EncryptionAes256},                                // encryption without cipher mode
		{Encryption: pna.EncryptionAes256, CipherMode: pna.CipherModeCtr}, // encryption without password
	}
	for i, opts := range cases {
		if _, err := NewFile("f", opts); !errors.Is(err, pna.ErrInvalidOptions) {
			t.Errorf("case %d: got %v, want ErrInvalidOptions", i, err)
		}
	}
}

func TestUnsafePathRejectedOnRead(t *testing.T) {
	t.Parallel()

	b, err := NewFile("../escape.txt", WriteOptions{Compression: pna.CompressionStore})
	if err != nil {
		t.Fatal(err)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))
	if _, err := r.Path(); !errors.Is(err, pna.ErrUnsafePath) {
		t.Errorf("Path() = %v, want ErrUnsafePath", err)
	}
}

func TestAuxOrderingAndSemantics(t *testing.T) {
	t.Parallel()

	b, err := NewDir("d")
	if err != nil {
		t.Fatal(err)
	}
	b.WithPermissions([]byte("perm1")).WithPermissions([]byte("perm2")) // last-one-wins
	b.WithXattr([]byte("x1")).WithXattr([]byte("x2"))                   // concatenate
	b.WithTimestamps([]byte("ts"))

	e, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(e.Header, e.PHSF, e.Aux, toReader(e))

	perm, ok := r.Aux(ChunkPermissions)
	if !ok || string(perm) != "perm2" {
		t.Errorf("permissions = %q, ok=%v, want perm2", perm, ok)
	}

	xattrs := r.AuxAll(ChunkXattr)
	if len(xattrs) != 2 || string(xattrs[0]) != "x1" || string(xattrs[1]) != "x2" {
		t.Errorf("xattrs = %v, want [x1 x2]", xattrs)
	}

	// Documented stable order: timestamps, then permissions, then xattrs
	// (last-one-wins already collapsed the duplicate permissions entry;
	// the xattr concatenation keeps both, in call order).
	gotOrder := make([]pna.ChunkType, len(e.Aux))
	for i, a := range e.Aux {
		gotOrder[i] = a.Type
	}
	wantOrder := []pna.ChunkType{ChunkTimestamps, ChunkPermissions, ChunkXattr, ChunkXattr}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("aux chunk order mismatch (-want +got):\n%s", diff)
	}
}
