package cipher

import (
	"bytes"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
)

func roundTrip(t *testing.T, algo pna.Encryption, mode pna.CipherMode, plain []byte) {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, KeySize)

	var ciphertext bytes.Buffer
	w, err := NewWriter(&ciphertext, algo, mode, key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&ciphertext, algo, mode, key)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(plain))
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := map[string][]byte{
		"empty":       {},
		"short":       []byte("hi"),
		"one block":   bytes.Repeat([]byte{0xAA}, 16),
		"multi block": bytes.Repeat([]byte{0xAA}, 1024),
		"off by one":  bytes.Repeat([]byte{0xBB}, 1025),
	}

	for _, algo := range []pna.Encryption{pna.EncryptionAes256, pna.EncryptionCamellia256} {
		for _, mode := range []pna.CipherMode{pna.CipherModeCtr, pna.CipherModeCbc} {
			for name, payload := range payloads {
				algo, mode, payload := algo, mode, payload
				t.Run(name, func(t *testing.T) {
					t.Parallel()
					roundTrip(t, algo, mode, payload)
				})
			}
		}
	}
}

func TestWrongKeyFailsCBCPadding(t *testing.T) {
	t.Parallel()

	key := bytes.Repeat([]byte{0x01}, KeySize)
	wrongKey := bytes.Repeat([]byte{0x02}, KeySize)

	var ciphertext bytes.Buffer
	w, err := NewWriter(&ciphertext, pna.EncryptionAes256, pna.CipherModeCbc, key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(bytes.Repeat([]byte{0xAA}, 100)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&ciphertext, pna.EncryptionAes256, pna.CipherModeCbc, wrongKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadAll(r); err == nil {
		t.Error("expected decrypting with the wrong key to fail padding validation")
	}
}
