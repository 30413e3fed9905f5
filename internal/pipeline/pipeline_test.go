package pipeline

import (
	"bytes"
	"io"
	"testing"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("the quick brown fox jumps over the lazy dog, repeated. " +
		"the quick brown fox jumps over the lazy dog, repeated.")
	key := bytes.Repeat([]byte{0x07}, 32)

	compressions := []pna.Compression{pna.CompressionStore, pna.CompressionDeflate, pna.CompressionZstd, pna.CompressionXz}
	encryptions := []struct {
		enc  pna.Encryption
		mode pna.CipherMode
	}{
		{pna.EncryptionNone, pna.CipherModeNone},
		{pna.EncryptionAes256, pna.CipherModeCtr},
		{pna.EncryptionAes256, pna.CipherModeCbc},
		{pna.EncryptionCamellia256, pna.CipherModeCtr},
	}

	for _, c := range compressions {
		for _, e := range encryptions {
			c, e := c, e
			t.Run("", func(t *testing.T) {
				t.Parallel()
				s := Stages{Compression: c, Encryption: e.enc, CipherMode: e.mode, Key: key}

				var out bytes.Buffer
				w, err := NewWriter(&out, s)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := w.Write(payload); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}

				r, err := NewReader(&out, s)
				if err != nil {
					t.Fatal(err)
				}
				got, err := io.ReadAll(r)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, payload) {
					t.Errorf("round trip mismatch: got %q", got)
				}
			})
		}
	}
}
