package pipeline

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	icipher "github.com/ChanTsune/Portable-Network-Archive-sub003/internal/cipher"
	"golang.org/x/xerrors"
)

// Stages describes the transform pipeline configuration for one entry's
// payload, corresponding one-to-one with the fields persisted in FHED.
type Stages struct {
	Compression pna.Compression
	Encryption  pna.Encryption
	CipherMode  pna.CipherMode
	Key         []byte // required unless Encryption == pna.EncryptionNone
}

// NewWriter returns a WriteCloser that, on Write, compresses then (if
// configured) encrypts payload bytes into dst. Close must be called to
// flush both stages; it does not close dst.
func NewWriter(dst io.Writer, s Stages) (io.WriteCloser, error) {
	sink := dst
	var cipherCloser io.Closer
	if s.Encryption != pna.EncryptionNone {
		cw, err := icipher.NewWriter(dst, s.Encryption, s.CipherMode, s.Key)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new cipher writer: %w", err)
		}
		sink = cw
		cipherCloser = cw
	}

	cw, err := newCompressWriter(sink, s.Compression)
	if err != nil {
		return nil, err
	}

	return &writeCloser{compress: cw, cipher: cipherCloser}, nil
}

type writeCloser struct {
	compress io.WriteCloser
	cipher   io.Closer
}

func (w *writeCloser) Write(p []byte) (int, error) { return w.compress.Write(p) }

func (w *writeCloser) Close() error {
	if err := w.compress.Close(); err != nil {
		return xerrors.Errorf("pipeline: close compressor: %w", err)
	}
	if w.cipher != nil {
		if err := w.cipher.Close(); err != nil {
			return xerrors.Errorf("pipeline: close cipher: %w", err)
		}
	}
	return nil
}

// NewReader returns a Reader that, on Read, decrypts (if configured) then
// decompresses bytes pulled from src.
func NewReader(src io.Reader, s Stages) (io.Reader, error) {
	source := src
	if s.Encryption != pna.EncryptionNone {
		cr, err := icipher.NewReader(src, s.Encryption, s.CipherMode, s.Key)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new cipher reader: %w", err)
		}
		source = cr
	}

	r, err := newDecompressReader(source, s.Compression)
	if err != nil {
		return nil, err
	}
	return r, nil
}
