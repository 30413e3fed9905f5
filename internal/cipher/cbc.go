package cipher

import (
	stdcipher "crypto/cipher"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// cbcWriter buffers at most one block of pending plaintext, encrypting full
// blocks as they fill and applying PKCS#7 padding to the final partial (or
// empty) block on Close.
type cbcWriter struct {
	dst       io.Writer
	enc       stdcipher.BlockMode
	blockSize int
	buf       []byte
	closed    bool
}

func newCBCWriter(dst io.Writer, block stdcipher.Block, iv []byte) *cbcWriter {
	return &cbcWriter{
		dst:       dst,
		enc:       stdcipher.NewCBCEncrypter(block, iv),
		blockSize: block.BlockSize(),
	}
}

func (w *cbcWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.buf = append(w.buf, p...)
	for len(w.buf) >= w.blockSize {
		block := w.buf[:w.blockSize]
		out := make([]byte, w.blockSize)
		w.enc.CryptBlocks(out, block)
		if _, err := w.dst.Write(out); err != nil {
			return n, xerrors.Errorf("cbc: write block: %w", err)
		}
		w.buf = w.buf[w.blockSize:]
	}
	return n, nil
}

func (w *cbcWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	padded := pkcs7Pad(w.buf, w.blockSize)
	out := make([]byte, len(padded))
	w.enc.CryptBlocks(out, padded)
	if _, err := w.dst.Write(out); err != nil {
		return xerrors.Errorf("cbc: write final block: %w", err)
	}
	return nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, xerrors.Errorf("cbc: ciphertext not a multiple of block size: %w", pna.ErrCorruptChunk)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, xerrors.Errorf("cbc: invalid padding length %d: %w", padLen, pna.ErrCorruptChunk)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, xerrors.Errorf("cbc: invalid padding bytes: %w", pna.ErrCorruptChunk)
		}
	}
	return data[:len(data)-padLen], nil
}

// cbcReader decrypts a CBC ciphertext stream with one block of lookahead so
// it can strip PKCS#7 padding from the final block once EOF is observed.
type cbcReader struct {
	src       io.Reader
	dec       stdcipher.BlockMode
	blockSize int

	pending []byte // decrypted, not-yet-confirmed-last block
	out     []byte // decrypted bytes ready to hand to the caller
	eof     bool
	err     error
}

func newCBCReader(src io.Reader, block stdcipher.Block, iv []byte) *cbcReader {
	return &cbcReader{
		src:       src,
		dec:       stdcipher.NewCBCDecrypter(block, iv),
		blockSize: block.BlockSize(),
	}
}

func (r *cbcReader) readBlock() ([]byte, error) {
	buf := make([]byte, r.blockSize)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, xerrors.Errorf("cbc: read block: %w", pna.ErrCorruptChunk)
	}
	out := make([]byte, r.blockSize)
	r.dec.CryptBlocks(out, buf)
	return out, nil
}

func (r *cbcReader) fill() {
	if r.pending == nil {
		b, err := r.readBlock()
		if err != nil {
			r.err = err
			r.eof = true
			return
		}
		r.pending = b
	}

	next, err := r.readBlock()
	if err == io.EOF {
		unpadded, uerr := pkcs7Unpad(r.pending, r.blockSize)
		if uerr != nil {
			r.err = uerr
		} else {
			r.out = append(r.out, unpadded...)
			r.err = io.EOF
		}
		r.eof = true
		return
	}
	if err != nil {
		r.err = err
		r.eof = true
		return
	}

	r.out = append(r.out, r.pending...)
	r.pending = next
}

func (r *cbcReader) Read(p []byte) (int, error) {
	for len(r.out) == 0 && !r.eof {
		r.fill()
	}
	if len(r.out) == 0 {
		if r.err != nil && r.err != io.EOF {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}
