// Package pipeline composes the compression and encryption stages applied
// to an entry's payload, in the fixed order the format requires: compress
// then encrypt on write, decrypt then decompress on read.
package pipeline

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/klauspost/compress/flate"
	kzstd "github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"golang.org/x/xerrors"
)

// newCompressWriter wraps dst with the compressor selected by c. The
// returned WriteCloser's Close flushes any buffered compressed output; it
// does not close dst.
func newCompressWriter(dst io.Writer, c pna.Compression) (io.WriteCloser, error) {
	switch c {
	case pna.CompressionStore:
		return nopWriteCloser{dst}, nil
	case pna.CompressionDeflate:
		fw, err := flate.NewWriter(dst, flate.DefaultCompression)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new deflate writer: %w", err)
		}
		return fw, nil
	case pna.CompressionZstd:
		zw, err := kzstd.NewWriter(dst)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new zstd writer: %w", err)
		}
		return zstdWriteCloser{zw}, nil
	case pna.CompressionXz:
		xw, err := xz.NewWriter(dst)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new xz writer: %w", err)
		}
		return xzWriteCloser{xw}, nil
	default:
		return nil, xerrors.Errorf("pipeline: unsupported compression %d", c)
	}
}

// newDecompressReader wraps src with the decompressor selected by c.
func newDecompressReader(src io.Reader, c pna.Compression) (io.Reader, error) {
	switch c {
	case pna.CompressionStore:
		return src, nil
	case pna.CompressionDeflate:
		return flate.NewReader(src), nil
	case pna.CompressionZstd:
		zr, err := kzstd.NewReader(src)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new zstd reader: %w", err)
		}
		return zstdReadCloser{zr}, nil
	case pna.CompressionXz:
		xr, err := xz.NewReader(src)
		if err != nil {
			return nil, xerrors.Errorf("pipeline: new xz reader: %w", err)
		}
		return xr, nil
	default:
		return nil, xerrors.Errorf("pipeline: unsupported compression %d", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// zstdWriteCloser adapts *zstd.Encoder's Close (which also flushes) to
// io.WriteCloser without leaking the concrete klauspost type.
type zstdWriteCloser struct{ enc *kzstd.Encoder }

func (z zstdWriteCloser) Write(p []byte) (int, error) { return z.enc.Write(p) }
func (z zstdWriteCloser) Close() error                { return z.enc.Close() }

// zstdReadCloser adapts *zstd.Decoder, which exposes Close without an error
// return, to a plain io.Reader (the pipeline never needs to close the
// decoder explicitly; it's garbage collected with the entry reader).
type zstdReadCloser struct{ dec *kzstd.Decoder }

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

// xzWriteCloser adapts *xz.Writer.
type xzWriteCloser struct{ w *xz.Writer }

func (x xzWriteCloser) Write(p []byte) (int, error) { return x.w.Write(p) }
func (x xzWriteCloser) Close() error                { return x.w.Close() }
