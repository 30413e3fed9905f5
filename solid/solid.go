// Package solid implements the solid aggregator: packing multiple entries
// into a single SHED/SDAT.../SEND frame whose decoded payload is itself a
// concatenation of full FHED...FEND entry framings, with one shared
// compression/encryption pipeline applied to the whole concatenation.
package solid

import (
	"bytes"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/kdf"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/pipeline"
	"golang.org/x/xerrors"
)

// Block is an immutable, fully built solid block ready to be appended to
// an archive via archive.Writer.AddSolid.
type Block struct {
	Header entry.Header // Path is always empty for a solid block
	PHSF   string
	Data   [][]byte
}

const maxChunkSize = 1 << 20

// Writer accumulates pre-framed inner entries and, on Build, applies the
// outer pipeline once to their concatenation.
type Writer struct {
	inner bytes.Buffer
	opts  entry.WriteOptions
	built bool
}

// NewWriter starts a new solid block whose outer pipeline will use opts.
func NewWriter(opts entry.WriteOptions) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Writer{opts: opts}, nil
}

// Add frames e as FHED...FEND bytes into the block. Per the format's solid
// invariant, e must already be built with compression=store,
// encryption=none: its bytes are transformed exactly once, by this block's
// outer pipeline.
func (w *Writer) Add(e *entry.Entry) error {
	if e.Header.Compression != pna.CompressionStore || e.Header.Encryption != pna.EncryptionNone {
		return xerrors.Errorf("solid: inner entry %q must use compression=store, encryption=none: %w", e.Header.Path, pna.ErrInvalidOptions)
	}
	cw := chunk.NewWriter(&w.inner)
	if err := entry.Encode(e, cw); err != nil {
		return xerrors.Errorf("solid: frame inner entry %q: %w", e.Header.Path, err)
	}
	return nil
}

// Build applies the outer pipeline to the accumulated inner entries and
// returns the resulting Block.
func (w *Writer) Build() (*Block, error) {
	if w.built {
		return nil, xerrors.Errorf("solid: Build called twice")
	}
	w.built = true

	header := entry.Header{
		Major:       pna.FormatMajor,
		Minor:       pna.FormatMinor,
		Compression: w.opts.Compression,
		Encryption:  w.opts.Encryption,
		CipherMode:  w.opts.CipherMode,
	}

	stages := pipeline.Stages{
		Compression: w.opts.Compression,
		Encryption:  w.opts.Encryption,
		CipherMode:  w.opts.CipherMode,
	}

	var phsf string
	if w.opts.Encryption != pna.EncryptionNone {
		algo, argonParams, pbkdf2Params := w.opts.KDFSelection()
		derived, err := kdf.DeriveForEncryption(w.opts.Password, algo, argonParams, pbkdf2Params)
		if err != nil {
			return nil, err
		}
		phsf = derived.PHSF
		stages.Key = derived.Key
	}

	var out bytes.Buffer
	pw, err := pipeline.NewWriter(&out, stages)
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write(w.inner.Bytes()); err != nil {
		return nil, xerrors.Errorf("solid: write outer pipeline: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, xerrors.Errorf("solid: close outer pipeline: %w", err)
	}

	return &Block{Header: header, PHSF: phsf, Data: chunkBytes(out.Bytes(), maxChunkSize)}, nil
}

func chunkBytes(data []byte, max int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := max
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

// Encode writes b as SHED, an optional phsf chunk, one or more SDAT
// chunks, and a closing SEND.
func Encode(b *Block, cw *chunk.Writer) error {
	if _, err := cw.WriteChunk(pna.SHED, b.Header.Encode()); err != nil {
		return xerrors.Errorf("solid: write SHED: %w", err)
	}
	if b.PHSF != "" {
		if _, err := cw.WriteChunk(pna.PHSF, []byte(b.PHSF)); err != nil {
			return xerrors.Errorf("solid: write phsf: %w", err)
		}
	}
	for _, d := range b.Data {
		if _, err := cw.WriteChunk(pna.SDAT, d); err != nil {
			return xerrors.Errorf("solid: write SDAT: %w", err)
		}
	}
	if _, err := cw.WriteChunk(pna.SEND, nil); err != nil {
		return xerrors.Errorf("solid: write SEND: %w", err)
	}
	return nil
}

// Decode reads one SHED...SEND frame from cr and returns a Reader that
// demultiplexes it back into individual entries. The first chunk pulled
// from cr must be SHED.
func Decode(cr *chunk.Reader, opts entry.ReadOptions) (*Reader, error) {
	c, err := cr.ReadChunk()
	if err != nil {
		return nil, err
	}
	return DecodeFrom(cr, c, opts)
}

// DecodeFrom finishes decoding a solid block whose SHED chunk has already
// been read from cr as shed. Used by the archive reader, which must peek a
// chunk's type before knowing whether to dispatch to entry.DecodeFrom or
// solid.DecodeFrom.
func DecodeFrom(cr *chunk.Reader, shed chunk.Chunk, opts entry.ReadOptions) (*Reader, error) {
	c := shed
	if c.Type != pna.SHED {
		return nil, xerrors.Errorf("expected SHED, got %s: %w", c.Type, pna.ErrCorruptChunk)
	}
	header, err := entry.DecodeHeader(c.Data)
	if err != nil {
		return nil, xerrors.Errorf("solid: decode SHED: %w", err)
	}

	var phsf string
	var data [][]byte
	for {
		c, err = cr.ReadChunk()
		if err != nil {
			return nil, xerrors.Errorf("solid block: %w", err)
		}
		switch c.Type {
		case pna.PHSF:
			phsf = string(c.Data)
		case pna.SDAT:
			data = append(data, c.Data)
		case pna.SEND:
			goto decoded
		default:
			return nil, xerrors.Errorf("solid block: unexpected chunk %s: %w", c.Type, pna.ErrCorruptChunk)
		}
	}

decoded:
	readers := make([]io.Reader, len(data))
	for i, d := range data {
		readers[i] = bytes.NewReader(d)
	}

	plain, err := decodePipeline(header, phsf, opts, io.MultiReader(readers...))
	if err != nil {
		return nil, err
	}

	return &Reader{cr: chunk.NewReader(plain)}, nil
}

func decodePipeline(header entry.Header, phsf string, opts entry.ReadOptions, src io.Reader) (io.Reader, error) {
	stages := pipeline.Stages{
		Compression: header.Compression,
		Encryption:  header.Encryption,
		CipherMode:  header.CipherMode,
	}
	if header.Encryption != pna.EncryptionNone {
		if opts.Password == "" {
			return nil, pna.ErrPasswordRequired
		}
		key, err := kdf.VerifyAndDeriveKey(opts.Password, phsf)
		if err != nil {
			return nil, err
		}
		stages.Key = key
	}
	return pipeline.NewReader(src, stages)
}

// Reader demultiplexes a decoded solid block's inner byte stream back into
// individual entries. It is the same chunk reader used everywhere else in
// the codec, but with no outer-archive state (no magic, no AHED/AEND).
type Reader struct {
	cr *chunk.Reader
}

// Next decodes the next inner entry, or returns io.EOF once the inner
// stream is exhausted.
func (r *Reader) Next() (*entry.Reader, error) {
	er, err := entry.Decode(r.cr)
	if err != nil {
		return nil, err
	}
	return er, nil
}
