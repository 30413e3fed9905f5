package entry

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/kdf"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/pathutil"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/pipeline"
)

// Reader decodes one entry already fully collected (header, optional phsf,
// aux chunks, and the concatenated FDAT payload bytes) and exposes it as
// the codec's public read-side contract.
type Reader struct {
	header Header
	phsf   string
	aux    []AuxChunk
	data   io.Reader // concatenated, post-pipeline FDAT bytes
}

// NewReader wraps an already-decoded header plus its associated phsf
// string, auxiliary chunks, and post-pipeline payload reader.
func NewReader(header Header, phsf string, aux []AuxChunk, data io.Reader) *Reader {
	return &Reader{header: header, phsf: phsf, aux: aux, data: data}
}

// Header returns the entry's parsed FHED content.
func (r *Reader) Header() Header { return r.header }

// Path returns the entry's normalized path, validated against directory
// traversal. Callers extracting to the filesystem must use this, not
// Header().Path directly.
func (r *Reader) Path() (string, error) {
	p := pathutil.Normalize(r.header.Path)
	if !pathutil.IsSafe(p) {
		return "", pna.ErrUnsafePath
	}
	return p, nil
}

// Aux returns the last auxiliary chunk of the given type (for
// single-valued metadata such as timestamps and permissions), or false if
// none is present.
func (r *Reader) Aux(typ pna.ChunkType) ([]byte, bool) {
	var found []byte
	ok := false
	for _, a := range r.aux {
		if a.Type == typ {
			found = a.Data
			ok = true
		}
	}
	return found, ok
}

// AuxAll returns every auxiliary chunk of the given type in input order
// (for list-valued metadata such as xattrs and ACL entries).
func (r *Reader) AuxAll(typ pna.ChunkType) [][]byte {
	var out [][]byte
	for _, a := range r.aux {
		if a.Type == typ {
			out = append(out, a.Data)
		}
	}
	return out
}

// Reader returns a byte reader over the entry's decoded payload, applying
// the inverse transform pipeline. For directories it returns an empty
// reader; for symlinks/hardlinks it yields the link target as UTF-8.
func (r *Reader) Reader(opts ReadOptions) (io.Reader, error) {
	stages := pipeline.Stages{
		Compression: r.header.Compression,
		Encryption:  r.header.Encryption,
		CipherMode:  r.header.CipherMode,
	}

	if r.header.Encryption != pna.EncryptionNone {
		if r.phsf == "" {
			return nil, pna.ErrPasswordRequired
		}
		if opts.Password == "" {
			return nil, pna.ErrPasswordRequired
		}
		key, err := kdf.VerifyAndDeriveKey(opts.Password, r.phsf)
		if err != nil {
			return nil, err
		}
		stages.Key = key
	}

	return pipeline.NewReader(r.data, stages)
}
