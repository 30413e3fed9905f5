package entry

import (
	"bytes"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"golang.org/x/xerrors"
)

// Decode reads one entry framing (FHED, optional phsf, auxiliary chunks,
// one or more FDAT chunks, FEND) from cr and returns a Reader over it. The
// first chunk pulled from cr must be FHED.
func Decode(cr *chunk.Reader) (*Reader, error) {
	c, err := cr.ReadChunk()
	if err != nil {
		return nil, err
	}
	return DecodeFrom(cr, c)
}

// DecodeFrom finishes decoding an entry whose FHED chunk has already been
// read from cr as fhed. Callers that dispatch on chunk type before knowing
// which decoder to invoke (the archive reader, choosing between an entry
// and a solid block) use this instead of Decode.
func DecodeFrom(cr *chunk.Reader, fhed chunk.Chunk) (*Reader, error) {
	c := fhed
	if c.Type != pna.FHED {
		return nil, xerrors.Errorf("expected FHED, got %s: %w", c.Type, pna.ErrCorruptChunk)
	}
	header, err := DecodeHeader(c.Data)
	if err != nil {
		return nil, xerrors.Errorf("entry: decode FHED: %w", err)
	}

	var phsf string
	var aux []AuxChunk

	for {
		c, err = cr.ReadChunk()
		if err != nil {
			return nil, xerrors.Errorf("entry %q: %w", header.Path, err)
		}
		switch {
		case c.Type == pna.PHSF:
			phsf = string(c.Data)
		case c.Type == pna.FDAT || c.Type == pna.FEND:
			goto readData
		default:
			if !c.Type.IsAncillary() {
				return nil, xerrors.Errorf("entry %q: unrecognized critical chunk %s: %w", header.Path, c.Type, pna.ErrUnknownCriticalChunk)
			}
			aux = append(aux, AuxChunk{Type: c.Type, Data: c.Data})
		}
	}

readData:
	var data [][]byte
	for c.Type == pna.FDAT {
		data = append(data, c.Data)
		c, err = cr.ReadChunk()
		if err != nil {
			return nil, xerrors.Errorf("entry %q: %w", header.Path, err)
		}
	}
	if c.Type != pna.FEND {
		return nil, xerrors.Errorf("entry %q: expected FEND, got %s: %w", header.Path, c.Type, pna.ErrCorruptChunk)
	}

	readers := make([]io.Reader, len(data))
	for i, d := range data {
		readers[i] = bytes.NewReader(d)
	}

	return NewReader(header, phsf, aux, io.MultiReader(readers...)), nil
}
