package entry

import (
	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"golang.org/x/xerrors"
)

// Encode writes e as FHED, an optional phsf chunk, auxiliary chunks in
// their documented stable order, one or more FDAT chunks, and a closing
// FEND, onto cw.
func Encode(e *Entry, cw *chunk.Writer) error {
	if _, err := cw.WriteChunk(pna.FHED, e.Header.Encode()); err != nil {
		return xerrors.Errorf("entry: write FHED: %w", err)
	}

	if e.PHSF != "" {
		if _, err := cw.WriteChunk(pna.PHSF, []byte(e.PHSF)); err != nil {
			return xerrors.Errorf("entry: write phsf: %w", err)
		}
	}

	for _, a := range e.Aux {
		if _, err := cw.WriteChunk(a.Type, a.Data); err != nil {
			return xerrors.Errorf("entry: write aux chunk %s: %w", a.Type, err)
		}
	}

	for _, d := range e.Data {
		if _, err := cw.WriteChunk(pna.FDAT, d); err != nil {
			return xerrors.Errorf("entry: write FDAT: %w", err)
		}
	}

	if _, err := cw.WriteChunk(pna.FEND, nil); err != nil {
		return xerrors.Errorf("entry: write FEND: %w", err)
	}
	return nil
}
