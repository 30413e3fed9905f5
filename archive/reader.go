package archive

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/solid"
	"golang.org/x/xerrors"
)

type readerState int

const (
	stateReady readerState = iota
	stateEntryOpen
	stateEnd
)

// NextVolumeFunc supplies the next volume's byte stream when a reader
// encounters ANXT, for multi-volume archives. It returns io.EOF (wrapping
// or bare) if no further volume is available, which the Reader surfaces as
// pna.ErrUnexpectedEnd since ANXT promises a continuation.
type NextVolumeFunc func() (io.Reader, error)

// Reader is the top-level archive reader state machine:
//
//	Ready --Next--> EntryOpen --Next--> EntryOpen --Next(AEND)--> End
//
// Next reads an entry's or solid block's chunks up to and including its
// closing FEND/SEND before returning, so that item's whole post-pipeline
// payload is held in memory. The returned reader pulls nothing further from
// the underlying stream, and calling Next again without draining it is safe.
type Reader struct {
	r          io.Reader
	cr         *chunk.Reader
	header     Header
	state      readerState
	readOpts   entry.ReadOptions
	nextVolume NextVolumeFunc
}

// Open validates the magic and AHED header of r and returns a Reader ready
// to yield entries via Next.
func Open(r io.Reader, opts entry.ReadOptions) (*Reader, error) {
	cr := chunk.NewReader(r)
	h, err := ReadMagicAndHeader(r, cr)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, cr: cr, header: h, state: stateReady, readOpts: opts}, nil
}

// SetNextVolume installs the callback used to fetch the next volume's
// stream when this archive's current volume ends in ANXT. Without one
// installed, encountering ANXT is reported as pna.ErrUnexpectedEnd.
func (ar *Reader) SetNextVolume(f NextVolumeFunc) { ar.nextVolume = f }

// Header returns the current volume's decoded AHED.
func (ar *Reader) Header() Header { return ar.header }

// Item is the union of what Next can yield: exactly one of Entry or Solid
// is non-nil.
type Item struct {
	Entry *entry.Reader
	Solid *solid.Reader
}

// Next advances the reader to the following top-level item. It returns
// io.EOF once AEND has been consumed and no further volumes remain.
func (ar *Reader) Next() (*Item, error) {
	if ar.state == stateEnd {
		return nil, io.EOF
	}

	for {
		c, err := ar.cr.ReadChunk()
		if err == io.EOF {
			return nil, xerrors.Errorf("archive: stream ended before AEND: %w", pna.ErrUnexpectedEnd)
		}
		if err != nil {
			return nil, xerrors.Errorf("archive: read next chunk: %w", err)
		}

		switch c.Type {
		case pna.FHED:
			ar.state = stateEntryOpen
			er, err := entry.DecodeFrom(ar.cr, c)
			if err != nil {
				return nil, err
			}
			return &Item{Entry: er}, nil

		case pna.SHED:
			ar.state = stateEntryOpen
			sr, err := solid.DecodeFrom(ar.cr, c, ar.readOpts)
			if err != nil {
				return nil, err
			}
			return &Item{Solid: sr}, nil

		case pna.AEND:
			ar.state = stateEnd
			return nil, io.EOF

		case pna.ANXT:
			if ar.nextVolume == nil {
				return nil, xerrors.Errorf("archive: ANXT with no further volume available: %w", pna.ErrUnexpectedEnd)
			}
			nr, err := ar.nextVolume()
			if xerrors.Is(err, io.EOF) {
				return nil, xerrors.Errorf("archive: ANXT with no further volume available: %w", pna.ErrUnexpectedEnd)
			}
			if err != nil {
				return nil, xerrors.Errorf("archive: fetch next volume: %w", err)
			}
			cr := chunk.NewReader(nr)
			h, err := ReadMagicAndHeader(nr, cr)
			if err != nil {
				return nil, err
			}
			if h.ArchiveNumber != ar.header.ArchiveNumber+1 {
				return nil, xerrors.Errorf("archive: volume %d follows volume %d: %w", h.ArchiveNumber, ar.header.ArchiveNumber, pna.ErrCorruptChunk)
			}
			ar.r, ar.cr, ar.header = nr, cr, h
			continue

		default:
			if !c.Type.IsAncillary() {
				return nil, xerrors.Errorf("archive: unrecognized critical chunk %s: %w", c.Type, pna.ErrUnknownCriticalChunk)
			}
			// Unknown ancillary chunk at the top level: skip.
		}
	}
}
