// Package split implements multi-volume writing and concatenation:
// redirecting an archive's chunk stream across a sequence of output
// volumes bounded by a maximum size, and reversing that back into one
// logical chunk stream.
package split

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/solid"
	"golang.org/x/xerrors"
)

// NextVolumeFunc supplies the next output volume when the current one has
// filled up to MaxSize, mirroring the teacher's pattern of handing disk
// image output off to successive targets.
type NextVolumeFunc func() (io.WriteCloser, error)

// countingWriter tracks how many bytes have flowed into the current
// volume so Writer knows when it's full.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

// Writer wraps an archive.Writer, splitting FDAT/SDAT payload chunks at
// byte boundaries so that no single volume exceeds MaxSize. Every other
// chunk (FHED, phsf, aux, FEND, AHED, ANXT, AEND) is atomic: it is never
// split, even if writing it pushes a volume past MaxSize.
type Writer struct {
	maxSize       uint64
	archiveNumber uint32
	cur           io.WriteCloser
	cw            countingWriter
	aw            *archive.Writer
	nextVolume    NextVolumeFunc
}

// NewWriter opens the first volume (first) for writing, splitting
// subsequent volumes via nextVolume whenever the current one reaches
// maxSize.
func NewWriter(first io.WriteCloser, maxSize uint64, nextVolume NextVolumeFunc) (*Writer, error) {
	w := &Writer{maxSize: maxSize, archiveNumber: 1, cur: first, nextVolume: nextVolume}
	w.cw = countingWriter{w: first}
	w.aw = archive.NewWriterForVolume(&w.cw, 1)
	if err := w.aw.WriteHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) remaining() uint64 {
	if w.cw.n >= w.maxSize {
		return 0
	}
	return w.maxSize - w.cw.n
}

// rollVolume closes out the current volume with ANXT and opens the next
// one, incrementing archive_number.
func (w *Writer) rollVolume() error {
	if err := w.aw.WriteANXT(); err != nil {
		return err
	}
	if err := w.cur.Close(); err != nil {
		return xerrors.Errorf("split: close volume %d: %w", w.archiveNumber, err)
	}
	next, err := w.nextVolume()
	if err != nil {
		return xerrors.Errorf("split: open volume %d: %w", w.archiveNumber+1, err)
	}
	w.archiveNumber++
	w.cur = next
	w.cw = countingWriter{w: next}
	w.aw = archive.NewWriterForVolume(&w.cw, w.archiveNumber)
	return w.aw.WriteHeader()
}

// writeSplitChunk writes one logical FDAT/SDAT payload as one or more
// physical chunks, splitting data at the volume boundary whenever it
// would otherwise overflow MaxSize.
const chunkOverhead = 4 + 4 + 4 // length + type + crc

func (w *Writer) writeSplitChunk(typ pna.ChunkType, data []byte) error {
	for {
		if uint64(len(data))+chunkOverhead <= w.remaining() {
			if _, err := w.aw.ChunkWriter().WriteChunk(typ, data); err != nil {
				return err
			}
			return nil
		}
		if w.remaining() <= chunkOverhead {
			// No room even for an empty chunk of this type: roll without
			// writing anything, then reconsider against the fresh volume.
			if err := w.rollVolume(); err != nil {
				return err
			}
			continue
		}
		n := w.remaining() - chunkOverhead
		if _, err := w.aw.ChunkWriter().WriteChunk(typ, data[:n]); err != nil {
			return err
		}
		data = data[n:]
		if err := w.rollVolume(); err != nil {
			return err
		}
	}
}

// AddEntry appends e, splitting its FDAT payload chunks across volume
// boundaries as needed.
func (w *Writer) AddEntry(e *entry.Entry) error {
	cw := w.aw.ChunkWriter()
	if _, err := cw.WriteChunk(pna.FHED, e.Header.Encode()); err != nil {
		return xerrors.Errorf("split: write FHED: %w", err)
	}
	if e.PHSF != "" {
		if _, err := cw.WriteChunk(pna.PHSF, []byte(e.PHSF)); err != nil {
			return xerrors.Errorf("split: write phsf: %w", err)
		}
	}
	for _, a := range e.Aux {
		if _, err := cw.WriteChunk(a.Type, a.Data); err != nil {
			return xerrors.Errorf("split: write aux chunk %s: %w", a.Type, err)
		}
	}
	for _, d := range e.Data {
		if err := w.writeSplitChunk(pna.FDAT, d); err != nil {
			return xerrors.Errorf("split: write FDAT: %w", err)
		}
	}
	if _, err := w.aw.ChunkWriter().WriteChunk(pna.FEND, nil); err != nil {
		return xerrors.Errorf("split: write FEND: %w", err)
	}
	return nil
}

// AddSolid appends a solid block, splitting its SDAT payload chunks across
// volume boundaries exactly as AddEntry does for an entry's FDAT chunks.
// SHED, phsf, and SEND are atomic, matching every other non-payload chunk.
func (w *Writer) AddSolid(b *solid.Block) error {
	cw := w.aw.ChunkWriter()
	if _, err := cw.WriteChunk(pna.SHED, b.Header.Encode()); err != nil {
		return xerrors.Errorf("split: write SHED: %w", err)
	}
	if b.PHSF != "" {
		if _, err := cw.WriteChunk(pna.PHSF, []byte(b.PHSF)); err != nil {
			return xerrors.Errorf("split: write phsf: %w", err)
		}
	}
	for _, d := range b.Data {
		if err := w.writeSplitChunk(pna.SDAT, d); err != nil {
			return xerrors.Errorf("split: write SDAT: %w", err)
		}
	}
	if _, err := w.aw.ChunkWriter().WriteChunk(pna.SEND, nil); err != nil {
		return xerrors.Errorf("split: write SEND: %w", err)
	}
	return nil
}

// Finalize writes AEND to the current (last) volume and closes it.
func (w *Writer) Finalize() error {
	if err := w.aw.Finalize(); err != nil {
		return err
	}
	return w.cur.Close()
}

// Concat reverses split writing: it validates archive_number continuity
// and ANXT/AEND placement across volumes, and re-emits a single logical
// chunk stream (magic, AHED, every entry/solid chunk in order, AEND) onto
// w.
func Concat(volumes []io.Reader, w io.Writer) error {
	if len(volumes) == 0 {
		return xerrors.Errorf("split: no volumes to concatenate")
	}

	out := chunk.NewWriter(w)
	var prevArchiveNumber uint32

volumeLoop:
	for i, vol := range volumes {
		cr := chunk.NewReader(vol)
		h, err := archive.ReadMagicAndHeader(vol, cr)
		if err != nil {
			return xerrors.Errorf("split: volume %d: %w", i, err)
		}

		if i == 0 {
			if h.ArchiveNumber != 1 {
				return xerrors.Errorf("split: first volume has archive_number %d, want 1: %w", h.ArchiveNumber, pna.ErrCorruptChunk)
			}
			if _, err := w.Write(pna.Magic[:]); err != nil {
				return xerrors.Errorf("split: write magic: %w", err)
			}
			if _, err := out.WriteChunk(pna.AHED, archive.EncodeHeader(h)); err != nil {
				return xerrors.Errorf("split: write AHED: %w", err)
			}
		} else if h.ArchiveNumber != prevArchiveNumber+1 {
			return xerrors.Errorf("split: volume %d has archive_number %d, want %d: %w", i, h.ArchiveNumber, prevArchiveNumber+1, pna.ErrCorruptChunk)
		}
		prevArchiveNumber = h.ArchiveNumber
		last := i == len(volumes)-1

		for {
			c, err := cr.ReadChunk()
			if err != nil {
				return xerrors.Errorf("split: volume %d: %w", i, err)
			}
			switch c.Type {
			case pna.ANXT:
				if last {
					return xerrors.Errorf("split: last volume ends in ANXT, want AEND: %w", pna.ErrCorruptChunk)
				}
				continue volumeLoop
			case pna.AEND:
				if !last {
					return xerrors.Errorf("split: volume %d ends in AEND before the last volume: %w", i, pna.ErrCorruptChunk)
				}
				if _, err := out.WriteChunk(pna.AEND, nil); err != nil {
					return xerrors.Errorf("split: write AEND: %w", err)
				}
				return nil
			default:
				if _, err := out.WriteChunk(c.Type, c.Data); err != nil {
					return xerrors.Errorf("split: re-emit chunk %s: %w", c.Type, err)
				}
			}
		}
	}

	return xerrors.Errorf("split: ran out of volumes without reaching AEND: %w", pna.ErrUnexpectedEnd)
}
