package archive

import (
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/solid"
	"golang.org/x/xerrors"
)

type writerState int

const (
	stateOpen writerState = iota
	stateHeaderWritten
	stateFinalized
)

// Writer is the top-level archive writer state machine:
//
//	Open --WriteHeader--> HeaderWritten --AddEntry--> HeaderWritten --Finalize--> Finalized
//
// Writer owns w exclusively for its lifetime. Dropping (garbage collecting)
// a Writer before Finalize yields a truncated, invalid archive; that is the
// caller's responsibility to avoid.
type Writer struct {
	w             io.Writer
	cw            *chunk.Writer
	state         writerState
	archiveNumber uint32
}

// NewWriter wraps w as a new archive writer for the first volume
// (archive_number 1). Use NewWriterForVolume for continuation volumes in a
// multi-volume split.
func NewWriter(w io.Writer) *Writer {
	return NewWriterForVolume(w, 1)
}

// NewWriterForVolume wraps w as an archive writer that will identify
// itself with the given archive_number, for split callers producing
// volumes after the first.
func NewWriterForVolume(w io.Writer, archiveNumber uint32) *Writer {
	return &Writer{w: w, cw: chunk.NewWriter(w), archiveNumber: archiveNumber}
}

// ResumeWriter wraps w, whose magic and AHED have already been written (w
// is typically positioned just past the last entry's FEND in a
// previously-finalized archive, with AEND truncated off), as a writer
// ready to accept more entries via AddEntry/AddSolid.
func ResumeWriter(w io.Writer, archiveNumber uint32) *Writer {
	return &Writer{w: w, cw: chunk.NewWriter(w), archiveNumber: archiveNumber, state: stateHeaderWritten}
}

// WriteHeader emits the magic and AHED chunk, transitioning Open ->
// HeaderWritten.
func (aw *Writer) WriteHeader() error {
	if aw.state != stateOpen {
		return xerrors.Errorf("archive: WriteHeader called out of order")
	}
	if err := WriteMagicAndHeader(aw.cw, aw.w, aw.archiveNumber); err != nil {
		return err
	}
	aw.state = stateHeaderWritten
	return nil
}

// AddEntry appends one entry (FHED, optional phsf, aux chunks, FDAT...,
// FEND) in the exact order this method is called.
func (aw *Writer) AddEntry(e *entry.Entry) error {
	if aw.state != stateHeaderWritten {
		return xerrors.Errorf("archive: AddEntry called before WriteHeader or after Finalize")
	}
	if err := entry.Encode(e, aw.cw); err != nil {
		return xerrors.Errorf("archive: add entry %q: %w", e.Header.Path, err)
	}
	return nil
}

// AddSolid appends a solid block (SHED, optional phsf, SDAT..., SEND)
// produced by solid.Writer.Build.
func (aw *Writer) AddSolid(b *solid.Block) error {
	if aw.state != stateHeaderWritten {
		return xerrors.Errorf("archive: AddSolid called before WriteHeader or after Finalize")
	}
	if err := solid.Encode(b, aw.cw); err != nil {
		return xerrors.Errorf("archive: add solid block: %w", err)
	}
	return nil
}

// WriteANXT marks that the archive continues in another volume. Used by
// the split writer; ordinary callers should use Finalize instead.
func (aw *Writer) WriteANXT() error {
	if aw.state != stateHeaderWritten {
		return xerrors.Errorf("archive: WriteANXT called out of order")
	}
	if _, err := aw.cw.WriteChunk(pna.ANXT, nil); err != nil {
		return xerrors.Errorf("archive: write ANXT: %w", err)
	}
	aw.state = stateFinalized
	return nil
}

// Finalize emits AEND, transitioning HeaderWritten -> Finalized. AEND
// terminates the logical archive and must appear exactly once, only in the
// last volume.
func (aw *Writer) Finalize() error {
	if aw.state != stateHeaderWritten {
		return xerrors.Errorf("archive: Finalize called out of order")
	}
	if _, err := aw.cw.WriteChunk(pna.AEND, nil); err != nil {
		return xerrors.Errorf("archive: write AEND: %w", err)
	}
	aw.state = stateFinalized
	return nil
}

// ChunkWriter exposes the underlying chunk writer for advanced callers
// (e.g. the split package) that need to interleave volume boundaries with
// entry data mid-stream.
func (aw *Writer) ChunkWriter() *chunk.Writer { return aw.cw }
