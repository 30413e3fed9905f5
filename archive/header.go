// Package archive implements the top-level archive reader/writer state
// machines: magic + AHED/AEND framing, entry sequencing, and the
// per-output-path lock registry used by parallel callers.
package archive

import (
	"encoding/binary"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"golang.org/x/xerrors"
)

// Header is the decoded content of an AHED chunk.
type Header struct {
	Major         uint8
	Minor         uint8
	ArchiveNumber uint32
}

// encodeAHED renders a Header as AHED chunk data:
// {major, minor, reserved[2], archive_number BE}.
func encodeAHED(h Header) []byte {
	data := make([]byte, 8)
	data[0] = h.Major
	data[1] = h.Minor
	binary.BigEndian.PutUint32(data[4:8], h.ArchiveNumber)
	return data
}

// decodeAHED parses AHED chunk data into a Header.
func decodeAHED(data []byte) (Header, error) {
	if len(data) < 8 {
		return Header{}, xerrors.Errorf("AHED data too short (%d bytes): %w", len(data), pna.ErrCorruptChunk)
	}
	return Header{
		Major:         data[0],
		Minor:         data[1],
		ArchiveNumber: binary.BigEndian.Uint32(data[4:8]),
	}, nil
}

// EncodeHeader renders h as AHED chunk data, for callers (the split
// package) that need to re-emit a volume's header chunk verbatim while
// concatenating.
func EncodeHeader(h Header) []byte { return encodeAHED(h) }

// WriteMagicAndHeader writes the 8-byte PNA magic followed by an AHED chunk
// naming archiveNumber (1 for the first volume, incrementing thereafter).
func WriteMagicAndHeader(cw *chunk.Writer, w io.Writer, archiveNumber uint32) error {
	if _, err := w.Write(pna.Magic[:]); err != nil {
		return xerrors.Errorf("write magic: %w", err)
	}
	h := Header{Major: pna.FormatMajor, Minor: pna.FormatMinor, ArchiveNumber: archiveNumber}
	if _, err := cw.WriteChunk(pna.AHED, encodeAHED(h)); err != nil {
		return xerrors.Errorf("write AHED: %w", err)
	}
	return nil
}

// ReadMagicAndHeader validates the magic and parses the following AHED
// chunk. It returns pna.ErrInvalidSignature on magic mismatch and
// pna.ErrUnsupportedVersion if the major version is newer than this codec
// understands.
func ReadMagicAndHeader(r io.Reader, cr *chunk.Reader) (Header, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, xerrors.Errorf("read magic: %w", err)
	}
	if magic != pna.Magic {
		return Header{}, xerrors.Errorf("got %x: %w", magic, pna.ErrInvalidSignature)
	}

	c, err := cr.ReadChunk()
	if err != nil {
		return Header{}, xerrors.Errorf("read AHED: %w", err)
	}
	if c.Type != pna.AHED {
		return Header{}, xerrors.Errorf("expected AHED, got %s: %w", c.Type, pna.ErrCorruptChunk)
	}

	h, err := decodeAHED(c.Data)
	if err != nil {
		return Header{}, err
	}
	if h.Major > pna.FormatMajor {
		return Header{}, xerrors.Errorf("archive major version %d: %w", h.Major, pna.ErrUnsupportedVersion)
	}
	return h, nil
}
