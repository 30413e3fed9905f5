package chunk

import (
	"encoding/binary"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// Writer emits chunks onto an underlying byte sink. It holds no buffering
// beyond what's needed to compute one chunk's CRC.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as a chunk writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteChunk writes one chunk of the given type carrying data, and returns
// the number of bytes written to the underlying sink (4 + 4 + len(data) + 4).
func (cw *Writer) WriteChunk(typ pna.ChunkType, data []byte) (int, error) {
	if uint64(len(data)) > pna.MaxChunkLength {
		return 0, xerrors.Errorf("write chunk %s: %w", typ, pna.ErrCorruptChunk)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := cw.w.Write(lenBuf[:]); err != nil {
		return 0, xerrors.Errorf("write chunk %s length: %w", typ, err)
	}

	if _, err := cw.w.Write(typ[:]); err != nil {
		return 0, xerrors.Errorf("write chunk %s type: %w", typ, err)
	}

	if len(data) > 0 {
		if _, err := cw.w.Write(data); err != nil {
			return 0, xerrors.Errorf("write chunk %s data: %w", typ, err)
		}
	}

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], CRC32(typ, data))
	if _, err := cw.w.Write(crcBuf[:]); err != nil {
		return 0, xerrors.Errorf("write chunk %s crc: %w", typ, err)
	}

	return 4 + 4 + len(data) + 4, nil
}
