package chunk

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// Reader pulls chunks off an underlying byte source.
type Reader struct {
	r      io.Reader
	maxLen uint32
}

// NewReader wraps r as a chunk reader using the default maximum chunk
// length (pna.MaxChunkLength).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, maxLen: pna.MaxChunkLength}
}

// SetMaxLength overrides the maximum accepted chunk data length. A declared
// length beyond this is treated as pna.ErrCorruptChunk.
func (cr *Reader) SetMaxLength(n uint32) { cr.maxLen = n }

// ReadChunk reads one full chunk, validating its CRC.
//
// On CRC mismatch or truncation the error wraps pna.ErrCorruptChunk and no
// attempt is made to resynchronize: a failed chunk terminates the stream,
// per the codec's error-handling contract.
func (cr *Reader) ReadChunk() (Chunk, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(cr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return Chunk{}, io.EOF
		}
		return Chunk{}, xerrors.Errorf("read chunk length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > cr.maxLen {
		return Chunk{}, xerrors.Errorf("chunk length %d exceeds limit %d: %w", length, cr.maxLen, pna.ErrCorruptChunk)
	}

	var typeBuf [4]byte
	if _, err := io.ReadFull(cr.r, typeBuf[:]); err != nil {
		return Chunk{}, xerrors.Errorf("read chunk type: %w", wrapTruncation(err))
	}
	typ := pna.ChunkType(typeBuf)

	data := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(cr.r, data); err != nil {
			return Chunk{}, xerrors.Errorf("read chunk %s data: %w", typ, wrapTruncation(err))
		}
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(cr.r, crcBuf[:]); err != nil {
		return Chunk{}, xerrors.Errorf("read chunk %s crc: %w", typ, wrapTruncation(err))
	}
	wantCRC := binary.BigEndian.Uint32(crcBuf[:])

	h := crc32.NewIEEE()
	h.Write(typeBuf[:])
	h.Write(data)
	if got := h.Sum32(); got != wantCRC {
		return Chunk{}, xerrors.Errorf("chunk %s crc mismatch: got %x want %x: %w", typ, got, wantCRC, pna.ErrCorruptChunk)
	}

	return Chunk{Type: typ, Data: data}, nil
}

// wrapTruncation turns an EOF/UnexpectedEOF encountered mid-chunk into a
// CorruptChunk, since only a clean EOF before the length field is a
// legitimate end of stream.
func wrapTruncation(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return xerrors.Errorf("truncated: %w", pna.ErrCorruptChunk)
	}
	return err
}
