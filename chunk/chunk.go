// Package chunk implements the length-prefixed, CRC-validated, typed
// record that is the atomic unit of a PNA archive:
//
//	length (u32 BE) || type (4 bytes) || data (length bytes) || crc32 (u32 BE)
//
// CRC32 covers type||data using the IEEE polynomial, the PNG convention this
// format is based on.
package chunk

import (
	"hash/crc32"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
)

// Chunk is a fully decoded, in-memory chunk.
type Chunk struct {
	Type pna.ChunkType
	Data []byte
}

// CRC32 computes the trailing checksum for this chunk's type and data.
func (c Chunk) CRC32() uint32 {
	return CRC32(c.Type, c.Data)
}

// CRC32 computes the IEEE CRC32 over typ||data, as stored in a chunk's
// trailing four bytes.
func CRC32(typ pna.ChunkType, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(typ[:])
	h.Write(data)
	return h.Sum32()
}
