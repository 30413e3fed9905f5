// Package entry implements the per-entry framing protocol: building a new
// entry (path, kind, write options, payload) and decoding one back (header
// parse, payload reader), as described by FHED/FDAT/FEND (or their solid
// SHED/SDAT/SEND equivalents).
package entry

import (
	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// Header is the decoded content of an FHED (or SHED) chunk.
type Header struct {
	Major       uint8
	Minor       uint8
	DataKind    pna.DataKind
	Compression pna.Compression
	Encryption  pna.Encryption
	CipherMode  pna.CipherMode
	Path        string
}

// headerFixedLen is the number of fixed-layout bytes preceding the
// variable-length UTF-8 path: major, minor, data_kind, compression,
// encryption, cipher_mode.
const headerFixedLen = 6

// Encode renders h as FHED/SHED chunk data.
func (h Header) Encode() []byte {
	data := make([]byte, headerFixedLen+len(h.Path))
	data[0] = h.Major
	data[1] = h.Minor
	data[2] = byte(h.DataKind)
	data[3] = byte(h.Compression)
	data[4] = byte(h.Encryption)
	data[5] = byte(h.CipherMode)
	copy(data[headerFixedLen:], h.Path)
	return data
}

// DecodeHeader parses FHED/SHED chunk data into a Header.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < headerFixedLen {
		return Header{}, xerrors.Errorf("entry header too short (%d bytes): %w", len(data), pna.ErrCorruptChunk)
	}
	return Header{
		Major:       data[0],
		Minor:       data[1],
		DataKind:    pna.DataKind(data[2]),
		Compression: pna.Compression(data[3]),
		Encryption:  pna.Encryption(data[4]),
		CipherMode:  pna.CipherMode(data[5]),
		Path:        string(data[headerFixedLen:]),
	}, nil
}
