package pna

import "errors"

// Sentinel errors surfaced by the codec. Wrap these with
// golang.org/x/xerrors.Errorf("...: %w", err) at each boundary; callers
// unwrap with errors.Is.
var (
	// ErrInvalidSignature means the 8-byte magic at the start of a volume
	// did not match.
	ErrInvalidSignature = errors.New("pna: invalid signature")

	// ErrUnsupportedVersion means AHED.major exceeds what this codec
	// understands.
	ErrUnsupportedVersion = errors.New("pna: unsupported archive version")

	// ErrCorruptChunk covers length overflow, CRC mismatch, and truncation
	// inside a chunk.
	ErrCorruptChunk = errors.New("pna: corrupt chunk")

	// ErrUnknownCriticalChunk means a chunk with an uppercase first byte
	// (critical) was not recognized.
	ErrUnknownCriticalChunk = errors.New("pna: unknown critical chunk")

	// ErrInvalidOptions means a WriteOptions combination is contradictory.
	ErrInvalidOptions = errors.New("pna: invalid write options")

	// ErrPasswordRequired means an entry is encrypted but no password was
	// supplied to read it.
	ErrPasswordRequired = errors.New("pna: password required")

	// ErrWrongPassword means the supplied password's derived key did not
	// match the stored verifier.
	ErrWrongPassword = errors.New("pna: wrong password")

	// ErrUnsafePath means an entry path escapes the archive root after
	// normalization.
	ErrUnsafePath = errors.New("pna: unsafe path")

	// ErrUnexpectedEnd means the stream ended before AEND, with no ANXT
	// continuation.
	ErrUnexpectedEnd = errors.New("pna: unexpected end of archive")
)
