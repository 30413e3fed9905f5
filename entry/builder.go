package entry

import (
	"bytes"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/kdf"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/pathutil"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/pipeline"
	"golang.org/x/xerrors"
)

// Entry is an immutable, fully built entry ready to be appended to an
// archive.
type Entry struct {
	Header Header
	PHSF   string // empty unless Header.Encryption != pna.EncryptionNone
	Aux    []AuxChunk
	Data   [][]byte // post-pipeline FDAT payload, already chunked
}

// Builder assembles one entry: path, kind, options, payload, and
// auxiliary metadata. A Builder is a single-writer, short-lived
// subordinate of whichever archive.Writer it will be appended to; it
// surrenders its buffered bytes on Build.
type Builder struct {
	header Header
	phsf   string
	aux    auxSet

	payload    bytes.Buffer
	pipe       interface {
		Write([]byte) (int, error)
		Close() error
	}
	maxPayloadChunk int
	built           bool
}

const defaultMaxPayloadChunk = 1 << 20 // 1 MiB per FDAT chunk

// NewFile opens a write sink for a regular file entry at path.
func NewFile(path string, opts WriteOptions) (*Builder, error) {
	return newPayloadBuilder(path, pna.KindFile, opts)
}

// NewDir builds a directory entry. Directories carry no payload.
func NewDir(path string) (*Builder, error) {
	b := &Builder{
		header: Header{
			Major:    pna.FormatMajor,
			Minor:    pna.FormatMinor,
			DataKind: pna.KindDirectory,
			Path:     normalizedPath(path),
		},
	}
	return b, nil
}

// NewSymlink builds a symlink entry whose payload is target, encoded as
// UTF-8, run through the pipeline described by opts like any other
// payload.
func NewSymlink(path, target string, opts WriteOptions) (*Builder, error) {
	b, err := newPayloadBuilder(path, pna.KindSymlink, opts)
	if err != nil {
		return nil, err
	}
	if _, err := b.Write([]byte(target)); err != nil {
		return nil, err
	}
	return b, nil
}

// NewHardlink builds a hardlink entry whose payload is target, encoded as
// UTF-8.
func NewHardlink(path, target string, opts WriteOptions) (*Builder, error) {
	b, err := newPayloadBuilder(path, pna.KindHardlink, opts)
	if err != nil {
		return nil, err
	}
	if _, err := b.Write([]byte(target)); err != nil {
		return nil, err
	}
	return b, nil
}

func normalizedPath(path string) string {
	return pathutil.Normalize(path)
}

func newPayloadBuilder(path string, kind pna.DataKind, opts WriteOptions) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		header: Header{
			Major:       pna.FormatMajor,
			Minor:       pna.FormatMinor,
			DataKind:    kind,
			Compression: opts.Compression,
			Encryption:  opts.Encryption,
			CipherMode:  opts.CipherMode,
			Path:        normalizedPath(path),
		},
		maxPayloadChunk: defaultMaxPayloadChunk,
	}

	stages := pipeline.Stages{
		Compression: opts.Compression,
		Encryption:  opts.Encryption,
		CipherMode:  opts.CipherMode,
	}

	if opts.Encryption != pna.EncryptionNone {
		algo, argonParams, pbkdf2Params := opts.kdfSelection()
		derived, err := kdf.DeriveForEncryption(opts.Password, algo, argonParams, pbkdf2Params)
		if err != nil {
			return nil, err
		}
		b.phsf = derived.PHSF
		stages.Key = derived.Key
	}

	pw, err := pipeline.NewWriter(&b.payload, stages)
	if err != nil {
		return nil, err
	}
	b.pipe = pw

	return b, nil
}

// Write streams raw payload bytes through the entry's compression and
// encryption pipeline. Only valid for file, symlink, and hardlink kinds.
func (b *Builder) Write(p []byte) (int, error) {
	if b.pipe == nil {
		return 0, xerrors.Errorf("entry: write to a %s entry, which carries no payload", b.header.DataKind)
	}
	return b.pipe.Write(p)
}

// WithTimestamps attaches opaque timestamp metadata (cTIM). Last-one-wins
// if called more than once.
func (b *Builder) WithTimestamps(data []byte) *Builder { b.aux.add(ChunkTimestamps, data); return b }

// WithPermissions attaches opaque permission metadata. Last-one-wins.
func (b *Builder) WithPermissions(data []byte) *Builder { b.aux.add(ChunkPermissions, data); return b }

// WithXattr appends one opaque extended-attribute entry. Entries
// accumulate across calls.
func (b *Builder) WithXattr(data []byte) *Builder { b.aux.add(ChunkXattr, data); return b }

// WithACL appends one opaque ACL entry. Entries accumulate across calls.
func (b *Builder) WithACL(data []byte) *Builder { b.aux.add(ChunkACL, data); return b }

// WithFileFlags attaches opaque file-flags metadata. Last-one-wins.
func (b *Builder) WithFileFlags(data []byte) *Builder { b.aux.add(ChunkFileFlags, data); return b }

// WithMacMetadata attaches opaque AppleDouble metadata. Last-one-wins.
func (b *Builder) WithMacMetadata(data []byte) *Builder { b.aux.add(ChunkMacMetadata, data); return b }

// WithPrivate attaches a vendor-private chunk. typ must be private (byte 1
// lowercase); repeats of the same typ are last-one-wins, distinct private
// types accumulate side by side.
func (b *Builder) WithPrivate(typ pna.ChunkType, data []byte) (*Builder, error) {
	if err := b.aux.add(typ, data); err != nil {
		return nil, err
	}
	return b, nil
}

// Build finalizes pending pipeline state (flush) and returns an immutable
// Entry ready to be appended to an archive.
func (b *Builder) Build() (*Entry, error) {
	if b.built {
		return nil, xerrors.Errorf("entry: Build called twice")
	}
	b.built = true

	if b.pipe != nil {
		if err := b.pipe.Close(); err != nil {
			return nil, xerrors.Errorf("entry: finalize pipeline: %w", err)
		}
	}

	if b.header.DataKind == pna.KindDirectory && b.payload.Len() != 0 {
		return nil, xerrors.Errorf("entry: directory %q has non-empty payload", b.header.Path)
	}

	return &Entry{
		Header: b.header,
		PHSF:   b.phsf,
		Aux:    b.aux.flatten(),
		Data:   chunkPayload(b.payload.Bytes(), b.maxPayloadChunk),
	}, nil
}

func chunkPayload(data []byte, max int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := max
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
