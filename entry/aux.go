package entry

import (
	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// Well-known auxiliary chunk types. Their byte layout is outside this
// codec's scope (the metadata layer's concern); the core only frames and
// orders them.
var (
	ChunkTimestamps  = pna.ChunkType{'c', 'T', 'I', 'M'}
	ChunkPermissions = pna.ChunkType{'f', 'P', 'R', 'M'}
	ChunkXattr       = pna.ChunkType{'f', 'X', 'A', 'T'}
	ChunkACL         = pna.ChunkType{'f', 'a', 'C', 'e'}
	ChunkFileFlags   = pna.ChunkType{'f', 'f', 'L', 'g'}
	ChunkMacMetadata = pna.ChunkType{'m', 'a', 'M', 'd'}
)

// AuxChunk is one auxiliary chunk attached to an entry.
type AuxChunk struct {
	Type pna.ChunkType
	Data []byte
}

// auxCategory orders auxiliary chunks per the documented stable order:
// timestamps -> permissions -> xattrs -> ACL -> fflags -> mac-metadata ->
// private.
type auxCategory int

const (
	auxTimestamps auxCategory = iota
	auxPermissions
	auxXattrs
	auxACL
	auxFileFlags
	auxMacMetadata
	auxPrivate
	auxCategoryCount
)

// singleValued reports whether last-one-wins applies to this category
// (timestamps, permissions, fflags, mac-metadata); list-valued categories
// (xattrs, ACL, and private-by-distinct-type) concatenate instead.
func (c auxCategory) singleValued() bool {
	switch c {
	case auxTimestamps, auxPermissions, auxFileFlags, auxMacMetadata:
		return true
	default:
		return false
	}
}

func categoryOf(typ pna.ChunkType) auxCategory {
	switch typ {
	case ChunkTimestamps:
		return auxTimestamps
	case ChunkPermissions:
		return auxPermissions
	case ChunkXattr:
		return auxXattrs
	case ChunkACL:
		return auxACL
	case ChunkFileFlags:
		return auxFileFlags
	case ChunkMacMetadata:
		return auxMacMetadata
	default:
		return auxPrivate
	}
}

// auxSet accumulates auxiliary chunks for one entry under construction,
// applying last-one-wins or concatenate semantics per category, and
// flattens to the documented stable order on Build.
type auxSet struct {
	buckets [auxCategoryCount][]AuxChunk
}

func (a *auxSet) add(typ pna.ChunkType, data []byte) error {
	if typ == ChunkXattr || typ == ChunkACL {
		a.buckets[categoryOf(typ)] = append(a.buckets[categoryOf(typ)], AuxChunk{Type: typ, Data: data})
		return nil
	}

	cat := categoryOf(typ)
	if cat == auxPrivate {
		if !typ.IsPrivate() {
			return xerrors.Errorf("aux chunk %s is not a recognized type and not private (byte 1 must be lowercase): %w", typ, pna.ErrUnknownCriticalChunk)
		}
		// Private chunks are keyed by their distinct type: repeats of the
		// same private type are last-one-wins, distinct private types
		// accumulate side by side.
		for i, existing := range a.buckets[cat] {
			if existing.Type == typ {
				a.buckets[cat][i] = AuxChunk{Type: typ, Data: data}
				return nil
			}
		}
		a.buckets[cat] = append(a.buckets[cat], AuxChunk{Type: typ, Data: data})
		return nil
	}

	if cat.singleValued() {
		a.buckets[cat] = []AuxChunk{{Type: typ, Data: data}}
		return nil
	}
	a.buckets[cat] = append(a.buckets[cat], AuxChunk{Type: typ, Data: data})
	return nil
}

// flatten renders all buckets in documented order.
func (a *auxSet) flatten() []AuxChunk {
	var out []AuxChunk
	for _, b := range a.buckets {
		out = append(out, b...)
	}
	return out
}
