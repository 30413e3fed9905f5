// Package pna implements the Portable Network Archive (PNA) codec: chunk
// framing, archive/entry boundaries, the compression+encryption transform
// pipeline, solid aggregation, multi-volume split/concat, and password-based
// key derivation.
//
// The package only covers the on-disk contract. Filesystem metadata capture,
// CLI argument parsing and platform-specific extraction are left to callers;
// see cmd/pna for a minimal driver.
package pna
