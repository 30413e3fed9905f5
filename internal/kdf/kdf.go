// Package kdf derives the symmetric key used by the encryption stage from a
// user password, and persists the algorithm, parameters, salt and verifier
// hash as a PHC string (the "phsf" chunk payload).
package kdf

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/xerrors"
)

// KeySize is the derived symmetric key length, matching cipher.KeySize.
const KeySize = 32

// Argon2Params controls the Argon2id KDF. Defaults match the codec's
// documented defaults: m=19456 KiB, t=2, p=1.
type Argon2Params struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
}

// DefaultArgon2Params returns the codec's default Argon2id tuning.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{MemoryKiB: 19456, Time: 2, Parallelism: 1}
}

// PBKDF2Params controls the PBKDF2-SHA256 KDF.
type PBKDF2Params struct {
	Iterations uint32
}

// DefaultPBKDF2Params returns a conservative default iteration count.
func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{Iterations: 100_000}
}

// Algorithm identifies which KDF produced a PHSF string.
type Algorithm int

const (
	Argon2id Algorithm = iota
	PBKDF2Sha256
)

// saltLength returns the random salt size the given algorithm uses by
// default: Argon2's recommended length, or 16 bytes for PBKDF2.
func saltLength(algo Algorithm) int {
	if algo == Argon2id {
		return 16 // password_hash::Salt::RECOMMENDED_LENGTH
	}
	return 16
}

// Derived is the result of deriving a key for encryption: the key itself
// and the PHSF string to persist alongside the ciphertext.
type Derived struct {
	Key  []byte
	PHSF string
}

// DeriveForEncryption generates a random salt, derives a key from password
// under algo/params, and renders the PHC string to store in a phsf chunk.
func DeriveForEncryption(password string, algo Algorithm, argonParams Argon2Params, pbkdf2Params PBKDF2Params) (Derived, error) {
	salt := make([]byte, saltLength(algo))
	if _, err := rand.Read(salt); err != nil {
		return Derived{}, xerrors.Errorf("kdf: generate salt: %w", err)
	}

	var key []byte
	switch algo {
	case Argon2id:
		key = argon2.IDKey([]byte(password), salt, argonParams.Time, argonParams.MemoryKiB, argonParams.Parallelism, KeySize)
	case PBKDF2Sha256:
		key = pbkdf2.Key([]byte(password), salt, int(pbkdf2Params.Iterations), KeySize, sha256.New)
	default:
		return Derived{}, xerrors.Errorf("kdf: unknown algorithm %d", algo)
	}

	phsf, err := encode(algo, argonParams, pbkdf2Params, salt, key)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Key: key, PHSF: phsf}, nil
}

// VerifyAndDeriveKey parses a phsf string, re-derives the key from password
// using the persisted salt and parameters, and compares it in constant time
// to the stored verifier. It returns pna.ErrWrongPassword on mismatch.
func VerifyAndDeriveKey(password, phsf string) ([]byte, error) {
	rec, err := decode(phsf)
	if err != nil {
		return nil, err
	}

	var key []byte
	switch rec.algo {
	case Argon2id:
		key = argon2.IDKey([]byte(password), rec.salt, rec.argon.Time, rec.argon.MemoryKiB, rec.argon.Parallelism, KeySize)
	case PBKDF2Sha256:
		key = pbkdf2.Key([]byte(password), rec.salt, int(rec.pbkdf2.Iterations), KeySize, sha256.New)
	}

	if subtle.ConstantTimeCompare(key, rec.hash) != 1 {
		return nil, pna.ErrWrongPassword
	}
	return key, nil
}
