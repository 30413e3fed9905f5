package entry

import (
	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/internal/kdf"
	"golang.org/x/xerrors"
)

// WriteOptions enumerates the pipeline knobs recognized when building an
// entry: compression codec, encryption algorithm and cipher mode, and
// (when encryption is enabled) the password and KDF parameters.
type WriteOptions struct {
	Compression pna.Compression
	Encryption  pna.Encryption
	CipherMode  pna.CipherMode
	Password    string

	// Argon2Params is used when set; otherwise PBKDF2Params is used when
	// set; otherwise Argon2id with the codec's defaults is used. Only
	// meaningful when Encryption != pna.EncryptionNone.
	Argon2Params *kdf.Argon2Params
	PBKDF2Params *kdf.PBKDF2Params
}

// Validate rejects contradictory option combinations at build time, before
// any bytes are written.
func (o WriteOptions) Validate() error {
	if o.Encryption == pna.EncryptionNone {
		if o.CipherMode != pna.CipherModeNone {
			return xerrors.Errorf("cipher mode set without encryption: %w", pna.ErrInvalidOptions)
		}
		if o.Password != "" {
			return xerrors.Errorf("password set without encryption: %w", pna.ErrInvalidOptions)
		}
		if o.Argon2Params != nil || o.PBKDF2Params != nil {
			return xerrors.Errorf("KDF parameters set without encryption: %w", pna.ErrInvalidOptions)
		}
		return nil
	}

	if o.CipherMode == pna.CipherModeNone {
		return xerrors.Errorf("encryption set without a cipher mode: %w", pna.ErrInvalidOptions)
	}
	if o.Password == "" {
		return xerrors.Errorf("encryption set without a password: %w", pna.ErrInvalidOptions)
	}
	if o.Argon2Params != nil && o.PBKDF2Params != nil {
		return xerrors.Errorf("both argon2 and pbkdf2 parameters set: %w", pna.ErrInvalidOptions)
	}
	return nil
}

// kdfSelection resolves which KDF algorithm and parameters this option set
// implies, defaulting to Argon2id.
func (o WriteOptions) kdfSelection() (kdf.Algorithm, kdf.Argon2Params, kdf.PBKDF2Params) {
	return o.KDFSelection()
}

// KDFSelection resolves which KDF algorithm and parameters this option set
// implies, defaulting to Argon2id. Exported for the solid package, which
// derives its own outer-pipeline key from a WriteOptions the same way
// newPayloadBuilder does.
func (o WriteOptions) KDFSelection() (kdf.Algorithm, kdf.Argon2Params, kdf.PBKDF2Params) {
	if o.PBKDF2Params != nil {
		return kdf.PBKDF2Sha256, kdf.Argon2Params{}, *o.PBKDF2Params
	}
	if o.Argon2Params != nil {
		return kdf.Argon2id, *o.Argon2Params, kdf.PBKDF2Params{}
	}
	return kdf.Argon2id, kdf.DefaultArgon2Params(), kdf.PBKDF2Params{}
}

// ReadOptions carries the password needed to decrypt an encrypted entry.
type ReadOptions struct {
	Password string
}
