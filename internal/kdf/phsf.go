package kdf

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"golang.org/x/xerrors"
)

// record is the parsed form of a PHC string, carrying whichever of the
// algorithm-specific parameter sets applies.
type record struct {
	algo   Algorithm
	argon  Argon2Params
	pbkdf2 PBKDF2Params
	salt   []byte
	hash   []byte
}

const (
	argon2idID     = "argon2id"
	pbkdf2Sha256ID = "pbkdf2-sha256"
)

func encode(algo Algorithm, argonParams Argon2Params, pbkdf2Params PBKDF2Params, salt, hash []byte) (string, error) {
	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)

	switch algo {
	case Argon2id:
		return fmt.Sprintf("$%s$v=19$m=%d,t=%d,p=%d$%s$%s",
			argon2idID, argonParams.MemoryKiB, argonParams.Time, argonParams.Parallelism, saltB64, hashB64), nil
	case PBKDF2Sha256:
		return fmt.Sprintf("$%s$i=%d$%s$%s", pbkdf2Sha256ID, pbkdf2Params.Iterations, saltB64, hashB64), nil
	default:
		return "", xerrors.Errorf("kdf: unknown algorithm %d", algo)
	}
}

func decode(phsf string) (record, error) {
	fields := strings.Split(phsf, "$")
	// A well-formed PHC string has a leading empty field from the first
	// "$", e.g. "$argon2id$v=19$m=...$salt$hash" splits into
	// ["", "argon2id", "v=19", "m=...", "salt", "hash"].
	if len(fields) == 0 || fields[0] != "" {
		return record{}, xerrors.Errorf("kdf: malformed phsf string: %w", pna.ErrCorruptChunk)
	}
	fields = fields[1:]
	if len(fields) == 0 {
		return record{}, xerrors.Errorf("kdf: malformed phsf string: %w", pna.ErrCorruptChunk)
	}

	switch fields[0] {
	case argon2idID:
		return decodeArgon2id(fields)
	case pbkdf2Sha256ID:
		return decodePBKDF2Sha256(fields)
	default:
		return record{}, xerrors.Errorf("kdf: unknown phsf algorithm %q: %w", fields[0], pna.ErrCorruptChunk)
	}
}

func decodeArgon2id(fields []string) (record, error) {
	// ["argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	if len(fields) != 5 {
		return record{}, xerrors.Errorf("kdf: malformed argon2id phsf string: %w", pna.ErrCorruptChunk)
	}
	params, err := parseParamBlock(fields[2])
	if err != nil {
		return record{}, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil {
		return record{}, xerrors.Errorf("kdf: decode salt: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return record{}, xerrors.Errorf("kdf: decode hash: %w", err)
	}

	m, err := parseUint32(params, "m")
	if err != nil {
		return record{}, err
	}
	t, err := parseUint32(params, "t")
	if err != nil {
		return record{}, err
	}
	p, err := parseUint32(params, "p")
	if err != nil {
		return record{}, err
	}

	return record{
		algo: Argon2id,
		argon: Argon2Params{
			MemoryKiB:   m,
			Time:        t,
			Parallelism: uint8(p),
		},
		salt: salt,
		hash: hash,
	}, nil
}

func decodePBKDF2Sha256(fields []string) (record, error) {
	// ["pbkdf2-sha256", "i=...", salt, hash]
	if len(fields) != 4 {
		return record{}, xerrors.Errorf("kdf: malformed pbkdf2-sha256 phsf string: %w", pna.ErrCorruptChunk)
	}
	params, err := parseParamBlock(fields[1])
	if err != nil {
		return record{}, err
	}
	iterations, err := parseUint32(params, "i")
	if err != nil {
		return record{}, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return record{}, xerrors.Errorf("kdf: decode salt: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil {
		return record{}, xerrors.Errorf("kdf: decode hash: %w", err)
	}

	return record{
		algo:   PBKDF2Sha256,
		pbkdf2: PBKDF2Params{Iterations: iterations},
		salt:   salt,
		hash:   hash,
	}, nil
}

// parseParamBlock parses a "k=v,k=v,..." block into a map.
func parseParamBlock(block string) (map[string]string, error) {
	out := make(map[string]string)
	for _, kv := range strings.Split(block, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("kdf: malformed parameter %q: %w", kv, pna.ErrCorruptChunk)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

func parseUint32(params map[string]string, key string) (uint32, error) {
	v, ok := params[key]
	if !ok {
		return 0, xerrors.Errorf("kdf: missing parameter %q: %w", key, pna.ErrCorruptChunk)
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, xerrors.Errorf("kdf: parameter %q: %w", key, err)
	}
	return uint32(n), nil
}
