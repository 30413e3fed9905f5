package main

import (
	"flag"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"golang.org/x/xerrors"
)

// codecFlags is the set of -compression/-encryption/-cipher-mode/-password
// flags shared by create, append, and split.
type codecFlags struct {
	compression string
	encryption  string
	cipherMode  string
	password    string
}

func registerCodecFlags(fs *flag.FlagSet) *codecFlags {
	cf := &codecFlags{}
	fs.StringVar(&cf.compression, "compression", "deflate", "compression codec: store, deflate, zstd, xz")
	fs.StringVar(&cf.encryption, "encryption", "none", "encryption algorithm: none, aes256, camellia256")
	fs.StringVar(&cf.cipherMode, "cipher-mode", "ctr", "cipher mode: ctr, cbc (ignored when -encryption=none)")
	fs.StringVar(&cf.password, "password", "", "password for encryption/decryption")
	return cf
}

func (cf *codecFlags) writeOptions() (entry.WriteOptions, error) {
	opts := entry.WriteOptions{Password: cf.password}

	switch cf.compression {
	case "store":
		opts.Compression = pna.CompressionStore
	case "deflate":
		opts.Compression = pna.CompressionDeflate
	case "zstd":
		opts.Compression = pna.CompressionZstd
	case "xz":
		opts.Compression = pna.CompressionXz
	default:
		return opts, xerrors.Errorf("unknown -compression %q", cf.compression)
	}

	switch cf.encryption {
	case "none":
		return opts, nil
	case "aes256":
		opts.Encryption = pna.EncryptionAes256
	case "camellia256":
		opts.Encryption = pna.EncryptionCamellia256
	default:
		return opts, xerrors.Errorf("unknown -encryption %q", cf.encryption)
	}

	switch cf.cipherMode {
	case "ctr":
		opts.CipherMode = pna.CipherModeCtr
	case "cbc":
		opts.CipherMode = pna.CipherModeCbc
	default:
		return opts, xerrors.Errorf("unknown -cipher-mode %q", cf.cipherMode)
	}

	return opts, nil
}
