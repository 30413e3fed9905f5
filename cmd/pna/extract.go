package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"golang.org/x/xerrors"
)

func cmdExtract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	input := fs.String("i", "", "input archive path")
	outDir := fs.String("C", ".", "directory to extract into")
	password := fs.String("password", "", "password for encrypted entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return xerrors.Errorf("extract: -i is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		return xerrors.Errorf("extract: %w", err)
	}
	defer f.Close()

	ar, err := archive.Open(f, entry.ReadOptions{Password: *password})
	if err != nil {
		return err
	}

	var locks archive.PathLockRegistry
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := ar.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if item.Entry == nil {
			return xerrors.Errorf("extract: solid blocks are not yet supported by this command")
		}
		if err := extractEntry(*outDir, item.Entry, *password, &locks); err != nil {
			return err
		}
	}
}

func extractEntry(outDir string, er *entry.Reader, password string, locks *archive.PathLockRegistry) error {
	rel, err := er.Path()
	if err != nil {
		return err
	}
	dst := filepath.Join(outDir, rel)

	locks.Lock(dst)
	defer locks.Unlock(dst)

	switch er.Header().DataKind {
	case pna.KindDirectory:
		return os.MkdirAll(dst, 0o755)

	case pna.KindSymlink:
		target, err := readAll(er, password)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		os.Remove(dst)
		return os.Symlink(string(target), dst)

	default: // file, hardlink
		data, err := readAll(er, password)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	}
}

func readAll(er *entry.Reader, password string) ([]byte, error) {
	r, err := er.Reader(entry.ReadOptions{Password: password})
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
