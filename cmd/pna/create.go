package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"golang.org/x/xerrors"
)

func cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	output := fs.String("o", "", "output archive path")
	cf := registerCodecFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return xerrors.Errorf("create: -o is required")
	}
	roots := fs.Args()
	if len(roots) == 0 {
		return xerrors.Errorf("create: at least one file or directory argument is required")
	}

	opts, err := cf.writeOptions()
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return xerrors.Errorf("create: %w", err)
	}
	defer f.Close()

	aw := archive.NewWriter(f)
	if err := aw.WriteHeader(); err != nil {
		return err
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addTree(aw, root, opts); err != nil {
			return err
		}
	}

	return aw.Finalize()
}

func addTree(aw *archive.Writer, root string, opts entry.WriteOptions) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		e, err := buildEntry(path, info, opts)
		if err != nil {
			return xerrors.Errorf("create: %s: %w", path, err)
		}
		return aw.AddEntry(e)
	})
}

func buildEntry(path string, info os.FileInfo, opts entry.WriteOptions) (*entry.Entry, error) {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		b, err := entry.NewSymlink(path, target, opts)
		if err != nil {
			return nil, err
		}
		return b.Build()

	case info.IsDir():
		b, err := entry.NewDir(path)
		if err != nil {
			return nil, err
		}
		return b.Build()

	default:
		b, err := entry.NewFile(path, opts)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if _, err := io.Copy(b, f); err != nil {
			return nil, err
		}
		return b.Build()
	}
}
