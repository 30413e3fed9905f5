package main

import (
	"context"
	"flag"
	"os"

	"github.com/ChanTsune/Portable-Network-Archive-sub003"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/chunk"
	"golang.org/x/xerrors"
)

// cmdAppend reopens an archive, rewinds past its AEND (which is truncated
// off), and writes further entries before re-finalizing. It only supports
// single-volume archives.
func cmdAppend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("append", flag.ExitOnError)
	target := fs.String("i", "", "archive to append to")
	cf := registerCodecFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *target == "" {
		return xerrors.Errorf("append: -i is required")
	}
	roots := fs.Args()
	if len(roots) == 0 {
		return xerrors.Errorf("append: at least one file or directory argument is required")
	}

	opts, err := cf.writeOptions()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(*target, os.O_RDWR, 0)
	if err != nil {
		return xerrors.Errorf("append: %w", err)
	}
	defer f.Close()

	aendOffset, archiveNumber, err := findAEND(f)
	if err != nil {
		return xerrors.Errorf("append: %w", err)
	}
	if err := f.Truncate(aendOffset); err != nil {
		return xerrors.Errorf("append: %w", err)
	}
	if _, err := f.Seek(aendOffset, 0); err != nil {
		return xerrors.Errorf("append: %w", err)
	}

	aw := archive.ResumeWriter(f, archiveNumber)
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

// findAEND scans f from the start for its AEND chunk and returns the byte
// offset it begins at, along with the archive's declared archive_number.
func findAEND(f *os.File) (int64, uint32, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return 0, 0, err
	}
	cr := chunk.NewReader(f)
	h, err := archive.ReadMagicAndHeader(f, cr)
	if err != nil {
		return 0, 0, err
	}

	for {
		pos, err := f.Seek(0, 1)
		if err != nil {
			return 0, 0, err
		}
		c, err := cr.ReadChunk()
		if err != nil {
			return 0, 0, err
		}
		if c.Type == pna.AEND {
			return pos, h.ArchiveNumber, nil
		}
	}
}
