package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	splitpkg "github.com/ChanTsune/Portable-Network-Archive-sub003/split"
	"golang.org/x/xerrors"
)

// cmdSplit repacks the trees named by args into a sequence of volumes
// named <prefix>.<NNN>, each filled up to -max-size bytes. Only FDAT chunks
// are sliced to fit; other chunks, including the ANXT that closes a full
// volume, are written whole and can take a volume past -max-size.
func cmdSplit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	prefix := fs.String("o", "", "output volume prefix")
	maxSize := fs.Uint64("max-size", 1<<20, "maximum bytes per volume")
	cf := registerCodecFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *prefix == "" {
		return xerrors.Errorf("split: -o is required")
	}
	roots := fs.Args()
	if len(roots) == 0 {
		return xerrors.Errorf("split: at least one file or directory argument is required")
	}

	opts, err := cf.writeOptions()
	if err != nil {
		return err
	}

	volumeNumber := 1
	openVolume := func() (io.WriteCloser, error) {
		name := *prefix + "." + pad3(volumeNumber)
		volumeNumber++
		return os.Create(name)
	}

	first, err := openVolume()
	if err != nil {
		return err
	}

	sw, err := splitpkg.NewWriter(first, *maxSize, openVolume)
	if err != nil {
		return err
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addSplitTree(sw, root, opts); err != nil {
			return err
		}
	}
	return sw.Finalize()
}

func addSplitTree(sw *splitpkg.Writer, root string, opts entry.WriteOptions) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		e, buildErr := buildEntry(path, info, opts)
		if buildErr != nil {
			return xerrors.Errorf("split: %s: %w", path, buildErr)
		}
		return sw.AddEntry(e)
	})
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// cmdConcat reverses split: it validates and concatenates a sequence of
// volumes back into one archive file.
func cmdConcat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("concat", flag.ExitOnError)
	output := fs.String("o", "", "output archive path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return xerrors.Errorf("concat: -o is required")
	}
	volumePaths := fs.Args()
	if len(volumePaths) == 0 {
		return xerrors.Errorf("concat: at least one volume path is required")
	}

	var readers []io.Reader
	for _, p := range volumePaths {
		f, err := os.Open(p)
		if err != nil {
			return xerrors.Errorf("concat: %w", err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	out, err := os.Create(*output)
	if err != nil {
		return xerrors.Errorf("concat: %w", err)
	}
	defer out.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := splitpkg.Concat(readers, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "concat: wrote %s from %d volumes\n", *output, len(volumePaths))
	return nil
}
