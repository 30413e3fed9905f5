package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ChanTsune/Portable-Network-Archive-sub003/archive"
	"github.com/ChanTsune/Portable-Network-Archive-sub003/entry"
	"golang.org/x/xerrors"
)

func cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	input := fs.String("i", "", "input archive path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return xerrors.Errorf("list: -i is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		return xerrors.Errorf("list: %w", err)
	}
	defer f.Close()

	ar, err := archive.Open(f, entry.ReadOptions{})
	if err != nil {
		return err
	}

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
		if item.Entry != nil {
			h := item.Entry.Header()
			fmt.Printf("%s\t%s\n", h.DataKind, h.Path)
			continue
		}
		fmt.Println("<solid block>")
	}
}
