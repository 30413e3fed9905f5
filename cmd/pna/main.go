// Command pna is a thin CLI over the codec: create, extract, list, append,
// split, and concat an archive from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// interruptibleContext returns a context canceled on SIGINT/SIGTERM.
func interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}

type cmd struct {
	fn func(ctx context.Context, args []string) error
}

func funcmain() error {
	verbs := map[string]cmd{
		"create":  {cmdCreate},
		"extract": {cmdExtract},
		"list":    {cmdList},
		"append":  {cmdAppend},
		"split":   {cmdSplit},
		"concat":  {cmdConcat},
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "pna <command> [-flags] <args>\n")
		fmt.Fprintf(os.Stderr, "commands: create, extract, list, append, split, concat\n")
		os.Exit(2)
	}
	verb, rest := args[0], args[1:]

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		os.Exit(2)
	}

	ctx, canc := interruptibleContext()
	defer canc()
	return v.fn(ctx, rest)
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
