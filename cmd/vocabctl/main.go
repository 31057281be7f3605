// Package main is the entry point for vocabctl, the command line front end of
// the vocabulary review scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/vocab-review/internal/cli"
	"github.com/phrazzld/vocab-review/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", redact.Error(err))
		stop()
		os.Exit(1)
	}
}
