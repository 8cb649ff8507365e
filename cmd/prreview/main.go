// Command prreview reviews unified diffs with an LLM, from the command line or
// as a GitHub webhook service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "prreview:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
}
