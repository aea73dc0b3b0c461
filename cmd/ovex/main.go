// Command ovex calls the OVEX exchange API from the command line and prints
// the JSON responses.
//
// Credentials are read from OVEX_API_KEY_ID and OVEX_SECRET_KEY or from a
// config file given with --config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
