// Package main is the criteria command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/criteria/pkg/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
