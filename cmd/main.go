package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"regdocs/ingest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := NewRootCommand(ingest.DefaultDeps())
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
