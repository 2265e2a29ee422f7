package main

import (
	"context"
	"os"
	"os/signal"

	"career-backend/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	telemetry.Sync()
	if err != nil {
		os.Exit(1)
	}
}
