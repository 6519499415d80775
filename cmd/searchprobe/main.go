package main

import (
	"context"
	"log/slog"
	"searchprobe/cmd/searchprobe/commands"
	"searchprobe/lib/serviceutil"
	"searchprobe/lib/telemetry"
	"time"
)

func main() {
	telemetry.InitSlog(false)

	ctx := serviceutil.SignalContext()
	t, err := telemetry.SetupFromEnv(ctx, "searchprobe")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}

	cmdErr := commands.ExecuteContext(ctx)

	// spans must be flushed before Fatal exits the process
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	err = t.Shutdown(shutdownCtx)
	cancel()
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}

	if cmdErr != nil {
		serviceutil.Fatal("searchprobe failed", cmdErr)
	}
}
