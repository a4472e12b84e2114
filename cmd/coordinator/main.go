// Command coordinator runs the cluster coordinator: the job dispatch
// pipeline and worker lifecycle/heartbeat protocol described in spec.md.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/distcluster/coordinator/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize coordinator: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + a.Cfg.Port
	a.Log.Info("coordinator starting", "addr", addr)
	if err := a.Run(ctx, addr); err != nil {
		a.Log.Error("coordinator exited with error", "error", err)
		os.Exit(1)
	}
	a.Log.Info("coordinator shut down cleanly")
}
