package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/ChristianF88/recsort/cli"
)

func main() {
	defer klog.Flush()

	// set up a context that is canceled when a command is interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			klog.Info("received interrupt signal, stopping after the current pass")
			cancel()
		case <-ctx.Done():
		}

		// Allow any further SIGTERM or SIGINT to kill process
		signal.Stop(interrupt)
	}()

	if err := cli.App.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error running CLI app:", err)
		klog.Flush()
		os.Exit(1)
	}
}
