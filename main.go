package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"polycode/content-agent/cli"
	"polycode/content-agent/config"
	"polycode/content-agent/provider"
	"polycode/content-agent/toolserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Config: cfg,
		NewLLM: provider.NewFactory(cfg),
		Dialer: toolserver.Dial,
	}
	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
