package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"PartsKeeper/internal/cli/commands"
	"PartsKeeper/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода pkcli; см. commands.ExitCode.
func run() int {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("PartsKeeper CLI\nVersion: %s\nBuild date: %s\nServer: %s\nToken file: %s\n",
			version, buildDate, cfg.ServerURL, cfg.TokenFile)
		return commands.ExitOK
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return commands.Dispatch(ctx, cfg, flag.Args())
}
