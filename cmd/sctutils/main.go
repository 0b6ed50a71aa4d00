package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sctutils/internal/cli"
	"sctutils/internal/config"
	"sctutils/internal/logging"
	"sctutils/internal/storage"
)

// exitFailure is returned for any failed operation: missing file, failed
// command or missing dependency.
const exitFailure = 2

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sctutils: load config:", err)
		return exitFailure
	}

	log, closer, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sctutils: logging:", err)
		return exitFailure
	}
	defer closer.Close()

	store, err := storage.New(cfg.Paths.DatabasePath)
	if err != nil {
		log.Warn("history disabled", "path", cfg.Paths.DatabasePath, "error", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRoot(cfg, log, store, os.Stdout)
	if err := cli.NewRootCmd(root).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "sctutils:", err)
		return exitFailure
	}
	return 0
}
