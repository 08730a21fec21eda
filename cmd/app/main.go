package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"ops-portal/internal/adapters/cli"
	"ops-portal/internal/adapters/repl"
	"ops-portal/internal/app"
	"ops-portal/internal/config"
	"ops-portal/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so command output on stdout stays clean.
	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	rt, err := app.Open(ctx, cfg, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		log.Fatal("unable to start", zap.Error(err))
	}

	stdin := bufio.NewReader(os.Stdin)
	if len(os.Args) > 1 {
		err = cli.Run(ctx, rt.Service, os.Args[1:], cli.Options{
			In:        stdin,
			Out:       os.Stdout,
			JWTSecret: cfg.JWT.Secret,
		})
	} else {
		repl.Run(ctx, rt.Service, stdin, os.Stdout, 0)
	}

	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if cerr := rt.Close(closeCtx); cerr != nil {
		log.Warn("shutdown incomplete", zap.Error(cerr))
	}
	_ = log.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
