package main

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"ops-portal/internal/config"
	"ops-portal/internal/db"
	"ops-portal/internal/logger"
)

const usage = "usage: migrate up | down | steps <n> | version"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	m, err := db.NewMigrator(cfg.Database.URL, log)
	if err != nil {
		log.Fatal("failed to open migrator", zap.Error(err))
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatal("steps must be an integer", zap.String("value", os.Args[2]))
		}
		err = m.Steps(n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("failed to read schema version", zap.Error(verr))
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return
	default:
		log.Fatal(usage, zap.String("command", os.Args[1]))
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}
