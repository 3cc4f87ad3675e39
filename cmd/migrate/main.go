package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ruralpay/minibank/internal/config"
	"github.com/ruralpay/minibank/internal/database"
	"github.com/ruralpay/minibank/internal/logging"
)

func main() {
	envFile := flag.String("env", ".env", "Path to an optional env file")
	target := flag.Int64("to", 0, "With down: roll back to this version instead of one step")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *envFile, *target); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd, envFile string, target int64) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		return migrator.Up(ctx)
	case "status":
		return migrator.Status(ctx)
	case "down":
		return migrator.Down(ctx, target)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up       apply all pending migrations
  status   list applied and pending migrations
  down     roll back the latest migration (or to -to VERSION)

Flags:
`)
	flag.PrintDefaults()
}
