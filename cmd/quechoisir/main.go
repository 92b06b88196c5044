// QueChoisir scores consumer products with a reasoning service and ranks
// them by user-weighted criteria.
//
// Usage:
//
//	quechoisir catalog
//	quechoisir analyze <name>
//	quechoisir top
//	quechoisir compare <name> <name> [<name>]
//	quechoisir weights [show|set <criterion> <value>|reset|normalized]
//	quechoisir watch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"QueChoisir/internal/app"
	"QueChoisir/internal/config"
	"QueChoisir/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "catalog", "analyze", "top", "compare", "weights", "watch":
		if err := run(os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	out := os.Stdout
	switch command {
	case "catalog":
		return application.Catalog(ctx, out)
	case "analyze":
		if len(args) != 1 {
			return fmt.Errorf("usage: quechoisir analyze <name>")
		}
		return application.Analyze(ctx, out, args[0])
	case "top":
		return application.Top(ctx, out)
	case "compare":
		return application.Compare(ctx, out, args)
	case "weights":
		return application.Weights(ctx, out, args)
	case "watch":
		return application.Watch(ctx)
	}
	return nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `QueChoisir: product scoring and ranking

Usage:
  quechoisir catalog                                List catalog products
  quechoisir analyze <name>                         Analyze one product
  quechoisir top                                    Refresh and rank featured products
  quechoisir compare <name> <name> [<name>]         Compare up to three products
  quechoisir weights [show|set <c> <v>|reset|normalized]
                                                    Inspect or change criterion weights
  quechoisir watch                                  Periodic digest and /metrics endpoint

Criteria: reviews, repairability, reputation, consumption, price

Configuration: QUECHOISIR_CONFIG points to a YAML file; LOG_LEVEL,
ANALYSIS_PROVIDER, ANTHROPIC_API_KEY, SETTINGS_BACKEND and friends override it.
`)
}
