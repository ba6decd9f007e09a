// Package main runs the scenario x strategy experiment grid.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/experiment"
	"pricing-lab/internal/reporting"
	"pricing-lab/internal/storage"
	chstore "pricing-lab/internal/storage/clickhouse"
	"pricing-lab/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	outputDir := flag.String("output-dir", "output", "Output directory for the results CSV")
	workers := flag.Int("workers", 0, "Concurrent grid cells (0 = GOMAXPROCS)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (in-memory when empty)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling experiments...\n", sig)
		cancel()
	}()

	var cfg *config.Config
	var err error
	if *configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	var resultStore storage.ExperimentResultStore
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ClickHouse error: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		resultStore = chstore.NewExperimentResultStore(conn)
	}

	runner := experiment.NewRunner(experiment.Options{
		Config:      cfg,
		ResultStore: resultStore,
		Workers:     *workers,
		Logger:      logger,
	})

	report, err := runner.Run(ctx, domain.AllScenarios(), domain.AllStrategies())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Experiment error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Experiment grid completed: %d results\n", len(report.Results))
	for _, r := range report.Results {
		lossRatio := "n/a"
		if r.LossRatio != nil {
			lossRatio = fmt.Sprintf("%.4f", *r.LossRatio)
		}
		fmt.Printf("  %-18s %-13s GWP %12.0f  loss ratio %s\n", r.Scenario, r.Strategy, r.GWP, lossRatio)
	}
	if len(report.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
	csv := reporting.RenderExperimentCSV(report.Results)
	path := filepath.Join(*outputDir, "experiments.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to %s\n", path)
}
