// Package main runs the pricing pipeline once and writes the run report.
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
	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/reporting"
	"pricing-lab/internal/storage"
	"pricing-lab/internal/storage/memory"
	"pricing-lab/internal/storage/migrations"
	pgstore "pricing-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	scenarioID := flag.String("scenario", domain.ScenarioBase, "Scenario: base, medical_inflation, price_war, combined_shock")
	outputDir := flag.String("output-dir", "output", "Output directory for generated reports")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (in-memory when empty)")
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
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	scenario, err := findScenario(*scenarioID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	policyStore, decisionStore, cleanup, err := createStores(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	orch := orchestrator.New(orchestrator.Options{
		Config:        cfg,
		Strategy:      cfg.StrategyConfig(),
		Scenario:      scenario,
		PolicyStore:   policyStore,
		DecisionStore: decisionStore,
		Logger:        logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pipeline completed: %s\n", result.RunID)
	fmt.Printf("  Policies:  %d (%d quotable, %d declined)\n",
		len(result.Policies), result.KPI.Policies, result.KPI.Declined)
	fmt.Printf("  Base price: %.2f | Target price: %.2f\n", result.BasePrice, result.TargetPrice)
	fmt.Printf("  GWP: %.0f | Contribution: %.0f\n", result.KPI.GWP, result.KPI.Contribution)
	fmt.Printf("  Gate: %s\n", result.Gate.Decision)

	if err := writeReports(ctx, *outputDir, result); err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reports written to %s/\n", *outputDir)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func findScenario(id string) (domain.ScenarioConfig, error) {
	for _, s := range domain.AllScenarios() {
		if s.ScenarioID == id {
			return s, nil
		}
	}
	return domain.ScenarioConfig{}, fmt.Errorf("unknown scenario %q", id)
}

func createStores(ctx context.Context, postgresDSN string) (storage.PolicyStore, storage.PriceDecisionStore, func(), error) {
	if postgresDSN == "" {
		return memory.NewPolicyStore(), memory.NewPriceDecisionStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return pgstore.NewPolicyStore(pool), pgstore.NewPriceDecisionStore(pool), pool.Close, nil
}

func writeReports(ctx context.Context, dir string, result *orchestrator.RunResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	report, err := reporting.NewGenerator(nil).Generate(ctx, result)
	if err != nil {
		return err
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(dir, "RUN_REPORT.md"), []byte(md), 0644); err != nil {
		return err
	}

	kpiCSV := reporting.RenderKPICSV(append([]domain.PortfolioKPI{result.KPI}, result.SegmentKPIs...))
	return os.WriteFile(filepath.Join(dir, "kpis.csv"), []byte(kpiCSV), 0644)
}
