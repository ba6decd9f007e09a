// Package main renders the full pricing report: one fresh pipeline run plus
// any stored experiment grid results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/decision"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/reporting"
	"pricing-lab/internal/storage"
	chstore "pricing-lab/internal/storage/clickhouse"
	"pricing-lab/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	scenarioID := flag.String("scenario", domain.ScenarioBase, "Scenario for the fresh run")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for stored experiment results")
	flag.Parse()

	ctx := context.Background()

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

	var scenario domain.ScenarioConfig
	found := false
	for _, s := range domain.AllScenarios() {
		if s.ScenarioID == *scenarioID {
			scenario, found = s, true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Unknown scenario %q\n", *scenarioID)
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

	orch := orchestrator.New(orchestrator.Options{
		Config:   cfg,
		Strategy: cfg.StrategyConfig(),
		Scenario: scenario,
		Logger:   zerolog.Nop(),
	})
	run, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	report, err := reporting.NewGenerator(resultStore).Generate(ctx, run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"RUN_REPORT.md": reporting.RenderMarkdown(report),
		"kpis.csv":      reporting.RenderKPICSV(append([]domain.PortfolioKPI{report.KPI}, report.SegmentKPIs...)),
	}
	if len(report.ExperimentResults) > 0 {
		files["experiments.csv"] = reporting.RenderExperimentCSV(report.ExperimentResults)
	}
	if run.Gate != nil {
		builder := decision.NewBuilder()
		gateInput := builder.FromKPI(run.Scenario, run.Strategy, run.KPI, run.OutOfControlPct, run.DriftPValues)
		files["ADEQUACY_GATE.md"] = decision.RenderMarkdown(gateInput, run.Gate)
	}

	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
