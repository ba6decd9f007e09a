// Package main provides the pricing service:
// - Pipeline (scheduled): portfolio → risk → demand → optimization → gate
// - HTTP API: health, latest KPIs, experiment results, Prometheus metrics
// - Websocket monitor feed: control-chart summary after every run
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/observability"
	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/storage"
	chstore "pricing-lab/internal/storage/clickhouse"
	"pricing-lab/internal/storage/memory"
	"pricing-lab/internal/storage/migrations"
	pgstore "pricing-lab/internal/storage/postgres"
)

// Server holds the scheduled pipeline and its HTTP surface.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger

	policyStore   storage.PolicyStore
	decisionStore storage.PriceDecisionStore
	resultStore   storage.ExperimentResultStore

	upgrader websocket.Upgrader

	mu       sync.Mutex
	lastRun  *orchestrator.RunResult
	runs     int
	running  bool
	started  time.Time
	clients  map[*websocket.Conn]bool
	clientMu sync.Mutex
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "server").Logger()

	var cfg *config.Config
	var err error
	if *configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policyStore, decisionStore, resultStore, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	server := &Server{
		cfg:           cfg,
		logger:        logger,
		policyStore:   policyStore,
		decisionStore: decisionStore,
		resultStore:   resultStore,
		started:       time.Now(),
		clients:       make(map[*websocket.Conn]bool),
		upgrader:      websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.routes(),
	}

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown")
		}

		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-done:
		}
	}()

	go server.runLoop(ctx)

	logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server")
	}
	close(done)
	logger.Info().Msg("shutdown complete")
}

// createStores builds the configured storage backends.
func createStores(ctx context.Context, cfg *config.Config) (storage.PolicyStore, storage.PriceDecisionStore, storage.ExperimentResultStore, func(), error) {
	if cfg.Storage.UseMemory || (cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickhouseDSN == "") {
		return memory.NewPolicyStore(), memory.NewPriceDecisionStore(), memory.NewExperimentResultStore(), func() {}, nil
	}

	var (
		policyStore   storage.PolicyStore           = memory.NewPolicyStore()
		decisionStore storage.PriceDecisionStore    = memory.NewPriceDecisionStore()
		resultStore   storage.ExperimentResultStore = memory.NewExperimentResultStore()
		cleanups      []func()
	)

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		policyStore = pgstore.NewPolicyStore(pool)
		decisionStore = pgstore.NewPriceDecisionStore(pool)
		cleanups = append(cleanups, pool.Close)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			for _, c := range cleanups {
				c()
			}
			return nil, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		resultStore = chstore.NewExperimentResultStore(conn)
		cleanups = append(cleanups, func() { conn.Close() })
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return policyStore, decisionStore, resultStore, cleanup, nil
}

// runLoop runs the pipeline immediately and then on the configured interval.
func (s *Server) runLoop(ctx context.Context) {
	s.runPipeline(ctx)

	ticker := time.NewTicker(s.cfg.Server.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

func (s *Server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info().Msg("pipeline already running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	scenario := domain.ScenarioConfigBase
	strategy := s.cfg.StrategyConfig()

	orch := orchestrator.New(orchestrator.Options{
		Config:        s.cfg,
		Strategy:      strategy,
		Scenario:      scenario,
		PolicyStore:   s.policyStore,
		DecisionStore: s.decisionStore,
		Reference:     s.referencePortfolio(),
		Logger:        s.logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline run failed")
		observability.RecordPipelineRun(scenario.ScenarioID, strategy.StrategyID, "error")
		return
	}

	observability.RecordPipelineRun(scenario.ScenarioID, strategy.StrategyID, "success")
	observability.RecordPhase("full_run", time.Since(start).Seconds())
	observability.RecordBook(result.BasePrice, result.TargetPrice, result.KPI.GWP,
		result.KPI.RenewalRate, result.OutOfControlPct, result.KPI.LossRatio)
	observability.RecordPricedPolicies(result.KPI.Policies, result.KPI.Declined)
	observability.DefaultMetrics.LastSuccessfulRunUnix.SetToCurrentTime()

	s.mu.Lock()
	s.lastRun = result
	s.runs++
	s.mu.Unlock()

	s.logger.Info().
		Str("run_id", result.RunID).
		Dur("elapsed", time.Since(start)).
		Str("decision", string(result.Gate.Decision)).
		Msg("pipeline run completed")

	s.broadcast(result)
}

// referencePortfolio exposes the previous run's portfolio as the drift
// baseline for the next one.
func (s *Server) referencePortfolio() []*domain.PolicyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	return s.lastRun.Policies
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/kpi", s.handleKPI)
	mux.HandleFunc("/experiments", s.handleExperiments)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/ws/monitor", s.handleMonitor)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// KPIResponse is the JSON payload of /kpi.
type KPIResponse struct {
	RunID           string              `json:"run_id"`
	Scenario        string              `json:"scenario"`
	Strategy        string              `json:"strategy"`
	Decision        string              `json:"decision"`
	KPI             domain.PortfolioKPI `json:"kpi"`
	BasePrice       float64             `json:"base_price"`
	TargetPrice     float64             `json:"target_price"`
	OutOfControlPct float64             `json:"out_of_control_pct"`
	Runs            int                 `json:"runs"`
	Uptime          string              `json:"uptime"`
}

func (s *Server) handleKPI(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.lastRun
	runs := s.runs
	s.mu.Unlock()

	if last == nil {
		http.Error(w, "no completed run yet", http.StatusNotFound)
		return
	}

	resp := KPIResponse{
		RunID:           last.RunID,
		Scenario:        last.Scenario,
		Strategy:        last.Strategy,
		Decision:        string(last.Gate.Decision),
		KPI:             last.KPI,
		BasePrice:       last.BasePrice,
		TargetPrice:     last.TargetPrice,
		OutOfControlPct: last.OutOfControlPct,
		Runs:            runs,
		Uptime:          time.Since(s.started).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	results, err := s.resultStore.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// MonitorUpdate is the payload streamed to websocket monitor clients after
// every pipeline run.
type MonitorUpdate struct {
	RunID           string   `json:"run_id"`
	Decision        string   `json:"decision"`
	GWP             float64  `json:"gwp"`
	LossRatio       *float64 `json:"loss_ratio"`
	RenewalRate     float64  `json:"renewal_rate"`
	OutOfControlPct float64  `json:"out_of_control_pct"`
	Timestamp       int64    `json:"timestamp"`
}

func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade")
		return
	}

	// Push the latest run immediately so new clients are not blind until the
	// next scheduled run. The snapshot is written BEFORE the connection is
	// registered: broadcasts only touch registered connections, so each
	// connection has a single writer at any time.
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()
	if last != nil {
		if err := conn.WriteJSON(updateFrom(last)); err != nil {
			conn.Close()
			return
		}
	}

	s.clientMu.Lock()
	s.clients[conn] = true
	observability.DefaultMetrics.MonitorClients.Set(float64(len(s.clients)))
	s.clientMu.Unlock()

	// Reader loop: drop the client when it closes the connection.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.clientMu.Lock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
	observability.DefaultMetrics.MonitorClients.Set(float64(len(s.clients)))
	s.clientMu.Unlock()
}

func (s *Server) broadcast(result *orchestrator.RunResult) {
	update := updateFrom(result)

	s.clientMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.clientMu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(update); err != nil {
			s.dropClient(c)
		}
	}
}

func updateFrom(result *orchestrator.RunResult) MonitorUpdate {
	return MonitorUpdate{
		RunID:           result.RunID,
		Decision:        string(result.Gate.Decision),
		GWP:             result.KPI.GWP,
		LossRatio:       result.KPI.LossRatio,
		RenewalRate:     result.KPI.RenewalRate,
		OutOfControlPct: result.OutOfControlPct,
		Timestamp:       time.Now().Unix(),
	}
}
