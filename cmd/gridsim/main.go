package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridsim/internal/backtest"
	"gridsim/internal/config"
	"gridsim/internal/core"
	"gridsim/internal/engine"
	"gridsim/internal/feed"
	"gridsim/internal/statefile"
	"gridsim/pkg/logging"
)

var (
	// Version information (set via build flags)
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/simulator.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gridsim version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewZapLogger(cfg.System.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting gridsim",
		"version", version,
		"symbol", cfg.Strategy.Symbol,
		"source", cfg.Simulation.Source,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("Simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger core.ILogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	eng, err := engine.New(cfg.EngineConfig(), logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	source := newSource(cfg)
	logger.Info("Fetching price sequence", "source", source.Name())
	prices, timestamps, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	logger.Info("Price sequence loaded", "ticks", len(prices))

	var opts []backtest.Option
	if cfg.Simulation.PacingTPS > 0 {
		opts = append(opts, backtest.WithPacing(cfg.Simulation.PacingTPS))
	}
	sim := backtest.NewSimulator(eng, logger, opts...)

	result, err := sim.Run(ctx, prices, timestamps)
	if err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}
	eng.Stop()
	result.Statistics = eng.Statistics()

	printReport(result)

	if cfg.Store.Enabled {
		store, err := backtest.NewResultStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		defer store.Close()
		if err := store.InsertResult(context.Background(), result); err != nil {
			return fmt.Errorf("persist result: %w", err)
		}
		logger.Info("Result persisted", "run", result.RunID)
	}

	if cfg.Simulation.StateFile != "" {
		if err := statefile.Save(cfg.Simulation.StateFile, eng.ExportState()); err != nil {
			return fmt.Errorf("save state file: %w", err)
		}
		logger.Info("State saved", "path", cfg.Simulation.StateFile)
	}

	return nil
}

func newSource(cfg *config.Config) core.PriceSource {
	switch cfg.Simulation.Source {
	case "csv":
		return feed.NewCSVSource(cfg.Simulation.CSVPath)
	case "binance":
		return feed.NewBinanceSource(feed.BinanceConfig{
			Symbol:   cfg.Strategy.Symbol,
			Interval: cfg.Simulation.BinanceInterval,
			Limit:    cfg.Simulation.Ticks,
		})
	default:
		return feed.NewSyntheticSource(feed.SyntheticConfig{
			BasePrice:  (cfg.Strategy.LowerBound + cfg.Strategy.UpperBound) / 2,
			LowerBound: cfg.Strategy.LowerBound,
			UpperBound: cfg.Strategy.UpperBound,
			Ticks:      cfg.Simulation.Ticks,
			Seed:       cfg.Simulation.Seed,
		})
	}
}

func printReport(res backtest.Result) {
	stats := res.Statistics
	fmt.Println()
	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Run ID:         %s\n", res.RunID)
	fmt.Printf("Symbol:         %s\n", res.Symbol)
	fmt.Printf("Ticks:          %d\n", res.Ticks)
	fmt.Printf("Initial orders: %d\n", res.InitialOrders)
	fmt.Printf("Total trades:   %d (W %d / L %d, win rate %.2f%%)\n",
		stats.TotalTrades, stats.WinningTrades, stats.LosingTrades, stats.WinRate)
	fmt.Printf("Total profit:   %s\n", stats.TotalProfit.StringFixed(2))
	fmt.Printf("Duration:       %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}
