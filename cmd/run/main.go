package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/archive"
	"github.com/kdalton/phase-ensemble/internal/experiment"
	"github.com/kdalton/phase-ensemble/internal/report"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to TOML config (defaults used when empty)")
	name := flag.String("experiment", "", "experiment to run (overrides config)")
	iterations := flag.Int("iterations", 0, "iteration count (overrides config)")
	seed := flag.Int64("seed", -1, "run seed (overrides config)")
	outPath := flag.String("out", "", "write the JSON report to this path")
	dbPath := flag.String("db", "", "archive the run to this SQLite database")
	list := flag.Bool("list", false, "list available experiments and exit")
	debug := flag.Bool("debug", false, "verbose development logging")
	flag.Parse()

	if *list {
		for _, n := range experiment.Names() {
			fmt.Println(n)
		}
		return
	}

	logger, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	cfg := experiment.DefaultConfig()
	if *configPath != "" {
		cfg, err = experiment.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(2)
		}
	}
	if *name != "" {
		cfg.Run.Experiment = *name
	}
	if *iterations > 0 {
		cfg.Run.Iterations = *iterations
	}
	if *seed >= 0 {
		cfg.Run.Seed = *seed
	}

	logger.Info("starting run",
		zap.String("experiment", cfg.Run.Experiment),
		zap.Int("iterations", cfg.Run.Iterations),
		zap.Int64("seed", cfg.Run.Seed),
	)

	res, err := experiment.Run(cfg.Run.Experiment, cfg, logger)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}

	rep := report.FromResult(res)
	if err := report.WriteText(rep, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "write digest: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := report.WriteJSON(rep, *outPath); err != nil {
			logger.Error("write report", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("report written", zap.String("path", *outPath))
	}

	if *dbPath != "" {
		store, err := archive.NewStore(*dbPath)
		if err != nil {
			logger.Error("open archive", zap.Error(err))
			os.Exit(1)
		}
		defer store.Close()

		runID, err := store.SaveRun(cfg, res)
		if err != nil {
			logger.Error("archive run", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("run archived", zap.String("run_id", runID), zap.String("db", *dbPath))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// #endregion main
