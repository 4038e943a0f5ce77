package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/merit/internal/loadtest"
)

// Default configuration constants.
const (
	defaultApplications = 10000
	defaultTopN         = 50
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

func newLoadtestCmd() *cobra.Command {
	var (
		cfg     loadtest.Config
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit synthetic applications to a running service and verify the ranking",
		Long: `Loadtest generates synthetic portfolios, submits them concurrently to
POST /applications, waits until the service has evaluated them and then checks
GET /rank/{id} against GET /ranking.

Examples:
  meritctl loadtest
  meritctl loadtest --applications 50000 --workers 16 --url http://localhost:8080
  meritctl loadtest --seed 42 --output applications.json --log run.log`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := loadtest.SetupLogging(cmd.OutOrStdout(), logFile)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
			defer cancel()

			stats, err := loadtest.Run(ctx, &cfg)
			if err != nil {
				return fmt.Errorf("load test failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted %d of %d applications in %s\n",
				stats.Accepted, stats.Submitted, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Applications, "applications", defaultApplications, "Number of applications to generate and submit")
	f.IntVar(&cfg.TopN, "top", defaultTopN, "Number of ranking entries to fetch")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.DurationVar(&cfg.WaitTimeout, "wait", loadtest.DefaultWaitTimeout, "How long to wait for queued evaluations")
	f.StringVar(&cfg.Ruleset, "ruleset", "", "Ordinance version for every application; empty uses the server default")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed; 0 picks a random seed")
	f.StringVar(&cfg.OutputFile, "output", "", "Write the generated applications to this JSON file")
	f.StringVar(&logFile, "log", "", "Also append log output to this file")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	return cmd
}
