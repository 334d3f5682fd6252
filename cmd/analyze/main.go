// Command analyze imports holder position snapshots and runs the analytics features from
// the command line.
//
//	analyze load -f positions.jsonl
//	analyze buyers -start 2025-03-01 -end 2025-03-31 -format csv
//	analyze report -start 2025-03-01 -end 2025-03-31 -o out/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"holder-flow/internal/analytics"
	"holder-flow/internal/config"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
	"holder-flow/internal/storage/backend"
)

var (
	configPath = flag.String("config", os.Getenv("HOLDERFLOW_CONFIG"), "Path to YAML config file (optional)")
	driver     = flag.String("driver", "", "Storage driver: memory, postgres, sqlite (overrides storage.driver)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	Register(subcommands.DefaultCommander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&loadCmd{}, "data")

	c.Register(newFeatureCmd(analytics.FeatureBuyers, "list holders whose position grew in the period"), "analytics")
	c.Register(newFeatureCmd(analytics.FeatureSellers, "list holders whose position shrank or disappeared"), "analytics")
	c.Register(newFeatureCmd(analytics.FeatureEntrants, "list holders first seen in the period"), "analytics")
	c.Register(newFeatureCmd(analytics.FeatureBehavior, "classify trading behavior and detect coordination"), "analytics")
	c.Register(newFeatureCmd(analytics.FeatureTiming, "score buy/sell timing and market sentiment"), "analytics")
	c.Register(&reportCmd{}, "analytics")
}

// env holds what every subcommand needs. Close releases the stores.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	stores *backend.Stores
}

func (e *env) Close() { e.stores.Close() }

func (e *env) service() *analytics.Service {
	return analytics.New(analytics.Options{
		Snapshots: e.stores.Snapshots,
		Holders:   e.stores.Holders,
		Config:    analytics.FromSettings(e.cfg.Analytics),
		Logger:    e.log.With("analytics"),
	})
}

// openEnv loads the configuration and opens the configured stores.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(os.Stderr, "analyze", cfg.Logging.Level, cfg.Logging.Format)
	stores, err := backend.Open(ctx, cfg.Storage, observability.DefaultMetrics, log.With("storage"))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, stores: stores}, nil
}
