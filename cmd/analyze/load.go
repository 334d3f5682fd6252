package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"holder-flow/internal/cache"
	"holder-flow/internal/ingestion"
	"holder-flow/internal/orchestrator"
)

// loadCmd holds the flags for the 'load' subcommand.
type loadCmd struct {
	file      string
	batchSize int
}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "import position snapshots from a JSON lines file" }
func (*loadCmd) Usage() string {
	return `analyze load [-f <file>] [-batch <n>]

  Imports pre-normalized position records into the configured store, one JSON object per line:

    {"holder_id":"h1","holder_name":"Alpha","date":"2025-03-01","shares":100,"percentage":1.5}

  Reads stdin when -f is omitted. Drops cached results when a Redis cache is configured.
`
}

func (c *loadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON lines file to import (default stdin)")
	f.IntVar(&c.batchSize, "batch", orchestrator.DefaultBatchSize, "records per bulk insert")
}

func (c *loadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.batchSize < 1 {
		fmt.Fprintln(os.Stderr, "Error: -batch must be positive")
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	if c.file != "" {
		file, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	opts := orchestrator.Options{
		Source:    ingestion.NewReader(in),
		Snapshots: e.stores.Primary,
		Holders:   e.stores.Holders,
		Mirror:    e.stores.Mirror,
		Logger:    e.log.With("import"),
		BatchSize: c.batchSize,
	}
	if e.cfg.Cache.Enabled {
		rc, err := cache.NewRedis(ctx, e.cfg.Cache.Addr, e.cfg.Cache.Password, e.cfg.Cache.DB, e.cfg.Cache.TTL)
		if err != nil {
			e.log.Warnf("cache unavailable, cached results are not invalidated: %v", err)
		} else {
			defer rc.Close()
			opts.Cache = rc
		}
	}

	result, err := orchestrator.New(opts).Run(ctx)
	if result != nil {
		fmt.Printf("imported %d snapshots in %d batches (%d holders created, %d existing, %d mirrored)\n",
			result.SnapshotsImported, result.Batches, result.HoldersCreated, result.HoldersExisting, result.SnapshotsMirrored)
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing snapshots: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
