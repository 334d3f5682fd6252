package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"holder-flow/internal/reporting"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	period    periodFlags
	outputDir string
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "write a markdown report and CSV exports of every feature"
}
func (*reportCmd) Usage() string {
	return `analyze report (-start <date> -end <date> | -d <date>) [-g daily|monthly] [-o <dir>]

  Runs every analytics feature for the period and writes REPORT.md plus one CSV per
  section into the output directory.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.period.set(f)
	f.StringVar(&c.outputDir, "o", "report", "output directory for generated files")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req := c.period.request()
	if _, err := req.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	report, err := reporting.NewGenerator(e.service()).Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		return subcommands.ExitFailure
	}

	paths, err := reporting.WriteFiles(c.outputDir, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, p := range paths {
		fmt.Printf("Generated: %s\n", p)
	}
	return subcommands.ExitSuccess
}
