package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"holder-flow/internal/analytics"
	"holder-flow/internal/reporting"
)

// periodFlags are the request flags shared by the analytics subcommands.
type periodFlags struct {
	start       string
	end         string
	single      string
	granularity string
	threshold   float64
}

func (p *periodFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.start, "start", "", "period start date (YYYY-MM-DD)")
	f.StringVar(&p.end, "end", "", "period end date (YYYY-MM-DD)")
	f.StringVar(&p.single, "d", "", "single date; overrides -start and -end")
	f.StringVar(&p.granularity, "g", "daily", "trend granularity: daily or monthly")
	f.Float64Var(&p.threshold, "threshold", -1, "correlation threshold override in [0,1]")
}

func (p *periodFlags) request() analytics.Request {
	req := analytics.Request{
		StartDate:   p.start,
		EndDate:     p.end,
		SingleDate:  p.single,
		Granularity: p.granularity,
	}
	if p.threshold >= 0 {
		t := p.threshold
		req.CorrelationThreshold = &t
	}
	return req
}

// featureCmd runs one analytics feature and prints its result.
type featureCmd struct {
	name     string
	synopsis string
	period   periodFlags
	format   string
}

func newFeatureCmd(name, synopsis string) *featureCmd {
	return &featureCmd{name: name, synopsis: synopsis}
}

func (c *featureCmd) Name() string     { return c.name }
func (c *featureCmd) Synopsis() string { return c.synopsis }
func (c *featureCmd) Usage() string {
	return fmt.Sprintf(`analyze %s (-start <date> -end <date> | -d <date>) [-g daily|monthly] [-format json|csv|markdown]

  %s.
`, c.name, c.synopsis)
}

func (c *featureCmd) SetFlags(f *flag.FlagSet) {
	c.period.set(f)
	f.StringVar(&c.format, "format", "json", "output format: json, csv or markdown")
}

func (c *featureCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req := c.period.request()
	q, err := req.Validate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	switch c.format {
	case "json", "csv", "markdown":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	report := &reporting.Report{
		GeneratedAt: time.Now().UTC(),
		Start:       q.Start,
		End:         q.End,
		Granularity: q.Granularity,
	}
	if err := c.run(ctx, e.service(), req, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error running %s: %v\n", c.name, err)
		if errors.Is(err, analytics.ErrInvalidRequest) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	if err := c.render(os.Stdout, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run fills the report section of this feature.
func (c *featureCmd) run(ctx context.Context, svc *analytics.Service, req analytics.Request, r *reporting.Report) (err error) {
	switch c.name {
	case analytics.FeatureBuyers:
		r.Buyers, err = svc.Buyers(ctx, req)
	case analytics.FeatureSellers:
		r.Sellers, err = svc.Sellers(ctx, req)
	case analytics.FeatureEntrants:
		r.Entrants, err = svc.NewEntrants(ctx, req)
	case analytics.FeatureBehavior:
		r.Behavior, err = svc.Behavior(ctx, req)
	case analytics.FeatureTiming:
		r.Timing, err = svc.Timing(ctx, req)
	default:
		err = fmt.Errorf("unknown feature %q", c.name)
	}
	return err
}

func (c *featureCmd) render(w io.Writer, r *reporting.Report) error {
	if c.format == "markdown" {
		_, err := io.WriteString(w, reporting.RenderMarkdown(r))
		return err
	}

	var (
		result any
		csv    string
	)
	switch c.name {
	case analytics.FeatureBuyers:
		result, csv = r.Buyers, reporting.RenderBuyersCSV(r.Buyers)
	case analytics.FeatureSellers:
		result, csv = r.Sellers, reporting.RenderSellersCSV(r.Sellers)
	case analytics.FeatureEntrants:
		result, csv = r.Entrants, reporting.RenderEntrantsCSV(r.Entrants)
	case analytics.FeatureBehavior:
		result, csv = r.Behavior, reporting.RenderBehaviorCSV(r.Behavior)
	case analytics.FeatureTiming:
		result, csv = r.Timing, reporting.RenderTimingCSV(r.Timing)
	}

	if c.format == "csv" {
		_, err := io.WriteString(w, csv)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
