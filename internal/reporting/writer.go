package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

type outputFile struct {
	name    string
	content string
}

// files lists the rendered outputs of r. Sections missing from the report are skipped.
func files(r *Report) []outputFile {
	out := []outputFile{{"REPORT.md", RenderMarkdown(r)}}
	if r.Buyers != nil {
		out = append(out,
			outputFile{"buyers.csv", RenderBuyersCSV(r.Buyers)},
			outputFile{"buyers_trend.csv", RenderTrendCSV(r.Buyers.Trend)})
	}
	if r.Sellers != nil {
		out = append(out,
			outputFile{"sellers.csv", RenderSellersCSV(r.Sellers)},
			outputFile{"sellers_trend.csv", RenderTrendCSV(r.Sellers.Trend)})
	}
	if r.Entrants != nil {
		out = append(out, outputFile{"entrants.csv", RenderEntrantsCSV(r.Entrants)})
	}
	if r.Behavior != nil {
		out = append(out,
			outputFile{"behavior.csv", RenderBehaviorCSV(r.Behavior)},
			outputFile{"correlated_pairs.csv", RenderPairsCSV(r.Behavior.Pairs)})
	}
	if r.Timing != nil {
		out = append(out,
			outputFile{"timing.csv", RenderTimingCSV(r.Timing)},
			outputFile{"sentiment.csv", RenderSentimentCSV(r.Timing.Sentiment)})
	}
	return out
}

// WriteFiles writes REPORT.md and one CSV per section into dir, creating it if needed.
// Returns the written paths in order.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, f := range files(r) {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
