package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Holder Flow Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Period: %s to %s | Granularity: %s\n\n", r.Start, r.End, r.Granularity))

	// Overview
	sb.WriteString("## Overview\n\n")
	if rows := r.Overview(); len(rows) > 0 {
		sb.WriteString("| Category | Holders | Events | Total Change | Largest Move |\n")
		sb.WriteString("|----------|---------|--------|--------------|--------------|\n")
		for _, row := range rows {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				row.Category, row.Holders, row.Events, row.TotalChange, row.LargestMove))
		}
	} else {
		sb.WriteString("No activity data available.\n")
	}
	sb.WriteString("\n")

	// Buyers
	sb.WriteString("## Active Buyers\n\n")
	if r.Buyers != nil && len(r.Buyers.Buyers) > 0 {
		sb.WriteString("| Holder | Initial | Final | Increase | Increase% | Days | First Buy | Last Buy |\n")
		sb.WriteString("|--------|---------|-------|----------|-----------|------|-----------|----------|\n")
		for _, b := range r.Buyers.Buyers {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s | %d | %s | %s |\n",
				holderLabel(b.HolderID, b.HolderName), b.InitialShares, b.FinalShares,
				b.TotalIncrease, b.PercentIncrease, b.BuyingDays, b.FirstBuyDate, b.LastBuyDate))
		}
	} else {
		sb.WriteString("No buyers in period.\n")
	}
	sb.WriteString("\n")

	// Sellers
	sb.WriteString("## Active Sellers\n\n")
	if r.Sellers != nil && len(r.Sellers.Sellers) > 0 {
		sb.WriteString("| Holder | Initial | Final | Decrease | Decrease% | Days | Exit | Last Seen |\n")
		sb.WriteString("|--------|---------|-------|----------|-----------|------|------|-----------|\n")
		for _, s := range r.Sellers.Sellers {
			exit := string(s.ExitStatus)
			if exit == "" {
				exit = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s | %d | %s | %s |\n",
				holderLabel(s.HolderID, s.HolderName), s.InitialShares, s.FinalShares,
				s.TotalDecrease, s.PercentDecrease, s.SellingDays, exit, s.LastSeenDate))
		}
	} else {
		sb.WriteString("No sellers in period.\n")
	}
	sb.WriteString("\n")

	// Entrants
	sb.WriteString("## New Entrants\n\n")
	if r.Entrants != nil && len(r.Entrants.Entrants) > 0 {
		sb.WriteString("| Holder | Entry Date | Entry Shares | Current Shares | Current% | Growth% |\n")
		sb.WriteString("|--------|------------|--------------|----------------|----------|---------|\n")
		for _, e := range r.Entrants.Entrants {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %.4f | %s |\n",
				holderLabel(e.HolderID, e.HolderName), e.EntryDate, e.EntryShares,
				e.CurrentShares, e.CurrentPercentage, e.GrowthPercent))
		}
	} else {
		sb.WriteString("No new entrants in period.\n")
	}
	sb.WriteString("\n")

	// Behavior
	sb.WriteString("## Behavior\n\n")
	if counts := r.LabelCounts(); len(counts) > 0 {
		writeCounts(&sb, "Label", counts)
	} else {
		sb.WriteString("No behavior profiles available.\n\n")
	}

	if r.Behavior != nil {
		sb.WriteString("### Correlated Pairs\n\n")
		if len(r.Behavior.Pairs) > 0 {
			sb.WriteString("| Holder A | Holder B | Correlation | Shared Buys | Shared Sells |\n")
			sb.WriteString("|----------|----------|-------------|-------------|--------------|\n")
			for _, p := range r.Behavior.Pairs {
				sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %d | %d |\n",
					p.HolderA, p.HolderB, p.Correlation, len(p.OverlappingBuyDates), len(p.OverlappingSellDates)))
			}
		} else {
			sb.WriteString("No correlated pairs.\n")
		}
		sb.WriteString("\n")

		sb.WriteString("### Coordinated Activity\n\n")
		if len(r.Behavior.Coordinated) > 0 {
			sb.WriteString("| Date | Kind | Participants |\n")
			sb.WriteString("|------|------|--------------|\n")
			for _, c := range r.Behavior.Coordinated {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.Date, c.Kind, strings.Join(c.Participants, ", ")))
			}
		} else {
			sb.WriteString("No coordinated activity.\n")
		}
		sb.WriteString("\n")

		// Suspicious patterns are always listed when present
		if len(r.Behavior.Suspicious) > 0 {
			sb.WriteString("### Suspicious Patterns\n\n")
			for _, p := range r.Behavior.Suspicious {
				sb.WriteString(fmt.Sprintf("- **%s** (%.2f): %s\n", p.Kind, p.Score, p.Description))
			}
			sb.WriteString("\n")
		}
	}

	// Timing
	sb.WriteString("## Timing\n\n")
	if counts := r.TraderTypeCounts(); len(counts) > 0 {
		writeCounts(&sb, "Trader Type", counts)
	} else {
		sb.WriteString("No timing profiles available.\n\n")
	}
	if r.Timing != nil && len(r.Timing.Sentiment) > 0 {
		sb.WriteString("### Market Sentiment\n\n")
		sb.WriteString("| Period | Buyers | Sellers | Net Change | Ratio | Sentiment |\n")
		sb.WriteString("|--------|--------|---------|------------|-------|-----------|\n")
		for _, p := range r.Timing.Sentiment {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.2f | %s |\n",
				p.Period, p.Buyers, p.Sellers, p.NetChange, p.Ratio, p.Sentiment))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeCounts(sb *strings.Builder, title string, counts []LabelCount) {
	sb.WriteString(fmt.Sprintf("| %s | Holders |\n", title))
	sb.WriteString("|-------|---------|\n")
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", c.Label, c.Count))
	}
	sb.WriteString("\n")
}

func holderLabel(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}
