package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/OggyMishra/claude-compte/internal/model"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	defaultWidth     = 120
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
}

// envColumns returns a width override from the COLUMNS environment variable,
// or 0 when unset or unparsable. Checked before the platform probes.
func envColumns() int {
	cols := os.Getenv("COLUMNS")
	if cols == "" {
		return 0
	}
	var width int
	if _, err := fmt.Sscanf(cols, "%d", &width); err == nil && width > 0 {
		return width
	}
	return 0
}

// shouldUseCompact determines if compact mode should be used
func shouldUseCompact(opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return getTerminalWidth() < compactThreshold
}

// FormatNumber formats a number with thousand separators
func FormatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	str := fmt.Sprintf("%d", n)
	negative := n < 0
	if negative {
		str = str[1:]
	}

	var result strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	if negative {
		return "-" + result.String()
	}
	return result.String()
}

// FormatCost formats a cost value as currency
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// shortenSessionID truncates session UUID to first 8 chars
func shortenSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintDaily prints the per-day usage table with a totals row.
func PrintDaily(report *model.Report, opts TableOptions) {
	if len(report.DailyUsage) == 0 {
		fmt.Println("No usage data found.")
		return
	}

	compact := shouldUseCompact(opts)
	totals := report.Totals

	fmt.Println()
	if compact {
		fmt.Printf("%-10s  %12s  %12s  %10s\n", "Date", "Input", "Output", "Cost")
		rule := strings.Repeat("─", 10+2+12+2+12+2+10)
		fmt.Println(rule)
		for _, d := range report.DailyUsage {
			fmt.Printf("%-10s  %12s  %12s  %10s\n",
				d.Date, FormatNumber(d.InputTokens), FormatNumber(d.OutputTokens), FormatCost(d.Cost))
		}
		fmt.Println(rule)
		fmt.Printf("%-10s  %12s  %12s  %10s\n",
			"Total", FormatNumber(totals.TotalInput), FormatNumber(totals.TotalOutput), FormatCost(totals.TotalCost))
		fmt.Println()
		fmt.Println("(Compact mode - expand terminal for full view)")
		return
	}

	fmt.Printf("%-10s  %12s  %12s  %14s  %14s  %10s\n",
		"Date", "Input", "Output", "Cache Create", "Cache Read", "Cost")
	rule := strings.Repeat("─", 10+2+12+2+12+2+14+2+14+2+10)
	fmt.Println(rule)
	for _, d := range report.DailyUsage {
		fmt.Printf("%-10s  %12s  %12s  %14s  %14s  %10s\n",
			d.Date,
			FormatNumber(d.InputTokens),
			FormatNumber(d.OutputTokens),
			FormatNumber(d.CacheCreationTokens),
			FormatNumber(d.CacheReadTokens),
			FormatCost(d.Cost))
	}
	fmt.Println(rule)
	fmt.Printf("%-10s  %12s  %12s  %14s  %14s  %10s\n",
		"Total",
		FormatNumber(totals.TotalInput),
		FormatNumber(totals.TotalOutput),
		FormatNumber(totals.TotalCacheCreation),
		FormatNumber(totals.TotalCacheRead),
		FormatCost(totals.TotalCost))
	fmt.Println()
}

// PrintSessions prints sessions in efficiency-ranking order.
func PrintSessions(report *model.Report, opts TableOptions) {
	if len(report.Sessions) == 0 {
		fmt.Println("No usage data found.")
		return
	}

	compact := shouldUseCompact(opts)

	fmt.Println()
	if compact {
		fmt.Printf("%-8s  %6s  %12s  %10s\n", "Session", "Eff", "Tokens", "Cost")
		for _, s := range report.Sessions {
			fmt.Printf("%-8s  %5.0f%%  %12s  %10s\n",
				shortenSessionID(s.SessionID), s.Efficiency*100, FormatNumber(s.TotalTokens), FormatCost(s.Cost))
		}
		fmt.Println()
		return
	}

	fmt.Printf("%-8s  %-10s  %-28s  %6s  %6s  %12s  %10s\n",
		"Session", "Date", "Model", "Eff", "Turns", "Tokens", "Cost")
	fmt.Println(strings.Repeat("─", 8+2+10+2+28+2+6+2+6+2+12+2+10))
	for _, s := range report.Sessions {
		modelName := s.Model
		if len(modelName) > 28 {
			modelName = modelName[:28]
		}
		fmt.Printf("%-8s  %-10s  %-28s  %5.0f%%  %6d  %12s  %10s\n",
			shortenSessionID(s.SessionID), s.Date, modelName,
			s.Efficiency*100, s.QueryCount, FormatNumber(s.TotalTokens), FormatCost(s.Cost))
	}
	fmt.Println()
}

// PrintJSON writes the full report as indented JSON to stdout.
func PrintJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}
