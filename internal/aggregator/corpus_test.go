package aggregator

import (
	"testing"

	"github.com/OggyMishra/claude-compte/internal/model"
)

func summary(id, date string, tokens model.TokenTotals) model.SessionSummary {
	s := model.SessionSummary{
		SessionID:   id,
		Project:     "-home-user-proj",
		Date:        date,
		Model:       "claude-sonnet-4-20250514",
		QueryCount:  4,
		TokenTotals: tokens,
		ModelUsage: map[string]model.ModelUsage{
			"claude-sonnet-4-20250514": {QueryCount: 4, TokenTotals: tokens},
		},
	}
	s.TotalTokens = tokens.Total()
	s.Efficiency = tokens.EfficiencyScore()
	return s
}

func TestBuildReportEfficiencyRanking(t *testing.T) {
	// Two sessions tied at 0.9 efficiency with different volumes, one at 0.3.
	small := summary("tied-small", "2026-08-01", model.TokenTotals{InputTokens: 100, CacheReadTokens: 900})
	big := summary("tied-big", "2026-08-01", model.TokenTotals{InputTokens: 1_000, CacheReadTokens: 9_000})
	low := summary("low", "2026-08-02", model.TokenTotals{InputTokens: 7_000, CacheReadTokens: 3_000})

	report := BuildReport([]model.SessionSummary{small, low, big}, nil)

	got := []string{report.Sessions[0].SessionID, report.Sessions[1].SessionID, report.Sessions[2].SessionID}
	want := []string{"tied-big", "tied-small", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
}

func TestBuildReportDailyBucketsChronological(t *testing.T) {
	report := BuildReport([]model.SessionSummary{
		summary("s1", "2026-08-03", model.TokenTotals{InputTokens: 10}),
		summary("s2", "2026-08-01", model.TokenTotals{InputTokens: 20}),
		summary("s3", "2026-08-03", model.TokenTotals{InputTokens: 30}),
		summary("s4", "unknown", model.TokenTotals{InputTokens: 40}),
	}, nil)

	// Sparse: only days with activity, in chronological order.
	if len(report.DailyUsage) != 2 {
		t.Fatalf("DailyUsage has %d days, want 2", len(report.DailyUsage))
	}
	if report.DailyUsage[0].Date != "2026-08-01" || report.DailyUsage[1].Date != "2026-08-03" {
		t.Errorf("day order = %s, %s", report.DailyUsage[0].Date, report.DailyUsage[1].Date)
	}
	if report.DailyUsage[1].InputTokens != 40 {
		t.Errorf("2026-08-03 input = %d, want 40", report.DailyUsage[1].InputTokens)
	}
	if report.DailyUsage[1].Sessions != 2 {
		t.Errorf("2026-08-03 sessions = %d, want 2", report.DailyUsage[1].Sessions)
	}
}

func TestBuildReportTotals(t *testing.T) {
	report := BuildReport([]model.SessionSummary{
		summary("s1", "2026-08-01", model.TokenTotals{InputTokens: 100, CacheCreationTokens: 100, CacheReadTokens: 800, OutputTokens: 50}),
	}, nil)

	totals := report.Totals
	if totals.TotalTokens != 1050 {
		t.Errorf("TotalTokens = %d, want 1050", totals.TotalTokens)
	}
	if totals.TotalSessions != 1 || totals.TotalQueries != 4 {
		t.Errorf("sessions/queries = %d/%d", totals.TotalSessions, totals.TotalQueries)
	}
	// 800 cache read out of 1000 prompt-side tokens
	if totals.CacheHitRate != 0.8 {
		t.Errorf("CacheHitRate = %v, want 0.8", totals.CacheHitRate)
	}
	if totals.AvgTokensPerSess != 1050 {
		t.Errorf("AvgTokensPerSession = %d, want 1050", totals.AvgTokensPerSess)
	}
	if totals.AvgTokensPerQuery != 263 {
		t.Errorf("AvgTokensPerQuery = %d, want 263", totals.AvgTokensPerQuery)
	}
}

func TestBuildReportModelAndProjectRollups(t *testing.T) {
	s1 := summary("s1", "2026-08-01", model.TokenTotals{InputTokens: 100})
	s1.ModelUsage = map[string]model.ModelUsage{
		"claude-sonnet-4-20250514": {QueryCount: 2, TokenTotals: model.TokenTotals{InputTokens: 60}},
		"claude-opus-4-5-20251101": {QueryCount: 2, TokenTotals: model.TokenTotals{InputTokens: 40}},
		"unknown":                  {QueryCount: 1, TokenTotals: model.TokenTotals{InputTokens: 5}},
	}
	s2 := summary("s2", "2026-08-01", model.TokenTotals{InputTokens: 200})
	s2.Project = "-home-user-other"

	report := BuildReport([]model.SessionSummary{s1, s2}, nil)

	if len(report.ModelBreakdown) != 2 {
		t.Fatalf("ModelBreakdown has %d models, want 2 (unknown excluded)", len(report.ModelBreakdown))
	}
	if report.ModelBreakdown[0].Model != "claude-sonnet-4-20250514" {
		t.Errorf("top model = %q, want sonnet by volume", report.ModelBreakdown[0].Model)
	}

	if len(report.Projects) != 2 {
		t.Fatalf("Projects has %d entries, want 2", len(report.Projects))
	}
	if report.Projects[0].Project != "-home-user-other" || report.Projects[0].SessionCount != 1 {
		t.Errorf("top project = %+v", report.Projects[0])
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, nil)
	if report.Sessions == nil || report.DailyUsage == nil || report.ToolStats == nil {
		t.Error("empty report has nil slices; JSON consumers expect empty arrays")
	}
	if report.Totals.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d", report.Totals.TotalSessions)
	}
}
