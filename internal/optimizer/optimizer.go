package optimizer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/OggyMishra/claude-compte/internal/model"
)

// Tip is one usage recommendation derived from the aggregate.
type Tip struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Thresholds are the policy constants the tip rules compare against.
type Thresholds struct {
	LowCacheHitRate      float64 `yaml:"low_cache_hit_rate"`
	GreatCacheHitRate    float64 `yaml:"great_cache_hit_rate"`
	MinSessionsForTips   int     `yaml:"min_sessions_for_tips"`
	ShortSessionTurns    int     `yaml:"short_session_turns"`
	ShortSessionShare    float64 `yaml:"short_session_share"`
	MinSessionsForShort  int     `yaml:"min_sessions_for_short"`
	HighToolDensity      float64 `yaml:"high_tool_density"`
	MinQueriesForDensity int     `yaml:"min_queries_for_density"`
	HighThinkingRatio    float64 `yaml:"high_thinking_ratio"`
	OpusTokenShare       float64 `yaml:"opus_token_share"`
	ProjectTokenShare    float64 `yaml:"project_token_share"`
	HighInputRatio       float64 `yaml:"high_input_ratio"`
	SpikeMultiplier      float64 `yaml:"spike_multiplier"`
}

// DefaultThresholds returns the stock policy constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowCacheHitRate:      0.5,
		GreatCacheHitRate:    0.8,
		MinSessionsForTips:   3,
		ShortSessionTurns:    3,
		ShortSessionShare:    0.5,
		MinSessionsForShort:  5,
		HighToolDensity:      3,
		MinQueriesForDensity: 10,
		HighThinkingRatio:    0.3,
		OpusTokenShare:       0.5,
		ProjectTokenShare:    0.7,
		HighInputRatio:       20,
		SpikeMultiplier:      3,
	}
}

type rule func(*model.Report, Thresholds) *Tip

// Rules run in a fixed order; each one inspects the aggregate independently
// and emits at most one tip. None of them touch any state outside the report.
var rules = []rule{
	cacheHitRate,
	shortSessions,
	toolDensity,
	thinkingUsage,
	opusHeavy,
	projectConcentration,
	inputOutputRatio,
	usageSpike,
}

// Generate derives ordered usage tips from a report. Pure: no I/O, no state.
func Generate(report *model.Report, th Thresholds) []Tip {
	tips := []Tip{}
	if report == nil || report.Totals.TotalSessions == 0 {
		return tips
	}
	for _, r := range rules {
		if tip := r(report, th); tip != nil {
			tips = append(tips, *tip)
		}
	}
	return tips
}

func cacheHitRate(report *model.Report, th Thresholds) *Tip {
	totals := report.Totals
	if totals.TotalSessions <= th.MinSessionsForTips {
		return nil
	}
	switch {
	case totals.CacheHitRate < th.LowCacheHitRate:
		return &Tip{
			ID:    "low-cache-hit",
			Icon:  "cache",
			Title: "Low cache hit rate",
			Description: fmt.Sprintf(
				"Your cache hit rate is %.0f%%. Try keeping sessions open longer instead of starting new ones frequently. "+
					"Claude Code caches your conversation context — reusing a session means less re-reading.",
				totals.CacheHitRate*100),
			Impact: "high",
		}
	case totals.CacheHitRate >= th.GreatCacheHitRate:
		return &Tip{
			ID:    "great-cache",
			Icon:  "check",
			Title: "Great cache reuse",
			Description: fmt.Sprintf(
				"Your cache hit rate is %.0f%% — you're efficiently reusing conversation context. Keep it up!",
				totals.CacheHitRate*100),
			Impact: "positive",
		}
	default:
		return nil
	}
}

func shortSessions(report *model.Report, th Thresholds) *Tip {
	sessions := report.Sessions
	if len(sessions) <= th.MinSessionsForShort {
		return nil
	}
	short := lo.CountBy(sessions, func(s model.SessionSummary) bool {
		return s.QueryCount <= th.ShortSessionTurns
	})
	if float64(short) <= float64(len(sessions))*th.ShortSessionShare {
		return nil
	}
	return &Tip{
		ID:    "many-short-sessions",
		Icon:  "session",
		Title: "Many short sessions",
		Description: fmt.Sprintf(
			"%d of your %d sessions have %d or fewer turns. Each new session requires Claude to re-read your "+
				"project context. Try staying in one session for related tasks.",
			short, len(sessions), th.ShortSessionTurns),
		Impact: "medium",
	}
}

func toolDensity(report *model.Report, th Thresholds) *Tip {
	sessions := report.Sessions
	if len(sessions) == 0 || report.Totals.TotalQueries <= th.MinQueriesForDensity {
		return nil
	}
	avg := lo.SumBy(sessions, func(s model.SessionSummary) float64 { return s.ToolDensity }) / float64(len(sessions))
	if avg <= th.HighToolDensity {
		return nil
	}
	return &Tip{
		ID:    "high-tool-density",
		Icon:  "tool",
		Title: "High tool usage per turn",
		Description: fmt.Sprintf(
			"Claude averages %.1f tool calls per response. Providing more context upfront (paste relevant code, "+
				"describe file locations) can help Claude work with fewer tool calls.",
			avg),
		Impact: "medium",
	}
}

func thinkingUsage(report *model.Report, th Thresholds) *Tip {
	totals := report.Totals
	if totals.TotalThinkingTurns == 0 || totals.TotalQueries == 0 {
		return nil
	}
	ratio := float64(totals.TotalThinkingTurns) / float64(totals.TotalQueries)
	if ratio <= th.HighThinkingRatio {
		return nil
	}
	return &Tip{
		ID:    "heavy-thinking",
		Icon:  "think",
		Title: "Extended thinking is active often",
		Description: fmt.Sprintf(
			"%.0f%% of responses use extended thinking. For simpler tasks (renaming, small edits), try using "+
				"/fast mode to skip extended thinking and get faster responses.",
			ratio*100),
		Impact: "low",
	}
}

func opusHeavy(report *model.Report, th Thresholds) *Tip {
	totals := report.Totals
	if totals.TotalTokens == 0 {
		return nil
	}
	opusTokens := lo.SumBy(report.ModelBreakdown, func(m model.ModelBreakdown) int64 {
		if strings.Contains(strings.ToLower(m.Model), "opus") {
			return m.TotalTokens
		}
		return 0
	})
	if float64(opusTokens) <= float64(totals.TotalTokens)*th.OpusTokenShare {
		return nil
	}
	return &Tip{
		ID:    "opus-heavy",
		Icon:  "model",
		Title: "Heavy Opus usage",
		Description: fmt.Sprintf(
			"%.0f%% of your tokens go to Opus models. Sonnet handles most coding tasks well and uses fewer "+
				"tokens per turn. Consider reserving Opus for complex architecture decisions.",
			float64(opusTokens)/float64(totals.TotalTokens)*100),
		Impact: "medium",
	}
}

func projectConcentration(report *model.Report, th Thresholds) *Tip {
	if len(report.Projects) <= 1 || report.Totals.TotalTokens == 0 {
		return nil
	}
	top := report.Projects[0]
	ratio := float64(top.TotalTokens) / float64(report.Totals.TotalTokens)
	if ratio <= th.ProjectTokenShare {
		return nil
	}
	return &Tip{
		ID:    "project-concentration",
		Icon:  "project",
		Title: "Concentrated on one project",
		Description: fmt.Sprintf(
			"%.0f%% of your tokens go to %q. This is typical for focused work — just be aware this project "+
				"drives most of your usage.",
			ratio*100, formatProjectName(top.Project)),
		Impact: "info",
	}
}

func inputOutputRatio(report *model.Report, th Thresholds) *Tip {
	totals := report.Totals
	if totals.TotalOutput == 0 || totals.TotalInput == 0 {
		return nil
	}
	allInput := totals.TotalInput + totals.TotalCacheCreation + totals.TotalCacheRead
	ratio := float64(allInput) / float64(totals.TotalOutput)
	if ratio <= th.HighInputRatio {
		return nil
	}
	return &Tip{
		ID:    "high-input-ratio",
		Icon:  "input",
		Title: "Very high input-to-output ratio",
		Description: fmt.Sprintf(
			"Claude is reading %.0fx more tokens than it outputs. This often means large codebases being "+
				"re-scanned. Try using /compact to reduce context size, or use more specific file references "+
				"in your prompts.",
			ratio),
		Impact: "medium",
	}
}

func usageSpike(report *model.Report, th Thresholds) *Tip {
	daily := report.DailyUsage
	if len(daily) <= 7 {
		return nil
	}
	recent := daily[len(daily)-7:]
	avg := float64(lo.SumBy(recent, func(d model.DailyUsage) int64 { return d.TotalTokens })) / 7
	if avg == 0 {
		return nil
	}
	maxDay := lo.MaxBy(recent, func(a, b model.DailyUsage) bool { return a.TotalTokens > b.TotalTokens })
	if float64(maxDay.TotalTokens) <= avg*th.SpikeMultiplier {
		return nil
	}
	return &Tip{
		ID:    "usage-spike",
		Icon:  "spike",
		Title: "Usage spike detected",
		Description: fmt.Sprintf(
			"%s used %s tokens — %.1fx your 7-day average. Heavy days are normal during complex tasks, but "+
				"if this was unintentional, review that day's sessions.",
			maxDay.Date, formatTokens(maxDay.TotalTokens), float64(maxDay.TotalTokens)/avg),
		Impact: "info",
	}
}

// formatProjectName turns the flattened project directory name back into a
// path-like label.
func formatProjectName(name string) string {
	return strings.ReplaceAll(name, "-", "/")
}

func formatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	default:
		return fmt.Sprintf("%d", n)
	}
}
