package model

import "time"

// TokenTotals holds token counts split by kind. It is embedded in every
// aggregate so the JSON field names stay consistent across the API.
type TokenTotals struct {
	InputTokens         int64 `json:"inputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	OutputTokens        int64 `json:"outputTokens"`
}

// Total returns the sum across all token kinds.
func (t TokenTotals) Total() int64 {
	return t.InputTokens + t.CacheCreationTokens + t.CacheReadTokens + t.OutputTokens
}

// Add accumulates another set of totals into t.
func (t *TokenTotals) Add(o TokenTotals) {
	t.InputTokens += o.InputTokens
	t.CacheCreationTokens += o.CacheCreationTokens
	t.CacheReadTokens += o.CacheReadTokens
	t.OutputTokens += o.OutputTokens
}

// EfficiencyScore is the fraction of prompt-side tokens served from cache
// reads rather than fresh input or cache writes.
func (t TokenTotals) EfficiencyScore() float64 {
	denom := t.InputTokens + t.CacheReadTokens + t.CacheCreationTokens
	if denom == 0 {
		return 0
	}
	return float64(t.CacheReadTokens) / float64(denom)
}

// UsageEvent is one authoritative record extracted from a session log line.
// Events carrying a MessageID are assistant turns; events without one are
// isolated tool-result lines that contribute timestamps only.
type UsageEvent struct {
	MessageID   string
	Timestamp   time.Time
	Model       string
	Tokens      TokenTotals
	Tools       []string
	HasThinking bool
	UserPrompt  string
}

// ModelPricing contains per-token pricing for a model (USD per token).
type ModelPricing struct {
	InputCostPerToken         float64
	OutputCostPerToken        float64
	CacheCreationCostPerToken float64
	CacheReadCostPerToken     float64
}

// ModelUsage is a session's usage attributed to one model.
type ModelUsage struct {
	QueryCount int `json:"queryCount"`
	TokenTotals
	Cost float64 `json:"cost"`
}

// SessionSummary aggregates one session file.
type SessionSummary struct {
	SessionID     string    `json:"sessionId"`
	Project       string    `json:"project"`
	Date          string    `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
	LastTimestamp time.Time `json:"lastTimestamp"`
	FirstPrompt   string    `json:"firstPrompt"`
	Model         string    `json:"model"`
	QueryCount    int       `json:"queryCount"`
	TokenTotals
	TotalTokens    int64                 `json:"totalTokens"`
	Cost           float64               `json:"cost"`
	ThinkingTurns  int                   `json:"thinkingTurns"`
	TotalToolCalls int                   `json:"totalToolCalls"`
	ToolDensity    float64               `json:"toolDensity"`
	Efficiency     float64               `json:"efficiency"`
	ToolCounts     map[string]int64      `json:"toolCounts,omitempty"`
	ModelUsage     map[string]ModelUsage `json:"modelUsage,omitempty"`
}

// DailyUsage is one day's rollup across all sessions.
type DailyUsage struct {
	Date string `json:"date"`
	TokenTotals
	TotalTokens int64   `json:"totalTokens"`
	Cost        float64 `json:"cost"`
	Sessions    int     `json:"sessions"`
	Queries     int     `json:"queries"`
}

// ModelBreakdown is the corpus-wide rollup for one model.
type ModelBreakdown struct {
	Model string `json:"model"`
	TokenTotals
	TotalTokens int64   `json:"totalTokens"`
	Cost        float64 `json:"cost"`
	QueryCount  int     `json:"queryCount"`
}

// ProjectUsage is the corpus-wide rollup for one project directory.
type ProjectUsage struct {
	Project string `json:"project"`
	TokenTotals
	TotalTokens  int64   `json:"totalTokens"`
	Cost         float64 `json:"cost"`
	SessionCount int     `json:"sessionCount"`
	QueryCount   int     `json:"queryCount"`
}

// PromptStat is the token rollup for one user prompt and the responses it
// triggered.
type PromptStat struct {
	Prompt string `json:"prompt"`
	TokenTotals
	TotalTokens int64   `json:"totalTokens"`
	Cost        float64 `json:"cost"`
	Date        string  `json:"date"`
	SessionID   string  `json:"sessionId"`
	Model       string  `json:"model"`
}

// ToolStat counts invocations of one tool across the corpus.
type ToolStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Totals holds corpus-wide counters and derived ratios.
type Totals struct {
	TotalTokens        int64   `json:"totalTokens"`
	TotalInput         int64   `json:"totalInput"`
	TotalOutput        int64   `json:"totalOutput"`
	TotalCacheCreation int64   `json:"totalCacheCreation"`
	TotalCacheRead     int64   `json:"totalCacheRead"`
	TotalCost          float64 `json:"totalCost"`
	TotalSessions      int     `json:"totalSessions"`
	TotalQueries       int     `json:"totalQueries"`
	TotalThinkingTurns int     `json:"totalThinkingTurns"`
	CacheHitRate       float64 `json:"cacheHitRate"`
	AvgTokensPerSess   int64   `json:"avgTokensPerSession"`
	AvgTokensPerQuery  int64   `json:"avgTokensPerQuery"`
}

// Report is the full corpus aggregate served to the dashboard. A report is
// built in one pass and never mutated afterwards; consumers swap whole
// pointers.
type Report struct {
	Sessions       []SessionSummary `json:"sessions"`
	DailyUsage     []DailyUsage     `json:"dailyUsage"`
	ModelBreakdown []ModelBreakdown `json:"modelBreakdown"`
	TopPrompts     []PromptStat     `json:"topPrompts"`
	Projects       []ProjectUsage   `json:"projects"`
	ToolStats      []ToolStat       `json:"toolStats"`
	Totals         Totals           `json:"totals"`
}

// EmptyReport returns a report with all lists initialized so JSON consumers
// see empty arrays instead of nulls.
func EmptyReport() *Report {
	return &Report{
		Sessions:       []SessionSummary{},
		DailyUsage:     []DailyUsage{},
		ModelBreakdown: []ModelBreakdown{},
		TopPrompts:     []PromptStat{},
		Projects:       []ProjectUsage{},
		ToolStats:      []ToolStat{},
	}
}
