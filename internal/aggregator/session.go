package aggregator

import (
	"time"
	"unicode/utf8"

	"github.com/OggyMishra/claude-compte/internal/model"
	"github.com/OggyMishra/claude-compte/internal/parser"
	"github.com/OggyMishra/claude-compte/internal/pricing"
)

const (
	maxPromptLen      = 300
	maxFirstPromptLen = 200
)

// SummarizeSession folds one session's deduplicated events into per-session
// totals plus per-prompt rollups. historyPrompt is the display text recorded
// for this session in history.jsonl, if any. Returns ok=false for sessions
// with no assistant turns; those carry no usage worth reporting.
func SummarizeSession(file parser.SessionFile, events []model.UsageEvent, historyPrompt string) (model.SessionSummary, []model.PromptStat, bool) {
	summary := model.SessionSummary{
		SessionID:  file.SessionID,
		Project:    file.Project,
		ToolCounts: make(map[string]int64),
		ModelUsage: make(map[string]model.ModelUsage),
	}

	var firstTS, lastTS time.Time
	var firstUserPrompt string
	var prompts []model.PromptStat
	var current model.PromptStat

	flush := func() {
		if current.Prompt != "" && current.Total() > 0 {
			current.TotalTokens = current.Total()
			prompts = append(prompts, current)
		}
		current = model.PromptStat{}
	}

	for _, e := range events {
		if !e.Timestamp.IsZero() {
			if firstTS.IsZero() || e.Timestamp.Before(firstTS) {
				firstTS = e.Timestamp
			}
			if e.Timestamp.After(lastTS) {
				lastTS = e.Timestamp
			}
		}

		if e.MessageID == "" {
			if e.UserPrompt != "" {
				if firstUserPrompt == "" {
					firstUserPrompt = e.UserPrompt
				}
				if e.UserPrompt != current.Prompt {
					flush()
					current.Prompt = truncate(e.UserPrompt, maxPromptLen)
				}
			}
			continue
		}

		cost := pricing.Cost(e.Tokens, e.Model)

		summary.QueryCount++
		summary.TokenTotals.Add(e.Tokens)
		summary.Cost += cost
		if e.HasThinking {
			summary.ThinkingTurns++
		}
		summary.TotalToolCalls += len(e.Tools)
		for _, tool := range e.Tools {
			summary.ToolCounts[tool]++
		}

		mu := summary.ModelUsage[e.Model]
		mu.QueryCount++
		mu.TokenTotals.Add(e.Tokens)
		mu.Cost += cost
		summary.ModelUsage[e.Model] = mu

		current.TokenTotals.Add(e.Tokens)
		current.Cost += cost
	}
	flush()

	if summary.QueryCount == 0 {
		return model.SessionSummary{}, nil, false
	}

	summary.Timestamp = firstTS
	summary.LastTimestamp = lastTS
	summary.Date = "unknown"
	if !firstTS.IsZero() {
		summary.Date = firstTS.Local().Format("2006-01-02")
	}

	summary.TotalTokens = summary.TokenTotals.Total()
	summary.Efficiency = summary.TokenTotals.EfficiencyScore()
	summary.ToolDensity = float64(summary.TotalToolCalls) / float64(summary.QueryCount)
	summary.Model = primaryModel(summary.ModelUsage)

	summary.FirstPrompt = historyPrompt
	if summary.FirstPrompt == "" {
		summary.FirstPrompt = firstUserPrompt
	}
	if summary.FirstPrompt == "" {
		summary.FirstPrompt = "(no prompt)"
	}
	summary.FirstPrompt = truncate(summary.FirstPrompt, maxFirstPromptLen)

	for i := range prompts {
		prompts[i].Date = summary.Date
		prompts[i].SessionID = summary.SessionID
		prompts[i].Model = summary.Model
	}

	return summary, prompts, true
}

// primaryModel returns the model with the most turns, ties broken by name so
// the choice is deterministic.
func primaryModel(usage map[string]model.ModelUsage) string {
	best := "unknown"
	bestCount := 0
	for name, mu := range usage {
		if mu.QueryCount > bestCount || (mu.QueryCount == bestCount && name < best) {
			best = name
			bestCount = mu.QueryCount
		}
	}
	return best
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
