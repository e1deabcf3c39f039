package aggregator

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/OggyMishra/claude-compte/internal/model"
)

const topPromptLimit = 50

// BuildReport combines all session summaries into the corpus-wide rollups.
// The returned report is freshly allocated on every call and must not be
// mutated afterwards; readers swap whole pointers.
func BuildReport(summaries []model.SessionSummary, prompts []model.PromptStat) *model.Report {
	report := model.EmptyReport()
	if len(summaries) == 0 {
		return report
	}

	dailyMap := make(map[string]*model.DailyUsage)
	modelMap := make(map[string]*model.ModelBreakdown)
	projectMap := make(map[string]*model.ProjectUsage)
	toolMap := make(map[string]int64)

	for _, s := range summaries {
		if s.Date != "unknown" {
			d, ok := dailyMap[s.Date]
			if !ok {
				d = &model.DailyUsage{Date: s.Date}
				dailyMap[s.Date] = d
			}
			d.TokenTotals.Add(s.TokenTotals)
			d.Cost += s.Cost
			d.Sessions++
			d.Queries += s.QueryCount
		}

		for name, mu := range s.ModelUsage {
			if name == "unknown" || name == "<synthetic>" {
				continue
			}
			m, ok := modelMap[name]
			if !ok {
				m = &model.ModelBreakdown{Model: name}
				modelMap[name] = m
			}
			m.TokenTotals.Add(mu.TokenTotals)
			m.Cost += mu.Cost
			m.QueryCount += mu.QueryCount
		}

		p, ok := projectMap[s.Project]
		if !ok {
			p = &model.ProjectUsage{Project: s.Project}
			projectMap[s.Project] = p
		}
		p.TokenTotals.Add(s.TokenTotals)
		p.Cost += s.Cost
		p.SessionCount++
		p.QueryCount += s.QueryCount

		for tool, count := range s.ToolCounts {
			toolMap[tool] += count
		}
	}

	report.Sessions = rankSessions(summaries)

	report.DailyUsage = lo.Map(lo.Values(dailyMap), func(d *model.DailyUsage, _ int) model.DailyUsage {
		d.TotalTokens = d.TokenTotals.Total()
		return *d
	})
	sort.Slice(report.DailyUsage, func(i, j int) bool {
		return report.DailyUsage[i].Date < report.DailyUsage[j].Date
	})

	report.ModelBreakdown = lo.Map(lo.Values(modelMap), func(m *model.ModelBreakdown, _ int) model.ModelBreakdown {
		m.TotalTokens = m.TokenTotals.Total()
		return *m
	})
	sort.Slice(report.ModelBreakdown, func(i, j int) bool {
		return report.ModelBreakdown[i].TotalTokens > report.ModelBreakdown[j].TotalTokens
	})

	report.Projects = lo.Map(lo.Values(projectMap), func(p *model.ProjectUsage, _ int) model.ProjectUsage {
		p.TotalTokens = p.TokenTotals.Total()
		return *p
	})
	sort.Slice(report.Projects, func(i, j int) bool {
		return report.Projects[i].TotalTokens > report.Projects[j].TotalTokens
	})

	report.ToolStats = lo.MapToSlice(toolMap, func(name string, count int64) model.ToolStat {
		return model.ToolStat{Name: name, Count: count}
	})
	sort.Slice(report.ToolStats, func(i, j int) bool {
		if report.ToolStats[i].Count != report.ToolStats[j].Count {
			return report.ToolStats[i].Count > report.ToolStats[j].Count
		}
		return report.ToolStats[i].Name < report.ToolStats[j].Name
	})

	topPrompts := append([]model.PromptStat(nil), prompts...)
	sort.SliceStable(topPrompts, func(i, j int) bool {
		return topPrompts[i].TotalTokens > topPrompts[j].TotalTokens
	})
	if len(topPrompts) > topPromptLimit {
		topPrompts = topPrompts[:topPromptLimit]
	}
	report.TopPrompts = topPrompts

	report.Totals = buildTotals(report.Sessions)
	return report
}

// rankSessions orders sessions by descending cache-efficiency score so the
// best and worst sessions land at opposite ends. Equal scores fall back to
// token volume, then to stable input order.
func rankSessions(summaries []model.SessionSummary) []model.SessionSummary {
	ranked := append([]model.SessionSummary(nil), summaries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Efficiency != ranked[j].Efficiency {
			return ranked[i].Efficiency > ranked[j].Efficiency
		}
		return ranked[i].TotalTokens > ranked[j].TotalTokens
	})
	return ranked
}

func buildTotals(sessions []model.SessionSummary) model.Totals {
	totals := model.Totals{
		TotalInput:         lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.InputTokens }),
		TotalOutput:        lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.OutputTokens }),
		TotalCacheCreation: lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.CacheCreationTokens }),
		TotalCacheRead:     lo.SumBy(sessions, func(s model.SessionSummary) int64 { return s.CacheReadTokens }),
		TotalCost:          lo.SumBy(sessions, func(s model.SessionSummary) float64 { return s.Cost }),
		TotalSessions:      len(sessions),
		TotalQueries:       lo.SumBy(sessions, func(s model.SessionSummary) int { return s.QueryCount }),
		TotalThinkingTurns: lo.SumBy(sessions, func(s model.SessionSummary) int { return s.ThinkingTurns }),
	}
	totals.TotalTokens = totals.TotalInput + totals.TotalOutput + totals.TotalCacheCreation + totals.TotalCacheRead

	if promptSide := totals.TotalCacheRead + totals.TotalCacheCreation + totals.TotalInput; promptSide > 0 {
		totals.CacheHitRate = float64(totals.TotalCacheRead) / float64(promptSide)
	}
	if totals.TotalSessions > 0 {
		totals.AvgTokensPerSess = int64(math.Round(float64(totals.TotalTokens) / float64(totals.TotalSessions)))
	}
	if totals.TotalQueries > 0 {
		totals.AvgTokensPerQuery = int64(math.Round(float64(totals.TotalTokens) / float64(totals.TotalQueries)))
	}

	return totals
}
