package pricing

import (
	"strings"

	"github.com/OggyMishra/claude-compte/internal/model"
)

// API-equivalent pricing per token, keyed by model family.
var familyPricing = map[string]model.ModelPricing{
	"opus-4.5": {
		InputCostPerToken:         5e-06,
		OutputCostPerToken:        2.5e-05,
		CacheCreationCostPerToken: 6.25e-06,
		CacheReadCostPerToken:     5e-07,
	},
	"opus-4.6": {
		InputCostPerToken:         5e-06,
		OutputCostPerToken:        2.5e-05,
		CacheCreationCostPerToken: 6.25e-06,
		CacheReadCostPerToken:     5e-07,
	},
	"opus-4.0": {
		InputCostPerToken:         1.5e-05,
		OutputCostPerToken:        7.5e-05,
		CacheCreationCostPerToken: 1.875e-05,
		CacheReadCostPerToken:     1.5e-06,
	},
	"opus-4.1": {
		InputCostPerToken:         1.5e-05,
		OutputCostPerToken:        7.5e-05,
		CacheCreationCostPerToken: 1.875e-05,
		CacheReadCostPerToken:     1.5e-06,
	},
	"sonnet": {
		InputCostPerToken:         3e-06,
		OutputCostPerToken:        1.5e-05,
		CacheCreationCostPerToken: 3.75e-06,
		CacheReadCostPerToken:     3e-07,
	},
	"haiku-4.5": {
		InputCostPerToken:         1e-06,
		OutputCostPerToken:        5e-06,
		CacheCreationCostPerToken: 1.25e-06,
		CacheReadCostPerToken:     1e-07,
	},
	"haiku-3.5": {
		InputCostPerToken:         8e-07,
		OutputCostPerToken:        4e-06,
		CacheCreationCostPerToken: 1e-06,
		CacheReadCostPerToken:     8e-08,
	},
}

// GetPricing resolves pricing for a model name by family and version
// substring matching. Unknown or empty models fall back to Sonnet pricing
// rather than failing; cost estimates must never abort a scan.
func GetPricing(modelName string) model.ModelPricing {
	m := strings.ToLower(modelName)
	switch {
	case strings.Contains(m, "opus"):
		switch {
		case hasVersion(m, "4-6"):
			return familyPricing["opus-4.6"]
		case hasVersion(m, "4-5"):
			return familyPricing["opus-4.5"]
		case hasVersion(m, "4-1"):
			return familyPricing["opus-4.1"]
		default:
			return familyPricing["opus-4.0"]
		}
	case strings.Contains(m, "haiku"):
		if hasVersion(m, "4-5") {
			return familyPricing["haiku-4.5"]
		}
		return familyPricing["haiku-3.5"]
	default:
		return familyPricing["sonnet"]
	}
}

// hasVersion matches both dashed and dotted version spellings
// (claude-opus-4-5-20251101 and anthropic/claude-opus-4.5).
func hasVersion(name, dashed string) bool {
	return strings.Contains(name, dashed) || strings.Contains(name, strings.ReplaceAll(dashed, "-", "."))
}

// CalculateCost returns the USD cost of the given token totals under the
// given pricing.
func CalculateCost(usage model.TokenTotals, pricing model.ModelPricing) float64 {
	cost := float64(usage.InputTokens) * pricing.InputCostPerToken
	cost += float64(usage.OutputTokens) * pricing.OutputCostPerToken
	cost += float64(usage.CacheCreationTokens) * pricing.CacheCreationCostPerToken
	cost += float64(usage.CacheReadTokens) * pricing.CacheReadCostPerToken
	return cost
}

// Cost is a convenience wrapper resolving pricing by model name.
func Cost(usage model.TokenTotals, modelName string) float64 {
	return CalculateCost(usage, GetPricing(modelName))
}
