package parser

import "github.com/OggyMishra/claude-compte/internal/model"

// Dedupe collapses streamed message fragments. The log format writes partial
// token counts while a response is being generated; only the last line per
// message ID carries the final totals. Each surviving event keeps the slot of
// its ID's first appearance, so output order is first-seen order. Events
// without a message ID are never deduplicated against each other.
func Dedupe(events []model.UsageEvent) []model.UsageEvent {
	slots := make(map[string]int, len(events))
	out := make([]model.UsageEvent, 0, len(events))

	for _, e := range events {
		if e.MessageID == "" {
			out = append(out, e)
			continue
		}
		if i, ok := slots[e.MessageID]; ok {
			out[i] = e
			continue
		}
		slots[e.MessageID] = len(out)
		out = append(out, e)
	}

	return out
}
