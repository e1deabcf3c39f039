package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/OggyMishra/claude-compte/internal/model"
)

// SessionFile identifies one session log on disk.
type SessionFile struct {
	Path      string
	Project   string
	SessionID string
}

// DefaultClaudeDir returns ~/.claude.
func DefaultClaudeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude"), nil
}

// FindSessionFiles lists every session JSONL under the projects directory,
// one level of project directories deep. An unlistable projects root is the
// only fatal condition of a scan; unreadable project directories are skipped
// with a warning.
func FindSessionFiles(projectsDir string) ([]SessionFile, error) {
	projectDirs, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("list projects dir %s: %w", projectsDir, err)
	}

	var files []SessionFile
	for _, dir := range projectDirs {
		if !dir.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(projectsDir, dir.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping project %s: %v\n", dir.Name(), err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
				continue
			}
			files = append(files, SessionFile{
				Path:      filepath.Join(projectsDir, dir.Name(), entry.Name()),
				Project:   dir.Name(),
				SessionID: strings.TrimSuffix(entry.Name(), ".jsonl"),
			})
		}
	}
	return files, nil
}

// ExtractLine parses one raw log line into a usage event. The second return
// is false for lines that carry no usable data: malformed JSON, sidechain
// entries, meta lines, and line types other than user/assistant turns.
// Missing numeric token fields default to zero.
func ExtractLine(line []byte) (model.UsageEvent, bool) {
	if len(line) == 0 || !gjson.ValidBytes(line) {
		return model.UsageEvent{}, false
	}

	res := gjson.ParseBytes(line)
	if res.Get("isSidechain").Bool() {
		return model.UsageEvent{}, false
	}

	lineType := res.Get("type").String()
	msg := res.Get("message")
	if !msg.Exists() {
		return model.UsageEvent{}, false
	}

	ts, _ := time.Parse(time.RFC3339Nano, res.Get("timestamp").String())

	switch lineType {
	case "user":
		return extractUserLine(res, msg, ts)
	case "assistant":
		return extractAssistantLine(res, msg, ts)
	default:
		return model.UsageEvent{}, false
	}
}

// extractUserLine yields an event without a message ID. User turns carry no
// token counts; they contribute prompt text and tool-result timestamps.
func extractUserLine(res, msg gjson.Result, ts time.Time) (model.UsageEvent, bool) {
	if msg.Get("role").String() != "user" || res.Get("isMeta").Bool() {
		return model.UsageEvent{}, false
	}

	prompt := userPromptText(msg.Get("content"))
	if prompt == "" && !res.Get("toolUseResult").Exists() {
		return model.UsageEvent{}, false
	}

	return model.UsageEvent{
		Timestamp:  ts,
		UserPrompt: prompt,
	}, true
}

func extractAssistantLine(res, msg gjson.Result, ts time.Time) (model.UsageEvent, bool) {
	id := msg.Get("id").String()
	if id == "" {
		return model.UsageEvent{}, false
	}

	modelName := msg.Get("model").String()
	if modelName == "" {
		modelName = "unknown"
	}
	if modelName == "<synthetic>" {
		return model.UsageEvent{}, false
	}

	usage := msg.Get("usage")
	if !usage.Exists() {
		return model.UsageEvent{}, false
	}

	event := model.UsageEvent{
		MessageID: id,
		Timestamp: ts,
		Model:     modelName,
		Tokens: model.TokenTotals{
			InputTokens:         usage.Get("input_tokens").Int(),
			CacheCreationTokens: usage.Get("cache_creation_input_tokens").Int(),
			CacheReadTokens:     usage.Get("cache_read_input_tokens").Int(),
			OutputTokens:        usage.Get("output_tokens").Int(),
		},
	}

	for _, block := range msg.Get("content").Array() {
		switch block.Get("type").String() {
		case "tool_use":
			if name := block.Get("name").String(); name != "" {
				event.Tools = append(event.Tools, name)
			}
		case "thinking":
			event.HasThinking = true
		}
	}

	return event, true
}

// userPromptText extracts display text from a user message content field,
// which is either a plain string or a list of content blocks. Local command
// wrappers are not real prompts.
func userPromptText(content gjson.Result) string {
	switch content.Type {
	case gjson.String:
		text := content.String()
		if strings.HasPrefix(text, "<local-command") || strings.HasPrefix(text, "<command-name") {
			return ""
		}
		return text
	case gjson.JSON:
		if !content.IsArray() {
			return ""
		}
		var parts []string
		for _, block := range content.Array() {
			if block.Get("type").String() == "text" {
				parts = append(parts, block.Get("text").String())
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	default:
		return ""
	}
}

// ParseSessionFile reads a session log and returns its deduplicated event
// sequence in file order. Malformed lines are skipped; session logs are
// append-only and the final line may be a truncated in-progress write.
func ParseSessionFile(path string) ([]model.UsageEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []model.UsageEvent
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if event, ok := ExtractLine(scanner.Bytes()); ok {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return Dedupe(events), nil
}
