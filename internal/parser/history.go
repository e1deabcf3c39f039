package parser

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// LoadHistoryPrompts reads history.jsonl from the Claude directory and
// returns the first recorded prompt display text per session ID. The file is
// optional; any read problem just yields an empty map since these strings are
// display sugar, not usage data.
func LoadHistoryPrompts(claudeDir string) map[string]string {
	prompts := make(map[string]string)

	file, err := os.Open(filepath.Join(claudeDir, "history.jsonl"))
	if err != nil {
		return prompts
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !gjson.ValidBytes(line) {
			continue
		}
		res := gjson.ParseBytes(line)
		sid := res.Get("sessionId").String()
		display := strings.TrimSpace(res.Get("display").String())
		if sid == "" || display == "" {
			continue
		}
		if _, seen := prompts[sid]; seen {
			continue
		}
		// Short slash commands make poor session titles
		if strings.HasPrefix(display, "/") && len(display) < 30 {
			continue
		}
		prompts[sid] = display
	}

	return prompts
}
