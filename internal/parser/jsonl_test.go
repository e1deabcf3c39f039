package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
	}{
		{
			name:   "malformed json",
			line:   `{"type":"assistant","mess`,
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
		{
			name:   "sidechain skipped",
			line:   `{"type":"assistant","isSidechain":true,"message":{"id":"m1","model":"claude-sonnet-4-20250514","usage":{"input_tokens":5}}}`,
			wantOK: false,
		},
		{
			name:   "summary line type skipped",
			line:   `{"type":"summary","summary":"something"}`,
			wantOK: false,
		},
		{
			name:   "synthetic model skipped",
			line:   `{"type":"assistant","message":{"id":"m1","model":"<synthetic>","usage":{"input_tokens":5}}}`,
			wantOK: false,
		},
		{
			name:   "assistant without usage skipped",
			line:   `{"type":"assistant","message":{"id":"m1","model":"claude-sonnet-4-20250514"}}`,
			wantOK: false,
		},
		{
			name:   "meta user line skipped",
			line:   `{"type":"user","isMeta":true,"message":{"role":"user","content":"caveat"}}`,
			wantOK: false,
		},
		{
			name:   "local command wrapper skipped",
			line:   `{"type":"user","message":{"role":"user","content":"<command-name>/clear</command-name>"}}`,
			wantOK: false,
		},
		{
			name:   "assistant with usage",
			line:   `{"type":"assistant","timestamp":"2026-08-01T10:00:00.000Z","message":{"id":"m1","model":"claude-sonnet-4-20250514","usage":{"input_tokens":10,"output_tokens":5,"cache_creation_input_tokens":7,"cache_read_input_tokens":900}}}`,
			wantOK: true,
		},
		{
			name:   "user prompt",
			line:   `{"type":"user","timestamp":"2026-08-01T09:59:00.000Z","message":{"role":"user","content":"fix the bug"}}`,
			wantOK: true,
		},
		{
			name:   "tool result line",
			line:   `{"type":"user","timestamp":"2026-08-01T10:00:05.000Z","toolUseResult":{"stdout":"ok"},"message":{"role":"user","content":[{"type":"tool_result","content":"ok"}]}}`,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractLine([]byte(tt.line))
			if ok != tt.wantOK {
				t.Errorf("ExtractLine ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestExtractLineAssistantFields(t *testing.T) {
	line := `{"type":"assistant","timestamp":"2026-08-01T10:00:00.000Z","message":{"id":"m1","model":"claude-opus-4-5-20251101","usage":{"input_tokens":10,"output_tokens":5},"content":[{"type":"thinking","thinking":"..."},{"type":"tool_use","name":"Bash","input":{}},{"type":"tool_use","name":"Read","input":{}},{"type":"text","text":"done"}]}}`

	e, ok := ExtractLine([]byte(line))
	if !ok {
		t.Fatal("ExtractLine rejected a valid assistant line")
	}
	if e.MessageID != "m1" {
		t.Errorf("MessageID = %q, want m1", e.MessageID)
	}
	if e.Model != "claude-opus-4-5-20251101" {
		t.Errorf("Model = %q", e.Model)
	}
	if e.Tokens.InputTokens != 10 || e.Tokens.OutputTokens != 5 {
		t.Errorf("Tokens = %+v, want input 10 output 5", e.Tokens)
	}
	// Missing numeric fields default to zero
	if e.Tokens.CacheCreationTokens != 0 || e.Tokens.CacheReadTokens != 0 {
		t.Errorf("cache tokens = %+v, want zero defaults", e.Tokens)
	}
	if !e.HasThinking {
		t.Error("HasThinking = false, want true")
	}
	if len(e.Tools) != 2 || e.Tools[0] != "Bash" || e.Tools[1] != "Read" {
		t.Errorf("Tools = %v, want [Bash Read]", e.Tools)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp not parsed")
	}
}

func TestExtractLineUserContentBlocks(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":[{"type":"text","text":"hello"},{"type":"text","text":"world"}]}}`
	e, ok := ExtractLine([]byte(line))
	if !ok {
		t.Fatal("ExtractLine rejected user line with content blocks")
	}
	if e.UserPrompt != "hello\nworld" {
		t.Errorf("UserPrompt = %q, want joined text blocks", e.UserPrompt)
	}
	if e.MessageID != "" {
		t.Errorf("user event has MessageID %q, want none", e.MessageID)
	}
}

func TestParseSessionFileStreamingFragments(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "session.jsonl")

	// Same message id written twice: partial flush then final totals. The
	// trailing truncated line mimics an in-progress write.
	content := `{"type":"user","timestamp":"2026-08-01T09:59:00Z","message":{"role":"user","content":"do it"}}
{"type":"assistant","timestamp":"2026-08-01T10:00:00Z","message":{"id":"abc","model":"claude-sonnet-4-20250514","usage":{"input_tokens":10,"output_tokens":5}}}
{"type":"assistant","timestamp":"2026-08-01T10:00:02Z","message":{"id":"abc","model":"claude-sonnet-4-20250514","usage":{"input_tokens":10,"output_tokens":20}}}
{"type":"assistant","timestamp":"2026-08-01T1`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	events, err := ParseSessionFile(path)
	if err != nil {
		t.Fatalf("ParseSessionFile failed: %v", err)
	}

	var assistant int
	for _, e := range events {
		if e.MessageID == "" {
			continue
		}
		assistant++
		if e.Tokens.InputTokens != 10 || e.Tokens.OutputTokens != 20 {
			t.Errorf("tokens = %+v, want final flush input=10 output=20", e.Tokens)
		}
	}
	if assistant != 1 {
		t.Errorf("assistant events = %d, want 1 (one turn)", assistant)
	}
}

func TestParseSessionFileUnreadable(t *testing.T) {
	if _, err := ParseSessionFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("ParseSessionFile on a missing file returned nil error")
	}
}

func TestFindSessionFiles(t *testing.T) {
	tmpDir := t.TempDir()
	projects := filepath.Join(tmpDir, "projects")
	projDir := filepath.Join(projects, "-home-user-myproj")
	if err := os.MkdirAll(projDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"s1.jsonl", "s2.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(projDir, name), []byte("{}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindSessionFiles(projects)
	if err != nil {
		t.Fatalf("FindSessionFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2", len(files))
	}
	if files[0].Project != "-home-user-myproj" {
		t.Errorf("Project = %q", files[0].Project)
	}
	if files[0].SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", files[0].SessionID)
	}
}

func TestFindSessionFilesMissingRoot(t *testing.T) {
	if _, err := FindSessionFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("FindSessionFiles on a missing root returned nil error")
	}
}
