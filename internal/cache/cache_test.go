package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OggyMishra/claude-compte/internal/model"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	entry := NewEntry()
	entry.Files["/tmp/a.jsonl"] = FileEntry{
		Size:          123,
		MtimeUnixNano: 456,
		HasUsage:      true,
		Summary:       model.SessionSummary{SessionID: "a", TotalTokens: 99},
	}
	entry.Report = model.EmptyReport()

	if err := Save(path, entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(path)
	got, ok := loaded.Files["/tmp/a.jsonl"]
	if !ok {
		t.Fatal("fingerprint entry missing after roundtrip")
	}
	if got.Size != 123 || got.MtimeUnixNano != 456 || !got.HasUsage {
		t.Errorf("loaded entry = %+v", got)
	}
	if got.Summary.TotalTokens != 99 {
		t.Errorf("Summary.TotalTokens = %d, want 99", got.Summary.TotalTokens)
	}
	if loaded.Report == nil {
		t.Error("Report missing after roundtrip")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	if err := Save(path, NewEntry()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind after Save", e.Name())
		}
	}
}

func TestLoadColdCases(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		prepare func(path string)
	}{
		{"missing file", func(string) {}},
		{"truncated write", func(path string) {
			os.WriteFile(path, []byte(`{"version":1,"files":{"/a":`), 0644)
		}},
		{"not json at all", func(path string) {
			os.WriteFile(path, []byte("definitely not json"), 0644)
		}},
		{"version mismatch", func(path string) {
			os.WriteFile(path, []byte(`{"version":99,"files":{}}`), 0644)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".json")
			tt.prepare(path)
			entry := Load(path)
			if entry == nil {
				t.Fatal("Load returned nil")
			}
			if len(entry.Files) != 0 || entry.Report != nil {
				t.Errorf("cold load is not empty: %+v", entry)
			}
		})
	}
}
