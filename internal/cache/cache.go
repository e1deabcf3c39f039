package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/OggyMishra/claude-compte/internal/model"
)

const entryVersion = 1

// FileEntry is the cached result for one session file, keyed by its
// fingerprint. HasUsage is false for files that parsed cleanly but contained
// no assistant turns; remembering them avoids re-reading on every scan.
type FileEntry struct {
	Size          int64                `json:"size"`
	MtimeUnixNano int64                `json:"mtimeUnixNano"`
	HasUsage      bool                 `json:"hasUsage"`
	Summary       model.SessionSummary `json:"summary"`
	Prompts       []model.PromptStat   `json:"prompts,omitempty"`
}

// Entry is the on-disk cache document: the fingerprint table plus the last
// computed report.
type Entry struct {
	Version int                  `json:"version"`
	Files   map[string]FileEntry `json:"files"`
	Report  *model.Report        `json:"report,omitempty"`
}

// NewEntry returns an empty cache entry.
func NewEntry() *Entry {
	return &Entry{Version: entryVersion, Files: make(map[string]FileEntry)}
}

// DefaultPath returns the cache file location under the Claude directory.
func DefaultPath(claudeDir string) string {
	return filepath.Join(claudeDir, "compte-cache.json")
}

// Load reads the cache document from disk. A missing, unreadable, or
// schema-mismatched file is a cold cache, never an error: the caller simply
// recomputes everything.
func Load(path string) *Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewEntry()
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return NewEntry()
	}
	if entry.Version != entryVersion || entry.Files == nil {
		return NewEntry()
	}
	return &entry
}

// Save persists the cache document. The write goes to a temp file in the
// same directory followed by a rename, so a crash mid-write can never leave
// a half-written document where the next run would read it.
func Save(path string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%s.json", uuid.New().String()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
