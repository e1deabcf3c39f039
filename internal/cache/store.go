package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OggyMishra/claude-compte/internal/aggregator"
	"github.com/OggyMishra/claude-compte/internal/model"
	"github.com/OggyMishra/claude-compte/internal/parser"
)

// Store computes the corpus report, reusing cached per-file summaries for
// files whose size and mtime fingerprints are unchanged. It is the only
// state shared across process invocations.
type Store struct {
	ProjectsDir string
	ClaudeDir   string
	Path        string
}

// NewStore returns a store rooted at the given Claude directory.
func NewStore(claudeDir, projectsDir, cachePath string) *Store {
	if projectsDir == "" {
		projectsDir = filepath.Join(claudeDir, "projects")
	}
	if cachePath == "" {
		cachePath = DefaultPath(claudeDir)
	}
	return &Store{ProjectsDir: projectsDir, ClaudeDir: claudeDir, Path: cachePath}
}

// GetOrCompute returns the current corpus report. Unchanged files reuse
// their cached summaries without being reopened; changed or new files are
// reparsed; vanished files are dropped. When nothing changed at all the
// stored report is returned as-is. force discards all stored fingerprints.
//
// Per-file read failures degrade to fewer sessions counted; the only error
// returned is an unlistable projects root.
func (s *Store) GetOrCompute(force bool) (*model.Report, error) {
	files, err := parser.FindSessionFiles(s.ProjectsDir)
	if err != nil {
		return nil, err
	}

	prev := NewEntry()
	if !force {
		prev = Load(s.Path)
	}

	next := NewEntry()
	changed := false
	var historyPrompts map[string]string

	for _, file := range files {
		info, err := os.Stat(file.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
			continue
		}
		size, mtime := info.Size(), info.ModTime().UnixNano()

		if old, ok := prev.Files[file.Path]; ok && old.Size == size && old.MtimeUnixNano == mtime {
			next.Files[file.Path] = old
			continue
		}

		events, err := parser.ParseSessionFile(file.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
			changed = true
			continue
		}

		if historyPrompts == nil {
			historyPrompts = parser.LoadHistoryPrompts(s.ClaudeDir)
		}

		entry := FileEntry{Size: size, MtimeUnixNano: mtime}
		if summary, prompts, ok := aggregator.SummarizeSession(file, events, historyPrompts[file.SessionID]); ok {
			entry.HasUsage = true
			entry.Summary = summary
			entry.Prompts = prompts
		}
		next.Files[file.Path] = entry
		changed = true
	}

	if len(next.Files) != len(prev.Files) {
		changed = true
	}

	if !changed && prev.Report != nil {
		return prev.Report, nil
	}

	// Collect in discovery order so ranking ties stay deterministic.
	var summaries []model.SessionSummary
	var prompts []model.PromptStat
	for _, file := range files {
		entry, ok := next.Files[file.Path]
		if !ok || !entry.HasUsage {
			continue
		}
		summaries = append(summaries, entry.Summary)
		prompts = append(prompts, entry.Prompts...)
	}

	report := aggregator.BuildReport(summaries, prompts)
	next.Report = report

	// A failed cache write costs one recompute on the next run, nothing more.
	if err := Save(s.Path, next); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write cache %s: %v\n", s.Path, err)
	}

	return report, nil
}
