package pathsdat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"stormatter/internal/source"
)

// HistoryEntry is one recorded repointing of a tracked name.
type HistoryEntry struct {
	Path      string  `json:"path"`
	Timestamp float64 `json:"timestamp"` // fractional seconds since the Unix epoch
}

// History is an append-only, file-backed log of paths.dat changes, keyed by
// the resolved paths.dat location, then by entry name.
type History struct {
	path string
	data map[string]map[string][]HistoryEntry
}

// DefaultHistoryPath returns the history location in the user's home
// directory.
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".stormatter_history.json"), nil
}

// NewHistory opens the history stored at path. Loading is lenient: a missing
// or corrupt file starts an empty history.
func NewHistory(path string) *History {
	h := &History{
		path: path,
		data: make(map[string]map[string][]HistoryEntry),
	}
	h.load()
	return h
}

func (h *History) load() {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		return
	}
	var data map[string]map[string][]HistoryEntry
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}
	if data != nil {
		h.data = data
	}
}

// Save writes the history as indented JSON. Map keys come out sorted, so the
// file layout is stable across runs.
func (h *History) Save() error {
	raw, err := json.MarshalIndent(h.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(h.path, raw, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Path returns the history file location.
func (h *History) Path() string {
	return h.path
}

// Now returns the current moment in history timestamp form.
func Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// fileHistory returns the per-name log for one paths.dat file, creating it
// on first touch. The key is the resolved absolute location, so relative and
// absolute invocations share a log.
func (h *History) fileHistory(datPath string) map[string][]HistoryEntry {
	key := historyKey(datPath)
	m, ok := h.data[key]
	if !ok {
		m = make(map[string][]HistoryEntry)
		h.data[key] = m
	}
	return m
}

func historyKey(datPath string) string {
	abs, err := source.AbsolutePath(datPath)
	if err != nil {
		return filepath.Clean(datPath)
	}
	return abs
}

// Record appends a repointing of name, unless it repeats the latest recorded
// path. It does not save; callers batch records and save once.
func (h *History) Record(datPath, name, path string, timestamp float64) {
	log := h.fileHistory(datPath)
	entries := log[name]
	if n := len(entries); n > 0 && entries[n-1].Path == path {
		return
	}
	log[name] = append(entries, HistoryEntry{Path: path, Timestamp: timestamp})
}

// UpdateFromPaths records the whole path set at one timestamp and saves.
func (h *History) UpdateFromPaths(datPath string, paths map[string]string, timestamp float64) error {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		h.Record(datPath, name, paths[name], timestamp)
	}
	return h.Save()
}

// LastEntry returns the most recent record for name.
func (h *History) LastEntry(datPath, name string) (HistoryEntry, bool) {
	entries := h.fileHistory(datPath)[name]
	if len(entries) == 0 {
		return HistoryEntry{}, false
	}
	return entries[len(entries)-1], true
}

// PreviousPath returns the path recorded immediately before the latest one,
// which is what a revert restores.
func (h *History) PreviousPath(datPath, name string) (string, bool) {
	entries := h.fileHistory(datPath)[name]
	if len(entries) < 2 {
		return "", false
	}
	return entries[len(entries)-2].Path, true
}

// Snapshot returns the latest recorded path for every tracked name.
func (h *History) Snapshot(datPath string) map[string]string {
	snapshot := make(map[string]string)
	for name, entries := range h.fileHistory(datPath) {
		if len(entries) == 0 {
			continue
		}
		snapshot[name] = entries[len(entries)-1].Path
	}
	return snapshot
}
