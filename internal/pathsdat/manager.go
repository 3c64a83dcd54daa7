package pathsdat

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"stormatter/internal/diag"
	"stormatter/internal/source"
)

const defaultMaxDiagnostics = 100

// Manager ties one paths.dat file to the history log and implements the
// repointing operations: read, make-local, revert. Parse diagnostics travel
// alongside results so callers can render them; an operation that would
// rewrite the file refuses to run when the parse has errors.
type Manager struct {
	datPath        string
	history        *History
	maxDiagnostics int
	fileSet        *source.FileSet
}

// NewManager creates a manager for the paths.dat file at datPath.
// maxDiagnostics caps the parse bag; zero or negative picks a default.
func NewManager(datPath string, history *History, maxDiagnostics int) *Manager {
	if maxDiagnostics <= 0 {
		maxDiagnostics = defaultMaxDiagnostics
	}
	return &Manager{
		datPath:        datPath,
		history:        history,
		maxDiagnostics: maxDiagnostics,
	}
}

// DatPath returns the managed paths.dat location.
func (m *Manager) DatPath() string {
	return m.datPath
}

// History returns the attached history log.
func (m *Manager) History() *History {
	return m.history
}

// FileSet returns the file set from the most recent parse, for resolving
// diagnostic spans to positions. Nil before the first operation.
func (m *Manager) FileSet() *source.FileSet {
	return m.fileSet
}

// Paths parses the managed file. With trackHistory set, a successful parse
// is recorded in the history log. On parse errors the map is nil and the
// returned bag carries the diagnostics.
func (m *Manager) Paths(trackHistory bool) (map[string]string, *diag.Bag, error) {
	paths, bag, err := m.parse()
	if err != nil || bag.HasErrors() {
		return nil, bag, err
	}
	if trackHistory {
		if err := m.history.UpdateFromPaths(m.datPath, paths, Now()); err != nil {
			return nil, bag, err
		}
	}
	return paths, bag, nil
}

// MakeLocal copies the file behind name into destDir, repoints the entry at
// the copy, rewrites paths.dat, and records the change. The destination must
// be an existing directory. Returns the path of the copy.
func (m *Manager) MakeLocal(name, destDir string) (string, *diag.Bag, error) {
	destDir, err := source.AbsolutePath(destDir)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(destDir)
	if err != nil {
		return "", nil, fmt.Errorf("destination %s: %w", destDir, err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("destination must be a directory: %s", destDir)
	}

	paths, bag, err := m.parse()
	if err != nil {
		return "", bag, err
	}
	if bag.HasErrors() {
		return "", bag, fmt.Errorf("%s has parse errors; refusing to rewrite", m.datPath)
	}

	sourcePath, ok := paths[name]
	if !ok {
		return "", bag, fmt.Errorf("no entry named %q in %s", name, m.datPath)
	}

	// Seed the log with the pre-change state so the revert always has a
	// restore point, even when nothing was tracked before.
	seedTime := Now()
	names := make([]string, 0, len(paths))
	for n := range paths {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		m.history.Record(m.datPath, n, paths[n], seedTime)
	}

	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return "", bag, fmt.Errorf("source path for %s: %w", name, err)
	}
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", bag, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	dest := filepath.Join(destDir, source.BaseName(sourcePath))
	if err := os.WriteFile(dest, content, srcInfo.Mode().Perm()); err != nil {
		return "", bag, fmt.Errorf("copy %s: %w", name, err)
	}

	paths[name] = dest
	if err := m.commit(paths); err != nil {
		return "", bag, err
	}
	return dest, bag, nil
}

// Revert repoints every entry with at least two recorded paths back to the
// previous one. Copies made by MakeLocal stay on disk; only paths.dat moves
// back. Returns the number of reverted entries; zero means the history held
// nothing to revert and the file was left untouched.
func (m *Manager) Revert() (int, *diag.Bag, error) {
	candidates := make(map[string]string)
	for name := range m.history.Snapshot(m.datPath) {
		if prev, ok := m.history.PreviousPath(m.datPath, name); ok {
			candidates[name] = prev
		}
	}
	if len(candidates) == 0 {
		return 0, nil, nil
	}

	paths, bag, err := m.parse()
	if err != nil {
		return 0, bag, err
	}
	if bag.HasErrors() {
		return 0, bag, fmt.Errorf("%s has parse errors; refusing to rewrite", m.datPath)
	}

	candidateNames := make([]string, 0, len(candidates))
	for name := range candidates {
		candidateNames = append(candidateNames, name)
	}
	slices.Sort(candidateNames)
	for _, name := range candidateNames {
		paths[name] = candidates[name]
	}
	if err := m.commit(paths); err != nil {
		return 0, bag, err
	}
	return len(candidates), bag, nil
}

// RevertEntry reverts a single name the same way Revert does. Reports
// whether anything changed.
func (m *Manager) RevertEntry(name string) (bool, *diag.Bag, error) {
	prev, ok := m.history.PreviousPath(m.datPath, name)
	if !ok {
		return false, nil, nil
	}

	paths, bag, err := m.parse()
	if err != nil {
		return false, bag, err
	}
	if bag.HasErrors() {
		return false, bag, fmt.Errorf("%s has parse errors; refusing to rewrite", m.datPath)
	}

	paths[name] = prev
	if err := m.commit(paths); err != nil {
		return false, bag, err
	}
	return true, bag, nil
}

func (m *Manager) parse() (map[string]string, *diag.Bag, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(m.datPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", m.datPath, err)
	}
	m.fileSet = fs
	bag := diag.NewBag(m.maxDiagnostics)
	paths := Parse(fs.Get(id), bag)
	return paths, bag, nil
}

func (m *Manager) commit(paths map[string]string) error {
	if err := Write(m.datPath, paths); err != nil {
		return fmt.Errorf("rewrite %s: %w", m.datPath, err)
	}
	return m.history.UpdateFromPaths(m.datPath, paths, Now())
}
