package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"stormatter/internal/driver"
	"stormatter/internal/format"
	"stormatter/internal/observ"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// recordSink собирает события прогресса; воркеры шлют их конкурентно.
type recordSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordSink) OnEvent(evt driver.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordSink) count(status driver.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, evt := range s.events {
		if evt.Status == status {
			n++
		}
	}
	return n
}

func TestFormatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.dat")
	writeFile(t, path, "alpha    beta\n\n\n  gamma  \n")

	formatted, changed, err := driver.FormatFile(path, format.Config{})
	if err != nil {
		t.Fatalf("FormatFile returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected changed=true for unnormalized input")
	}
	want := "alpha beta\ngamma\n"
	if string(formatted) != want {
		t.Fatalf("formatted output:\nwant %q\ngot  %q", want, string(formatted))
	}
	if got := readFile(t, path); got != "alpha    beta\n\n\n  gamma  \n" {
		t.Fatalf("FormatFile must not touch the file, got %q", got)
	}
}

func TestFormatFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.dat")
	writeFile(t, path, "alpha beta\n")

	formatted, changed, err := driver.FormatFile(path, format.Config{})
	if err != nil {
		t.Fatalf("FormatFile returned error: %v", err)
	}
	if changed {
		t.Fatal("expected changed=false for already formatted input")
	}
	if string(formatted) != "alpha beta\n" {
		t.Fatalf("formatted output changed: %q", string(formatted))
	}
}

func TestFormatFileRejectsNegativeTabSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.dat")
	writeFile(t, path, "x\n")

	_, _, err := driver.FormatFile(path, format.Config{UseSpaces: true, TabSize: -2})
	if err == nil {
		t.Fatal("expected error for negative tab size")
	}
	if !errors.Is(err, format.ErrConfig) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFormatFileMissing(t *testing.T) {
	if _, _, err := driver.FormatFile(filepath.Join(t.TempDir(), "absent.dat"), format.Config{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFormatPathsCheck(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.dat")
	dirty := filepath.Join(dir, "dirty.dat")
	writeFile(t, clean, "a b\n")
	writeFile(t, dirty, "a   b\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "x  y\n")

	results, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Check:   true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (readme.txt skipped by the walk), got %d", len(results))
	}

	// Результаты идут в отсортированном порядке файлов.
	if results[0].Path != clean || results[1].Path != dirty {
		t.Fatalf("unexpected result order: %q, %q", results[0].Path, results[1].Path)
	}
	if results[0].Changed {
		t.Fatal("clean.dat must not be reported as changed")
	}
	if !results[1].Changed {
		t.Fatal("dirty.dat must be reported as changed")
	}

	if got := readFile(t, dirty); got != "a   b\n" {
		t.Fatalf("check mode must not modify files, got %q", got)
	}
}

func TestFormatPathsInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.dat")
	writeFile(t, path, "x    y\n\nz\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	results, err := driver.FormatPaths(context.Background(), []string{path}, driver.Options{
		InPlace: true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 1 || !results[0].Changed {
		t.Fatalf("expected one changed result, got %+v", results)
	}

	if got := readFile(t, path); got != "x y\nz\n" {
		t.Fatalf("rewritten file:\nwant %q\ngot  %q", "x y\nz\n", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("permissions must survive the rewrite, got %v", info.Mode().Perm())
	}
}

func TestFormatPathsInPlaceUnchangedKeepsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.dat")
	writeFile(t, path, "a b\n")
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	results, err := driver.FormatPaths(context.Background(), []string{path}, driver.Options{
		InPlace: true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if results[0].Changed {
		t.Fatal("already formatted file must not be reported as changed")
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("unchanged file must not be rewritten")
	}
}

func TestFormatPathsDefaultModeReturnsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.dat")
	writeFile(t, path, "a   b\n")

	results, err := driver.FormatPaths(context.Background(), []string{path}, driver.Options{NoCache: true})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if string(results[0].Formatted) != "a b\n" {
		t.Fatalf("Formatted:\nwant %q\ngot  %q", "a b\n", string(results[0].Formatted))
	}
	if !results[0].Changed {
		t.Fatal("expected changed=true")
	}
	if got := readFile(t, path); got != "a   b\n" {
		t.Fatalf("default mode must not touch files, got %q", got)
	}
}

// Явно названный файл форматируется независимо от расширения; фильтр
// по .dat/.storm действует только при обходе каталогов.
func TestFormatPathsExplicitFileAnyExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "a   b\n")

	results, err := driver.FormatPaths(context.Background(), []string{path}, driver.Options{
		Check:   true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 1 || !results[0].Changed {
		t.Fatalf("explicit .txt file must be formatted, got %+v", results)
	}
}

func TestFormatPathsCollectsStormFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.storm"), "x  y\n")

	results, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Check:   true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 1 || !results[0].Changed {
		t.Fatalf("expected one changed .storm result, got %+v", results)
	}
}

func TestFormatPathsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.dat")
	writeFile(t, path, "a b\n")

	results, err := driver.FormatPaths(context.Background(), []string{dir, path}, driver.Options{
		Check:   true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("file named twice must be formatted once, got %d results", len(results))
	}
}

func TestFormatPathsNoFilesFound(t *testing.T) {
	_, err := driver.FormatPaths(context.Background(), []string{t.TempDir()}, driver.Options{Check: true, NoCache: true})
	if err == nil {
		t.Fatal("expected error for a directory without data files")
	}
}

func TestFormatPathsMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	_, err := driver.FormatPaths(context.Background(), []string{missing}, driver.Options{Check: true, NoCache: true})
	if err == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestFormatPathsRejectsNegativeTabSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.dat"), "x\n")

	_, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Config:  format.Config{UseSpaces: true, TabSize: -1},
		Check:   true,
		NoCache: true,
	})
	if !errors.Is(err, format.ErrConfig) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFormatPathsReportsReadErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.dat")
	writeFile(t, good, "a b\n")

	// Битая символическая ссылка проходит обход каталога, но падает при
	// чтении — прогон должен продолжиться и вернуть ошибку в результате.
	broken := filepath.Join(dir, "gone.dat")
	if err := os.Symlink(filepath.Join(dir, "absent"), broken); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	results, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Check:   true,
		NoCache: true,
	})
	if err != nil {
		t.Fatalf("a per-file read error must not abort the run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		switch res.Path {
		case good:
			if res.Err != nil {
				t.Fatalf("good.dat: unexpected error %v", res.Err)
			}
		case broken:
			if res.Err == nil {
				t.Fatal("gone.dat: expected a read error in the result")
			}
		default:
			t.Fatalf("unexpected result path %q", res.Path)
		}
	}
}

func TestFormatPathsProgressEvents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.dat"), "a   b\n")
	writeFile(t, filepath.Join(dir, "b.dat"), "c d\n")

	sink := &recordSink{}
	_, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Check:    true,
		NoCache:  true,
		Jobs:     1,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}

	if got := sink.count(driver.StatusQueued); got != 2 {
		t.Fatalf("expected 2 queued events, got %d", got)
	}
	if got := sink.count(driver.StatusDone); got != 2 {
		t.Fatalf("expected 2 done events, got %d", got)
	}
	if got := sink.count(driver.StatusError); got != 0 {
		t.Fatalf("expected no error events, got %d", got)
	}
}

func TestFormatPathsContextCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.dat"), "x\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.FormatPaths(ctx, []string{dir}, driver.Options{Check: true, NoCache: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormatPathsTimerPhases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.dat"), "a b\n")

	timer := observ.NewTimer()
	_, err := driver.FormatPaths(context.Background(), []string{dir}, driver.Options{
		Check:   true,
		NoCache: true,
		Timer:   timer,
	})
	if err != nil {
		t.Fatalf("FormatPaths returned error: %v", err)
	}

	report := timer.Report()
	names := make([]string, 0, len(report.Phases))
	for _, phase := range report.Phases {
		names = append(names, phase.Name)
	}
	for _, want := range []string{"collect", "format"} {
		if !slices.Contains(names, want) {
			t.Fatalf("timer must record the %q phase, got %v", want, names)
		}
	}
}
