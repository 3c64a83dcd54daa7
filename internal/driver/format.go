package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stormatter/internal/format"
	"stormatter/internal/observ"
)

// Options configures a formatting run.
type Options struct {
	Config   format.Config
	Check    bool
	InPlace  bool
	Jobs     int
	NoCache  bool
	Progress ProgressSink
	Timer    *observ.Timer
}

// Result captures the result of formatting a single file.
type Result struct {
	Path      string
	Changed   bool
	Err       error
	Formatted []byte
}

// FormatFile formats a single file in one synchronous pass and returns the
// formatted contents. This is the path behind printing to stdout; it touches
// neither the file nor the cache.
func FormatFile(path string, cfg format.Config) (formatted []byte, changed bool, err error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	formatted = format.Source(data, cfg)
	return formatted, !bytes.Equal(data, formatted), nil
}

// FormatPaths formats provided files or directories (recursively collecting
// .dat and .storm files). When opts.Check is true, files are not modified;
// Changed indicates whether formatting would update the file contents. When
// opts.InPlace is true, changed files are rewritten keeping their
// permissions. Otherwise formatted content is returned in the results
// without touching files on disk.
func FormatPaths(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := opts.Config.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	collectPhase := timerBegin(opts.Timer, "collect")
	files, err := CollectDataFiles(ctx, paths)
	timerEnd(opts.Timer, collectPhase, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no data files found")
	}

	// Кэш нужен только режимам, которые сверяются с диском. Сбой открытия
	// не критичен: прогон просто идёт без кэша.
	var cache *FileCache
	if !opts.NoCache && (opts.Check || opts.InPlace) {
		cache, _ = OpenFileCache()
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	emitQueued(opts.Progress, files)

	formatPhase := timerBegin(opts.Timer, "format")

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				results[i] = formatOne(path, cfg, opts, cache)
				return nil
			}
		}(i, path))
	}

	// Ждём завершения всех горутин
	waitErr := g.Wait()
	timerEnd(opts.Timer, formatPhase, fmt.Sprintf("%d files", len(files)))
	if waitErr != nil {
		return results, waitErr
	}

	if cache != nil {
		savePhase := timerBegin(opts.Timer, "cache")
		// Кэш — только ускорение; сбой записи не должен ронять прогон.
		_ = cache.Save()
		timerEnd(opts.Timer, savePhase, "")
	}

	return results, nil
}

func formatOne(path string, cfg format.Config, opts Options, cache *FileCache) Result {
	res := Result{Path: path}
	started := time.Now()

	emit(opts.Progress, path, StageRead, StatusWorking, nil, 0)
	info, err := os.Stat(path)
	var data []byte
	if err == nil {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		res.Err = err
		emit(opts.Progress, path, StageRead, StatusError, err, time.Since(started))
		return res
	}

	if cache.Fresh(path, info, data, cfg) {
		emit(opts.Progress, path, StageFormat, StatusDone, nil, time.Since(started))
		return res
	}

	emit(opts.Progress, path, StageFormat, StatusWorking, nil, 0)
	formatted := format.Source(data, cfg)
	changed := !bytes.Equal(data, formatted)

	if opts.Check {
		res.Changed = changed
		if !changed {
			cache.Update(path, info, data, cfg)
		}
		emit(opts.Progress, path, StageFormat, StatusDone, nil, time.Since(started))
		return res
	}

	if !opts.InPlace {
		res.Formatted = formatted
		res.Changed = changed
		emit(opts.Progress, path, StageFormat, StatusDone, nil, time.Since(started))
		return res
	}

	if !changed {
		cache.Update(path, info, data, cfg)
		emit(opts.Progress, path, StageFormat, StatusDone, nil, time.Since(started))
		return res
	}

	emit(opts.Progress, path, StageWrite, StatusWorking, nil, 0)
	if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
		res.Err = err
		emit(opts.Progress, path, StageWrite, StatusError, err, time.Since(started))
		return res
	}
	res.Changed = true
	// Запись обновила mtime; для кэша нужен свежий stat.
	if newInfo, statErr := os.Stat(path); statErr == nil {
		cache.Update(path, newInfo, formatted, cfg)
	}
	emit(opts.Progress, path, StageWrite, StatusDone, nil, time.Since(started))
	return res
}

// CollectDataFiles expands the argument list into the sorted set of files a
// batch run will format: directories are walked for .dat/.storm files,
// explicitly named files are taken as-is, duplicates are dropped. The CLI
// uses it to know the file list before starting the progress UI.
func CollectDataFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if isDataFile(path) {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		// Явно названные файлы форматируются независимо от расширения.
		addFile(p)
	}

	sort.Strings(files)
	return files, nil
}

func isDataFile(path string) bool {
	switch filepath.Ext(path) {
	case ".dat", ".storm":
		return true
	}
	return false
}

func timerBegin(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func timerEnd(t *observ.Timer, idx int, note string) {
	if t == nil {
		return
	}
	t.End(idx, note)
}
