package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"stormatter/internal/format"
	"stormatter/internal/source"
)

// Current schema version - increment when the payload format changes
const fileCacheSchemaVersion uint16 = 1

// FileCacheEntry records the on-disk state of one file after a successful
// format, plus the configuration that produced it. A later run can skip the
// file when both still match.
type FileCacheEntry struct {
	MTimeNS int64
	Size    int64
	Hash    string // hex SHA-256 of the file contents

	UseSpaces     bool
	TabSize       int
	SectionBlocks bool
}

type fileCachePayload struct {
	Schema  uint16
	Entries map[string]FileCacheEntry
}

// FileCache хранит отметки об уже отформатированных файлах на диске.
// Thread-safe for concurrent access.
type FileCache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]FileCacheEntry
}

// OpenFileCache loads the cache from the standard location
// ($XDG_CACHE_HOME/stormatter/files.mp, falling back to ~/.cache).
func OpenFileCache() (*FileCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "stormatter")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return OpenFileCacheAt(filepath.Join(dir, "files.mp")), nil
}

// OpenFileCacheAt loads the cache stored at path. Missing, corrupt, or
// schema-mismatched files yield an empty cache.
func OpenFileCacheAt(path string) *FileCache {
	c := &FileCache{path: path, entries: make(map[string]FileCacheEntry)}

	f, err := os.Open(path)
	if err != nil {
		return c
	}
	defer func() {
		_ = f.Close()
	}()

	var payload fileCachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return c
	}
	if payload.Schema != fileCacheSchemaVersion || payload.Entries == nil {
		return c
	}
	c.entries = payload.Entries
	return c
}

// Path returns the cache file location.
func (c *FileCache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Len returns the number of recorded entries.
func (c *FileCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fresh reports whether the file at path still matches its recorded entry
// under cfg. info and data must describe the file's current state. Size and
// mtime are the fast checks; a moved mtime is confirmed with the content
// hash before declaring the file stale.
func (c *FileCache) Fresh(path string, info fs.FileInfo, data []byte, cfg format.Config) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(path)]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	if entry.UseSpaces != cfg.UseSpaces || entry.TabSize != cfg.TabSize || entry.SectionBlocks != cfg.SectionBlocks {
		return false
	}
	if info.Size() != entry.Size {
		return false
	}
	if info.ModTime().UnixNano() == entry.MTimeNS {
		return true
	}
	return hashBytes(data) == entry.Hash
}

// Update records the file's current state as formatted under cfg.
func (c *FileCache) Update(path string, info fs.FileInfo, data []byte, cfg format.Config) {
	if c == nil {
		return
	}
	entry := FileCacheEntry{
		MTimeNS:       info.ModTime().UnixNano(),
		Size:          info.Size(),
		Hash:          hashBytes(data),
		UseSpaces:     cfg.UseSpaces,
		TabSize:       cfg.TabSize,
		SectionBlocks: cfg.SectionBlocks,
	}
	c.mu.Lock()
	c.entries[cacheKey(path)] = entry
	c.mu.Unlock()
}

// Save writes the cache back to disk.
func (c *FileCache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(c.path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	payload := fileCachePayload{Schema: fileCacheSchemaVersion, Entries: c.entries}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), c.path)
}

// DropAll invalidates the cache on disk and in memory.
func (c *FileCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]FileCacheEntry)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cacheKey(path string) string {
	if abs, err := source.AbsolutePath(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
