// Package config discovers and loads optional stormatter.toml files. The
// file carries project-wide formatting defaults; explicit CLI flags still
// win, which is why Settings tracks which keys the file actually defined.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"stormatter/internal/format"
)

// ManifestName is the file looked up by Find.
const ManifestName = "stormatter.toml"

// Settings is the decoded [format] table. The Has* flags record which keys
// were present in the file, so absent keys never clobber other layers.
type Settings struct {
	TabSize       int
	UseSpaces     bool
	SectionBlocks bool

	HasTabSize       bool
	HasUseSpaces     bool
	HasSectionBlocks bool
}

// File is a loaded stormatter.toml.
type File struct {
	Path     string // manifest location
	Root     string // directory holding the manifest
	Settings Settings
}

type tomlConfig struct {
	Format tomlFormat `toml:"format"`
}

type tomlFormat struct {
	TabSize       int  `toml:"tabsize"`
	Spaces        bool `toml:"spaces"`
	SectionBlocks bool `toml:"section-blocks"`
}

// Find walks up from startDir to locate a stormatter.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*File, error) {
	var cfg tomlConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	settings := Settings{
		TabSize:          cfg.Format.TabSize,
		UseSpaces:        cfg.Format.Spaces,
		SectionBlocks:    cfg.Format.SectionBlocks,
		HasTabSize:       meta.IsDefined("format", "tabsize"),
		HasUseSpaces:     meta.IsDefined("format", "spaces"),
		HasSectionBlocks: meta.IsDefined("format", "section-blocks"),
	}
	if settings.HasTabSize && settings.TabSize < 0 {
		return nil, fmt.Errorf("%s: %w: tabsize must not be negative, got %d",
			path, format.ErrConfig, settings.TabSize)
	}

	return &File{
		Path:     path,
		Root:     filepath.Dir(path),
		Settings: settings,
	}, nil
}

// Discover finds and loads the manifest governing startDir. ok is false when
// no manifest exists, which is not an error.
func Discover(startDir string) (*File, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	file, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return file, true, nil
}

// Merge layers the file's settings over base. Only keys the file defines
// override base values.
func (s Settings) Merge(base format.Config) format.Config {
	if s.HasUseSpaces {
		base.UseSpaces = s.UseSpaces
	}
	if s.HasTabSize {
		base.TabSize = s.TabSize
	}
	if s.HasSectionBlocks {
		base.SectionBlocks = s.SectionBlocks
	}
	return base
}
