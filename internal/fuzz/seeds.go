package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addFormatSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все файлы данных
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".dat" && ext != ".storm" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addFormatSeeds covers the shapes the formatter cares about: sections,
// comments, strings, mixed whitespace, CRLF, and malformed input.
func addFormatSeeds(f *testing.F) {
	seeds := []string{
		"",
		"name value\n",
		"  name \t value  42\n\n\nnext 3.14\n",
		"begin section\nkey \"quoted value\"\nend section\n",
		"begin outer\nbegin inner\nx 1\nend inner\nend outer\n",
		"BEGIN Config\npath \"C:\\data\\files\"\nEND config\n",
		"end unmatched\nbegin dangling\n",
		"// comment line\nvalue /* inline */ 7\n",
		"name \"unterminated\nnext 1\n",
		"/* unterminated block\n",
		"данные 42\n",
		"a\r\nb\r\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
