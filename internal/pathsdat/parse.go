package pathsdat

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"stormatter/internal/diag"
	"stormatter/internal/lexer"
	"stormatter/internal/source"
	"stormatter/internal/token"
)

// Parse reads name/path entries from a lexed paths.dat file into a map of
// resolved absolute paths. Comments and blank lines live in token trivia and
// never reach the stream. A malformed entry aborts the scan with a PTH
// diagnostic; a duplicate name warns and keeps the last path. Relative entry
// paths resolve against the directory holding the paths.dat file.
func Parse(file *source.File, bag *diag.Bag) map[string]string {
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	stream := token.NewStream(tokens)

	baseDir := filepath.Dir(file.Path)
	paths := make(map[string]string)

	for !stream.AtEnd() {
		nameTok, ok := stream.Expect(token.Ident)
		if !ok {
			diag.ReportError(reporter, diag.PathExpectName, nameTok.Span,
				"expected entry name, got "+nameTok.Kind.String()).Emit()
			break
		}
		pathTok, ok := stream.Expect(token.StringLit)
		if !ok {
			diag.ReportError(reporter, diag.PathExpectPath, pathTok.Span,
				"expected quoted path after "+nameTok.Text).Emit()
			break
		}
		if _, dup := paths[nameTok.Text]; dup {
			diag.ReportWarning(reporter, diag.PathDuplicateName, nameTok.Span,
				"duplicate entry "+nameTok.Text+"; the last path wins").Emit()
		}
		paths[nameTok.Text] = resolveEntry(stripQuotes(pathTok.Text), baseDir)
	}
	return paths
}

func resolveEntry(path, baseDir string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	abs, err := source.AbsolutePath(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Write renders the entries in canonical form, sorted by name, one
// `name "path"` line each. Paths are written verbatim: the lexer reads
// strings without escapes, so quoting is plain byte bracketing.
func Write(path string, paths map[string]string) error {
	var sb strings.Builder
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(" \"")
		sb.WriteString(paths[name])
		sb.WriteString("\"\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
