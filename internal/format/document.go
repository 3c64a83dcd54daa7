package format

import "strings"

// Line is one input line threaded through the formatting passes.
type Line struct {
	Raw    string   // input text with the line terminator stripped
	Tokens []string // whitespace-delimited runs, filled by the normalize pass
	Text   string   // tokens joined with single spaces
	Depth  int      // indentation level, assigned by the indentation engine
}

// Document is an ordered sequence of lines. Passes return new documents and
// leave their input untouched.
type Document struct {
	Lines []Line
}

// ParseDocument splits src into raw lines. A trailing newline terminates the
// last line instead of opening an empty one, so "a\n" is one line, not two.
func ParseDocument(src []byte) Document {
	if len(src) == 0 {
		return Document{}
	}
	parts := strings.Split(string(src), "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	lines := make([]Line, len(parts))
	for i, raw := range parts {
		lines[i] = Line{Raw: raw}
	}
	return Document{Lines: lines}
}
