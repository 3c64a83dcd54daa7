package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sectionTracker threads the indentation state of section-block mode through
// the line sequence: a depth counter that drives the output and a stack of
// open section names kept for mismatch accounting.
type sectionTracker struct {
	depth int
	open  []string
}

func (st *sectionTracker) enter(name string) {
	st.open = append(st.open, name)
	st.depth++
}

// leave applies an end event. The depth always decrements, clamped at zero;
// the stack pops only when the name matches the innermost open section, so an
// end with the wrong name still dedents but leaves the section open.
func (st *sectionTracker) leave(name string) {
	if st.depth > 0 {
		st.depth--
	}
	if n := len(st.open); n > 0 && strings.EqualFold(st.open[n-1], name) {
		st.open = st.open[:n-1]
	}
}

// assignDepths is the indentation engine: it sets Depth on every line. With
// section blocks disabled every line sits at depth zero. With them enabled, a
// begin line sits at its own block's level and everything after it one level
// deeper, until the matching end line dedents back.
func assignDepths(lines []Line, cfg Config) []Line {
	if !cfg.SectionBlocks {
		for i := range lines {
			lines[i].Depth = 0
		}
		return lines
	}
	var st sectionTracker
	for i := range lines {
		if name, ok := markerName(lines[i].Tokens, "begin"); ok {
			lines[i].Depth = st.depth
			st.enter(name)
			continue
		}
		if name, ok := markerName(lines[i].Tokens, "end"); ok {
			st.leave(name)
			lines[i].Depth = st.depth
			continue
		}
		lines[i].Depth = st.depth
	}
	return lines
}

// markerName reports whether the line's tokens open with the given section
// keyword followed by an identifier, and returns that identifier. Keyword and
// section names match case-insensitively. Tokens after the identifier do not
// disqualify the marker; they stay on the line as ordinary content.
func markerName(tokens []string, keyword string) (string, bool) {
	if len(tokens) < 2 || !strings.EqualFold(tokens[0], keyword) {
		return "", false
	}
	if !isIdentText(tokens[1]) {
		return "", false
	}
	return tokens[1], true
}

// isIdentText reports whether s is wholly an identifier: a letter or
// underscore followed by letters, digits, or underscores.
func isIdentText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return false
		}
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
		} else {
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		i += size
	}
	return true
}
