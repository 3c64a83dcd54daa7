package format

import "slices"

// Format runs the three formatting passes over doc: tokenize and rejoin every
// line with single spaces, drop blank lines, assign indentation depths. The
// input document is left untouched.
func Format(doc Document, cfg Config) Document {
	cfg = cfg.Normalized()
	lines := slices.Clone(doc.Lines)
	lines = normalizeLines(lines)
	lines = dropBlankLines(lines)
	lines = assignDepths(lines, cfg)
	return Document{Lines: lines}
}

// Source formats raw file content and returns the canonical text. Non-empty
// output always ends in exactly one newline; a document with no surviving
// lines renders as empty output.
func Source(src []byte, cfg Config) []byte {
	doc := Format(ParseDocument(src), cfg)
	return Render(doc, cfg)
}
