package format

import "strings"

// SplitTokens returns the whitespace-delimited tokens of line: maximal runs
// of non-whitespace characters, in order. A blank or whitespace-only line
// yields no tokens.
func SplitTokens(line string) []string {
	return strings.Fields(line)
}

// NormalizeLine rejoins the tokens of line with single ASCII spaces, dropping
// leading and trailing whitespace. Token content is never altered.
func NormalizeLine(line string) string {
	return strings.Join(SplitTokens(line), " ")
}

// normalizeLines fills Tokens and Text for every line.
func normalizeLines(lines []Line) []Line {
	for i := range lines {
		lines[i].Tokens = SplitTokens(lines[i].Raw)
		lines[i].Text = strings.Join(lines[i].Tokens, " ")
	}
	return lines
}
