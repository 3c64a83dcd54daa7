package format

// dropBlankLines removes every line whose token sequence is empty. Runs of
// blank lines disappear entirely; the relative order of the remaining lines
// is preserved.
func dropBlankLines(lines []Line) []Line {
	kept := make([]Line, 0, len(lines))
	for i := range lines {
		if len(lines[i].Tokens) == 0 {
			continue
		}
		kept = append(kept, lines[i])
	}
	return kept
}
