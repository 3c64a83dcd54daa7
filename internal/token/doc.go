// Package token defines lexical token kinds and trivia for STORM data files.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Begin..End).
//   - Whitespace, newlines, and comments are represented as leading Trivia and
//     never appear in the main token stream.
//   - Section markers (begin, end) are ordinary identifiers. They are
//     recognized by the formatter, not the lexer.
package token
