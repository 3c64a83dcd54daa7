package token

// Stream is a read-only cursor over a lexed token slice. The slice is
// expected to end with an EOF token; lookahead past the end is clamped to
// that final token so callers never index out of range.
type Stream struct {
	tokens []Token
	pos    int
}

// NewStream wraps tokens in a cursor positioned at the first token.
func NewStream(tokens []Token) *Stream {
	if len(tokens) == 0 {
		tokens = []Token{{Kind: EOF}}
	}
	return &Stream{tokens: tokens}
}

// Peek returns the token offset positions ahead without consuming it.
func (s *Stream) Peek(offset int) Token {
	idx := s.pos + offset
	if idx >= len(s.tokens) {
		idx = len(s.tokens) - 1
	}
	return s.tokens[idx]
}

// Current returns the token at the cursor.
func (s *Stream) Current() Token {
	return s.Peek(0)
}

// Advance consumes and returns the current token. The cursor never moves
// past the trailing EOF token.
func (s *Stream) Advance() Token {
	tok := s.Current()
	if !s.AtEnd() {
		s.pos++
	}
	return tok
}

// Check reports whether the current token has the given kind.
func (s *Stream) Check(kind Kind) bool {
	return s.Current().Kind == kind
}

// Match consumes the current token if it has the given kind.
func (s *Stream) Match(kind Kind) bool {
	if s.Check(kind) {
		s.Advance()
		return true
	}
	return false
}

// Expect consumes and returns the current token if it has the given kind.
// On mismatch the cursor stays put and ok is false; the unexpected token is
// returned so the caller can point a diagnostic at it.
func (s *Stream) Expect(kind Kind) (tok Token, ok bool) {
	if s.Check(kind) {
		return s.Advance(), true
	}
	return s.Current(), false
}

// AtEnd reports whether the cursor reached the trailing EOF token.
func (s *Stream) AtEnd() bool {
	return s.Current().Kind == EOF
}
