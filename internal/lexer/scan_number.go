package lexer

import (
	"stormatter/internal/token"
)

// scanNumber сканирует десятичное число: [0-9]+ (опц. .[0-9]+).
// Никаких баз, подчёркиваний и экспонент — данные STORM их не содержат.
// "1." — это IntLit "1" и пунктуация '.'; дробная часть требует цифру.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	// дробная часть
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump() // '.'
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
