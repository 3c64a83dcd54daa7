package lexer

import (
	"unicode/utf8"

	"stormatter/internal/diag"
	"stormatter/internal/token"
)

// scanPunct сканирует одиночный знак пунктуации. Многобайтовых операторов в
// STORM нет: "==" — это два токена '='. Валидная не-ASCII руна тоже считается
// пунктуацией (один токен на руну); битый UTF-8 и управляющие байты — ошибка.
func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	b := lx.cursor.Peek()
	if b < utf8RuneSelf {
		lx.cursor.Bump()
		// печатаемый ASCII → пунктуация; управляющие байты — мусор
		if b >= 0x21 && b <= 0x7e {
			return emit(token.Punct)
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	r, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	if r == utf8.RuneError && sz <= 1 {
		// битый UTF-8: съедаем один байт, чтобы не зациклиться
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "invalid UTF-8 byte")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	lx.bumpRune()
	return emit(token.Punct)
}
