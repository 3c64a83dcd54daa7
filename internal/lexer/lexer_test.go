package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"stormatter/internal/diag"
	"stormatter/internal/lexer"
	"stormatter/internal/source"
	"stormatter/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

// Report реализует интерфейс diag.Reporter
func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

// HasErrors возвращает true, если были зарегистрированы ошибки
func (r *testReporter) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

// ErrorCount возвращает количество ошибок
func (r *testReporter) ErrorCount() int {
	count := 0
	for _, d := range r.diagnostics {
		if d.Severity == diag.SevError {
			count++
		}
	}
	return count
}

// ErrorMessages возвращает список сообщений об ошибках
func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.dat", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{diagnostics: make([]diag.Diagnostic, 0)}
	opts := lexer.Options{Reporter: reporter}
	lx := lexer.New(file, opts)

	return lx, reporter
}

// collectAllTokens собирает все токены до EOF
func collectAllTokens(lx *lexer.Lexer) []token.Token {
	tokens := make([]token.Token, 0)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}

// expectTokens проверяет последовательность токенов
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)

	// убираем EOF из сравнения
	if len(tokens) > 0 && tokens[len(tokens)-1].Kind == token.EOF {
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}

	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)",
				i, expected[i], tok.Kind, tok.Text)
		}
	}
}

// expectSingleToken проверяет, что вход создаёт ровно один токен
func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != expectedKind {
		t.Errorf("Expected kind %v, got %v", expectedKind, tok.Kind)
	}
	if tok.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ====== Тесты для scan_ident.go ======

func TestIdentifiers_ASCII(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		text  string
	}{
		{"foo", token.Ident, "foo"},
		{"_bar", token.Ident, "_bar"},
		{"__test", token.Ident, "__test"},
		{"x123", token.Ident, "x123"},
		{"camelCase", token.Ident, "camelCase"},
		{"UPPER", token.Ident, "UPPER"},
		{"_", token.Ident, "_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.text)
		})
	}
}

func TestSectionMarkersAreIdents(t *testing.T) {
	// begin/end — не ключевые слова; их распознаёт форматтер, а не лексер
	tests := []string{"begin", "end", "Begin", "END", "bEgIn"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, _ := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.Ident {
				t.Errorf("Expected Ident for %q, got %v", input, tok.Kind)
			}
			if tok.Text != input {
				t.Errorf("Expected text %q, got %q", input, tok.Text)
			}
		})
	}
}

func TestIdentifiers_Unicode(t *testing.T) {
	tests := []string{
		"идентификатор",
		"переменная",
		"δ",
		"λx",
		"函数",
		"変数",
		"aλb", // смешанный ASCII/Unicode — один идентификатор
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, _ := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.Ident {
				t.Errorf("Expected Ident, got %v for %q", tok.Kind, input)
			}
			if tok.Text != input {
				t.Errorf("Expected text %q, got %q", input, tok.Text)
			}
		})
	}
}

// ====== Тесты для scan_number.go ======

func TestNumbers_Decimal(t *testing.T) {
	tests := []string{
		"0",
		"123",
		"456789",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.IntLit, input)
		})
	}
}

func TestNumbers_Float(t *testing.T) {
	tests := []string{
		"1.0",
		"3.14",
		"0.5",
		"123.456",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.FloatLit, input)
		})
	}
}

func TestNumbers_TrailingDotIsPunct(t *testing.T) {
	// "1." — это IntLit и '.', дробная часть требует цифру
	expectTokens(t, "1.", []token.Kind{
		token.IntLit,
		token.Punct,
	})
}

func TestNumbers_LeadingDotIsPunct(t *testing.T) {
	// ".5" — это '.' и IntLit, числа не начинаются с точки
	expectTokens(t, ".5", []token.Kind{
		token.Punct,
		token.IntLit,
	})
}

func TestNumbers_SplitBeforeLetters(t *testing.T) {
	// "123abc" — это IntLit и Ident, без диагностики
	lx, reporter := makeTestLexer("123abc")
	tokens := collectAllTokens(lx)

	if len(tokens) != 3 { // IntLit, Ident, EOF
		t.Fatalf("Expected 3 tokens, got %v", tokensToString(tokens))
	}
	if tokens[0].Kind != token.IntLit || tokens[0].Text != "123" {
		t.Errorf("Expected IntLit \"123\", got %v %q", tokens[0].Kind, tokens[0].Text)
	}
	if tokens[1].Kind != token.Ident || tokens[1].Text != "abc" {
		t.Errorf("Expected Ident \"abc\", got %v %q", tokens[1].Kind, tokens[1].Text)
	}
	if reporter.HasErrors() {
		t.Errorf("Expected no errors, got %v", reporter.ErrorMessages())
	}
}

func TestNumbers_DoubleDotNotPartOfNumber(t *testing.T) {
	// "1..10" — IntLit, '.', '.', IntLit: многосимвольных операторов нет
	expectTokens(t, "1..10", []token.Kind{
		token.IntLit,
		token.Punct,
		token.Punct,
		token.IntLit,
	})
}

// ====== Тесты для scan_string.go ======

func TestString_Simple(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{`""`, `""`},
		{`"hello"`, `"hello"`},
		{`"hello world"`, `"hello world"`},
		{`"123"`, `"123"`},
		{`"path/to/file.dat"`, `"path/to/file.dat"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, token.StringLit, tt.text)
		})
	}
}

func TestString_BackslashIsLiteral(t *testing.T) {
	// Escape-последовательностей нет: '\' — обычный байт и кавычку не экранирует
	expectSingleToken(t, `"a\b"`, token.StringLit, `"a\b"`)
	expectSingleToken(t, `"C:\dir\"`, token.StringLit, `"C:\dir\"`)
}

func TestString_Unterminated(t *testing.T) {
	tests := []string{
		`"hello`,
		`"world`,
		`"unclosed string`,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, reporter := makeTestLexer(input)
			tok := lx.Next()

			if tok.Kind != token.Invalid {
				t.Errorf("Expected Invalid for unterminated string, got %v", tok.Kind)
			}
			if !reporter.HasErrors() {
				t.Error("Expected error report for unterminated string")
			}
		})
	}
}

func TestString_NewlineInString(t *testing.T) {
	input := "\"hello\nworld\""
	lx, reporter := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != token.Invalid {
		t.Errorf("Expected Invalid for newline in string, got %v", tok.Kind)
	}
	if !reporter.HasErrors() {
		t.Error("Expected error report for newline in string")
	}
}

// ====== Тесты для scan_punct.go ======

func TestPunctuation_Single(t *testing.T) {
	tests := []string{
		"+", "-", "*", "/", "%",
		"=", "!", "<", ">",
		"&", "|", "^", "~", "?",
		":", ";", ",", ".",
		"(", ")", "{", "}", "[", "]",
		"@", "#", "$",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			expectSingleToken(t, input, token.Punct, input)
		})
	}
}

func TestPunctuation_NoMultiByteOperators(t *testing.T) {
	// "==" — это два токена '=', жадных операторов нет
	lx, _ := makeTestLexer("==")
	tokens := collectAllTokens(lx)

	if len(tokens) != 3 { // Punct, Punct, EOF
		t.Fatalf("Expected 3 tokens, got %v", tokensToString(tokens))
	}
	for i := 0; i < 2; i++ {
		if tokens[i].Kind != token.Punct || tokens[i].Text != "=" {
			t.Errorf("Token %d: expected Punct \"=\", got %v %q", i, tokens[i].Kind, tokens[i].Text)
		}
	}
}

func TestPunctuation_UnicodeRune(t *testing.T) {
	// валидная не-ASCII руна, не буква — одиночная пунктуация
	tests := []string{"§", "€", "→"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lx, reporter := makeTestLexer(input)
			tok := lx.Next()

			if tok.Kind != token.Punct {
				t.Errorf("Expected Punct for %q, got %v", input, tok.Kind)
			}
			if tok.Text != input {
				t.Errorf("Expected text %q, got %q", input, tok.Text)
			}
			if reporter.HasErrors() {
				t.Errorf("Expected no errors for %q, got %v", input, reporter.ErrorMessages())
			}
		})
	}
}

func TestUnknownCharacter(t *testing.T) {
	// управляющие байты и битый UTF-8 — ошибка LexUnknownChar
	tests := []string{
		"\x01",
		"\x7f",
		"\x80", // одинокий continuation-байт
	}

	for _, input := range tests {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			lx, reporter := makeTestLexer(input)
			tok := lx.Next()

			if tok.Kind != token.Invalid {
				t.Errorf("Expected Invalid for unknown char %q, got %v", input, tok.Kind)
			}
			if !reporter.HasErrors() {
				t.Error("Expected error report for unknown character")
			}
		})
	}
}

// ====== Тесты для trivia.go ======

func TestTrivia_Spaces(t *testing.T) {
	lx, _ := makeTestLexer("  \t  foo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 1 {
		t.Fatalf("Expected 1 leading trivia, got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaSpace {
		t.Errorf("Expected TriviaSpace, got %v", tok.Leading[0].Kind)
	}
}

func TestTrivia_CarriageReturnIsSpace(t *testing.T) {
	// одиночный '\r' (после нормализации CRLF встречается редко) — пробельная тривия
	lx, _ := makeTestLexer(" \r foo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaSpace {
		t.Fatalf("Expected single TriviaSpace, got %+v", tok.Leading)
	}
	if tok.Leading[0].Text != " \r " {
		t.Errorf("Expected trivia text %q, got %q", " \r ", tok.Leading[0].Text)
	}
}

func TestTrivia_Newlines(t *testing.T) {
	lx, _ := makeTestLexer("\n\n\nfoo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 1 {
		t.Fatalf("Expected 1 leading trivia (coalesced newlines), got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaNewline {
		t.Errorf("Expected TriviaNewline, got %v", tok.Leading[0].Kind)
	}
}

func TestTrivia_LineComment(t *testing.T) {
	lx, _ := makeTestLexer("// this is a comment\nfoo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	// Должно быть 2 trivia: comment + newline
	if len(tok.Leading) != 2 {
		t.Fatalf("Expected 2 leading trivia, got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaLineComment {
		t.Errorf("Expected TriviaLineComment, got %v", tok.Leading[0].Kind)
	}
	if tok.Leading[1].Kind != token.TriviaNewline {
		t.Errorf("Expected TriviaNewline, got %v", tok.Leading[1].Kind)
	}
}

func TestTrivia_TripleSlashIsLineComment(t *testing.T) {
	// doc-комментариев нет: "///" — обычный line comment
	lx, _ := makeTestLexer("/// still a comment\nfoo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 2 {
		t.Fatalf("Expected 2 leading trivia, got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaLineComment {
		t.Errorf("Expected TriviaLineComment, got %v", tok.Leading[0].Kind)
	}
}

func TestTrivia_BlockComment(t *testing.T) {
	lx, _ := makeTestLexer("/* block comment */foo")
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}
	if len(tok.Leading) != 1 {
		t.Fatalf("Expected 1 leading trivia, got %d", len(tok.Leading))
	}
	if tok.Leading[0].Kind != token.TriviaBlockComment {
		t.Errorf("Expected TriviaBlockComment, got %v", tok.Leading[0].Kind)
	}
}

func TestTrivia_BlockCommentNoNesting(t *testing.T) {
	// Первое "*/" закрывает комментарий; вложенности нет
	lx, reporter := makeTestLexer("/* outer /* inner */ rest")
	tok := lx.Next()

	if tok.Kind != token.Ident || tok.Text != "rest" {
		t.Fatalf("Expected Ident \"rest\" after block comment, got %v %q", tok.Kind, tok.Text)
	}
	if len(tok.Leading) == 0 || tok.Leading[0].Kind != token.TriviaBlockComment {
		t.Fatalf("Expected leading block comment trivia, got %+v", tok.Leading)
	}
	if tok.Leading[0].Text != "/* outer /* inner */" {
		t.Errorf("Expected trivia text %q, got %q", "/* outer /* inner */", tok.Leading[0].Text)
	}
	if reporter.HasErrors() {
		t.Errorf("Expected no errors, got %v", reporter.ErrorMessages())
	}
}

func TestTrivia_UnterminatedBlockComment(t *testing.T) {
	// Незакрытый комментарий съедает всё до конца файла
	lx, reporter := makeTestLexer("/* unterminated\nfoo")
	tok := lx.Next()

	// После незакрытого комментария, который съел весь текст, следует EOF
	if tok.Kind != token.EOF {
		t.Errorf("Expected EOF after unterminated block comment consuming all input, got %v", tok.Kind)
	}
	// должен быть репорт об ошибке
	if !reporter.HasErrors() {
		t.Error("Expected error report for unterminated block comment")
	}

	// Закрытый комментарий ошибок не даёт
	lx2, reporter2 := makeTestLexer("/* terminated */ foo")
	tok2 := lx2.Next()
	if tok2.Kind != token.Ident {
		t.Errorf("Expected Ident after terminated block comment, got %v", tok2.Kind)
	}
	if len(tok2.Leading) == 0 {
		t.Error("Expected at least one leading trivia (the block comment)")
	}
	if reporter2.HasErrors() {
		t.Errorf("Expected no errors for properly terminated block comment, got %v", reporter2.ErrorMessages())
	}
}

func TestTrivia_Mixed(t *testing.T) {
	input := `
	// comment 1
	/* block */
	foo`

	lx, _ := makeTestLexer(input)
	tok := lx.Next()

	if tok.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok.Kind)
	}

	// Должно быть несколько trivia
	if len(tok.Leading) < 3 {
		t.Errorf("Expected at least 3 trivia, got %d", len(tok.Leading))
	}
}

// ====== Интеграционные тесты ======

func TestLexer_SectionBlock(t *testing.T) {
	input := "begin things\n  widget 42\nend things"
	expectTokens(t, input, []token.Kind{
		token.Ident, // begin
		token.Ident, // things
		token.Ident, // widget
		token.IntLit,
		token.Ident, // end
		token.Ident, // things
	})
}

func TestLexer_PathsEntry(t *testing.T) {
	input := `main "data/main.dat"`
	expectTokens(t, input, []token.Kind{
		token.Ident,
		token.StringLit,
	})
}

func TestLexer_MixedValues(t *testing.T) {
	input := `alpha = 1.5, "text"; [2]`
	expectTokens(t, input, []token.Kind{
		token.Ident,
		token.Punct, // =
		token.FloatLit,
		token.Punct, // ,
		token.StringLit,
		token.Punct, // ;
		token.Punct, // [
		token.IntLit,
		token.Punct, // ]
	})
}

func TestLexer_WithComments(t *testing.T) {
	input := `
// leading comment
widget 42 // inline comment
`
	expectTokens(t, input, []token.Kind{
		token.Ident,
		token.IntLit,
	})
}

func TestLexer_PeekBehavior(t *testing.T) {
	lx, _ := makeTestLexer("a b c")

	// Peek не должен потреблять токен
	peek1 := lx.Peek()
	if peek1.Kind != token.Ident || peek1.Text != "a" {
		t.Errorf("First peek: expected Ident 'a', got %v '%s'", peek1.Kind, peek1.Text)
	}

	peek2 := lx.Peek()
	if peek2.Kind != peek1.Kind || peek2.Text != peek1.Text {
		t.Error("Second peek should return the same token")
	}

	// Next должен вернуть тот же токен и продвинуться
	next1 := lx.Next()
	if next1.Kind != peek1.Kind || next1.Text != peek1.Text {
		t.Error("Next should return the peeked token")
	}

	// Следующий токен должен быть другим
	next2 := lx.Next()
	if next2.Text != "b" {
		t.Errorf("Expected 'b', got '%s'", next2.Text)
	}
}

func TestLexer_EOF(t *testing.T) {
	lx, _ := makeTestLexer("x")

	tok1 := lx.Next()
	if tok1.Kind != token.Ident {
		t.Fatalf("Expected Ident, got %v", tok1.Kind)
	}

	tok2 := lx.Next()
	if tok2.Kind != token.EOF {
		t.Fatalf("Expected EOF, got %v", tok2.Kind)
	}

	// Повторные вызовы Next после EOF должны продолжать возвращать EOF
	tok3 := lx.Next()
	if tok3.Kind != token.EOF {
		t.Errorf("Expected EOF again, got %v", tok3.Kind)
	}
}

func TestLexer_EmptyInput(t *testing.T) {
	lx, _ := makeTestLexer("")
	tok := lx.Next()

	if tok.Kind != token.EOF {
		t.Errorf("Expected EOF for empty input, got %v", tok.Kind)
	}
}

func TestLexer_OnlyWhitespace(t *testing.T) {
	lx, _ := makeTestLexer("   \t\n  ")
	tok := lx.Next()

	if tok.Kind != token.EOF {
		t.Errorf("Expected EOF for whitespace-only input, got %v", tok.Kind)
	}
}

func TestTokenize_IncludesEOF(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.dat", []byte("a 1"))
	file := fs.Get(fileID)

	tokens := lexer.Tokenize(file, lexer.Options{})
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens (Ident, IntLit, EOF), got %v", tokensToString(tokens))
	}
	if tokens[len(tokens)-1].Kind != token.EOF {
		t.Errorf("Expected trailing EOF, got %v", tokens[len(tokens)-1].Kind)
	}
}

// Бенчмарки

func BenchmarkLexer_SingleLine(b *testing.B) {
	input := `widget "large" 42 3.14`
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("bench.dat", []byte(input))
	file := fs.Get(fileID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lx := lexer.New(file, lexer.Options{})
		for {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	}
}

func BenchmarkLexer_LargeFile(b *testing.B) {
	// Имитируем большой файл данных
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("begin section")
		sb.WriteString(fmt.Sprintf("%d", i))
		sb.WriteString("\n  widget ")
		sb.WriteString(fmt.Sprintf("%d", i))
		sb.WriteString(" \"value\"\nend section")
		sb.WriteString(fmt.Sprintf("%d", i))
		sb.WriteString("\n")
	}
	input := sb.String()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual("bench.dat", []byte(input))
	file := fs.Get(fileID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lx := lexer.New(file, lexer.Options{})
		for {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	}
}
