package lexer

import (
	"testing"

	"stormatter/internal/source"
)

func cursorFile(t *testing.T, content string) (*source.FileSet, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dat", []byte(content))
	return fs, fs.Get(id)
}

// Последовательное чтение: "a\nb" → a, \n, b, EOF.
func TestCursorSequentialReading(t *testing.T) {
	_, file := cursorFile(t, "a\nb")
	cursor := NewCursor(file)

	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Peek(); got != want {
			t.Fatalf("Peek() = %q, want %q", got, want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Bump() = %q, want %q", got, want)
		}
	}

	if !cursor.EOF() {
		t.Error("expected EOF after reading everything")
	}
	if cursor.Peek() != 0 {
		t.Errorf("Peek() at EOF = %q, want 0", cursor.Peek())
	}
	if cursor.Bump() != 0 {
		t.Error("Bump() at EOF must return 0")
	}
}

func TestCursorPeek2(t *testing.T) {
	_, file := cursorFile(t, "hp 45")
	cursor := NewCursor(file)

	b0, b1, ok := cursor.Peek2()
	if !ok || b0 != 'h' || b1 != 'p' {
		t.Fatalf("Peek2() = (%q, %q, %v), want ('h', 'p', true)", b0, b1, ok)
	}

	// двигаемся к предпоследнему байту
	for !cursor.EOF() && cursor.Off+1 < cursor.Limit {
		cursor.Bump()
	}

	b0, b1, ok = cursor.Peek2()
	if ok {
		t.Errorf("Peek2() near EOF = (%q, %q, true), want failure", b0, b1)
	}
}

func TestCursorPeek3(t *testing.T) {
	_, file := cursorFile(t, "end")
	cursor := NewCursor(file)

	b0, b1, b2, ok := cursor.Peek3()
	if !ok || b0 != 'e' || b1 != 'n' || b2 != 'd' {
		t.Fatalf("Peek3() = (%q, %q, %q, %v), want ('e', 'n', 'd', true)", b0, b1, b2, ok)
	}

	cursor.Bump()
	if _, _, _, ok := cursor.Peek3(); ok {
		t.Error("Peek3() with two bytes left must fail")
	}
}

// SpanFrom + Resolve на UTF-8 содержимом: "α\nβ" (α и β по 2 байта).
func TestCursorSpanFromResolve(t *testing.T) {
	fs, file := cursorFile(t, "α\nβ")
	cursor := NewCursor(file)

	mark := cursor.Mark()
	cursor.Bump()
	cursor.Bump()

	span := cursor.SpanFrom(mark)
	if span.Start != 0 || span.End != 2 {
		t.Fatalf("span = (%d,%d), want (0,2)", span.Start, span.End)
	}

	start, end := fs.Resolve(span)
	if want := (source.LineCol{Line: 1, Col: 1}); start != want {
		t.Errorf("start = %+v, want %+v", start, want)
	}
	// '\n' принадлежит следующей строке в колонке 0
	if want := (source.LineCol{Line: 2, Col: 0}); end != want {
		t.Errorf("end = %+v, want %+v", end, want)
	}

	mark = cursor.Mark()
	cursor.Bump() // '\n'
	span = cursor.SpanFrom(mark)
	if span.Start != 2 || span.End != 3 {
		t.Fatalf("newline span = (%d,%d), want (2,3)", span.Start, span.End)
	}
	start, end = fs.Resolve(span)
	if want := (source.LineCol{Line: 2, Col: 0}); start != want {
		t.Errorf("newline start = %+v, want %+v", start, want)
	}
	if want := (source.LineCol{Line: 2, Col: 1}); end != want {
		t.Errorf("newline end = %+v, want %+v", end, want)
	}
}

func TestCursorEat(t *testing.T) {
	_, file := cursorFile(t, "a\nb")
	cursor := NewCursor(file)

	if !cursor.Eat('a') || !cursor.Eat('\n') || !cursor.Eat('b') {
		t.Fatal("Eat must consume matching bytes in order")
	}
	if !cursor.EOF() {
		t.Fatal("expected EOF after eating everything")
	}
	if cursor.Eat('x') {
		t.Error("Eat at EOF must fail")
	}

	cursor.Reset(Mark(0))
	if cursor.Eat('x') {
		t.Error("Eat of a non-matching byte must fail")
	}
	if cursor.Peek() != 'a' {
		t.Errorf("failed Eat must not move the cursor, Peek() = %q", cursor.Peek())
	}
}

func TestCursorMarkReset(t *testing.T) {
	_, file := cursorFile(t, "abc")
	cursor := NewCursor(file)

	markA := cursor.Mark()
	cursor.Bump()
	markB := cursor.Mark()
	cursor.Bump()

	cursor.Reset(markB)
	if cursor.Peek() != 'b' {
		t.Errorf("after Reset(markB): Peek() = %q, want 'b'", cursor.Peek())
	}
	cursor.Reset(markA)
	if cursor.Peek() != 'a' {
		t.Errorf("after Reset(markA): Peek() = %q, want 'a'", cursor.Peek())
	}
}
