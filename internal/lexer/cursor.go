package lexer

import (
	"fmt"

	"stormatter/internal/source"

	"fortio.org/safecast"
)

// Cursor — байтовая позиция в содержимом файла. Limit задаёт
// эксклюзивную верхнюю границу; ноль означает весь файл.
type Cursor struct {
	File  *source.File
	Off   uint32
	Limit uint32
}

// NewCursor ставит курсор на начало файла.
func NewCursor(f *source.File) Cursor {
	return Cursor{File: f, Limit: contentLen(f)}
}

func contentLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}

func (c *Cursor) limit() uint32 {
	if c.Limit != 0 {
		return c.Limit
	}
	return contentLen(c.File)
}

// EOF — достигнут ли конец файла.
func (c *Cursor) EOF() bool {
	return c.Off >= c.limit()
}

// Peek возвращает текущий байт, не сдвигая курсор; 0 на конце файла.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 возвращает два байта вперёд; ok=false, если их меньше двух.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.limit() {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// Peek3 возвращает три байта вперёд; ok=false, если их меньше трёх.
func (c *Cursor) Peek3() (b0, b1, b2 byte, ok bool) {
	if c.Off+2 >= c.limit() {
		return 0, 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], c.File.Content[c.Off+2], true
}

// Bump читает текущий байт и сдвигает курсор; 0 на конце файла.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Mark — сохранённая позиция, из которой потом строится Span.
type Mark uint32

func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom строит Span от метки до текущей позиции.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}

// Reset откатывает курсор к метке.
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}

// Eat сдвигает курсор, только если текущий байт равен b.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}
