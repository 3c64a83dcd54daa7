package format

// Writer accumulates formatted output and emits the indentation prefix of the
// current line lazily, so depth changes take effect before any text lands on
// the line.
type Writer struct {
	cfg         Config
	buf         []byte
	indentLevel int
	atLineStart bool
}

// NewWriter creates a formatting writer. sizeHint preallocates the output
// buffer and may be zero.
func NewWriter(cfg Config, sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{
		cfg:         cfg.Normalized(),
		buf:         make([]byte, 0, sizeHint),
		atLineStart: true,
	}
}

// Bytes returns the accumulated formatted output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// SetIndent sets the indentation level applied to subsequent lines. Negative
// levels clamp to zero.
func (w *Writer) SetIndent(level int) {
	if level < 0 {
		level = 0
	}
	w.indentLevel = level
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.cfg.UseSpaces {
		spaceCount := w.indentLevel * w.cfg.TabSize
		for i := 0; i < spaceCount; i++ {
			w.buf = append(w.buf, ' ')
		}
	} else {
		for i := 0; i < w.indentLevel; i++ {
			w.buf = append(w.buf, '\t')
		}
	}
	w.atLineStart = false
}

// WriteString writes a string to the output, emitting the pending
// indentation first. Writing an empty string is a no-op and keeps the
// indentation pending.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.updateLineState(s[len(s)-1])
}

func (w *Writer) updateLineState(last byte) {
	w.atLineStart = last == '\n'
}

// Newline terminates the current line.
func (w *Writer) Newline() {
	w.buf = append(w.buf, '\n')
	w.atLineStart = true
}

// Render emits doc as text: each line is its indentation prefix (depth times
// the configured unit) followed by the normalized text and a newline.
func Render(doc Document, cfg Config) []byte {
	if len(doc.Lines) == 0 {
		return nil
	}
	size := 0
	for i := range doc.Lines {
		size += len(doc.Lines[i].Text) + doc.Lines[i].Depth + 1
	}
	w := NewWriter(cfg, size)
	for i := range doc.Lines {
		w.SetIndent(doc.Lines[i].Depth)
		w.WriteString(doc.Lines[i].Text)
		w.Newline()
	}
	return w.Bytes()
}
