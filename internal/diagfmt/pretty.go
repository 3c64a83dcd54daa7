package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stormatter/internal/diag"
	"stormatter/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		prettyDiagnostic(w, d, fs, opts)
	}
}

func prettyDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityText(d.Severity, opts.Color)

	loc, ok := resolveLocation(fs, d.Primary)
	if !ok {
		// Диагностики без привязки к файлу (ошибки ввода-вывода).
		fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code.ID(), d.Message)
		return
	}

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		formatPath(loc.file, fs, opts.PathMode), loc.start.Line, loc.start.Col,
		sev, d.Code.ID(), d.Message)
	writeContext(w, loc, opts)

	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		nloc, nok := resolveLocation(fs, note.Span)
		if !nok {
			fmt.Fprintf(w, "  note: %s\n", note.Msg)
			continue
		}
		fmt.Fprintf(w, "  note: %s:%d:%d: %s\n",
			formatPath(nloc.file, fs, opts.PathMode), nloc.start.Line, nloc.start.Col, note.Msg)
	}
}

type prettyLocation struct {
	file       *source.File
	start, end source.LineCol
}

// resolveLocation защищается от пустых FileSet'ов: у диагностик
// ввода-вывода span нулевой и файла за ним нет.
func resolveLocation(fs *source.FileSet, span source.Span) (loc prettyLocation, ok bool) {
	defer func() {
		if recover() != nil {
			loc = prettyLocation{}
			ok = false
		}
	}()
	if fs == nil {
		return prettyLocation{}, false
	}
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)
	return prettyLocation{file: file, start: start, end: end}, true
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	}
	return f.Path
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

func severityText(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	case diag.SevInfo:
		return infoColor.Sprint(label)
	}
	return label
}

// writeContext печатает строку со span'ом, её соседей в пределах
// opts.Context и подчёркивание ^~~~ под самим span'ом.
func writeContext(w io.Writer, loc prettyLocation, opts PrettyOpts) {
	if opts.Context < 0 {
		return
	}
	total := lineCount(loc.file)
	line := loc.start.Line
	if line == 0 || line > total {
		return
	}

	ctx := uint32(opts.Context)
	first := uint32(1)
	if line > ctx {
		first = line - ctx
	}
	last := min(line+ctx, total)

	for n := first; n <= last; n++ {
		text := loc.file.GetLine(n)
		fmt.Fprintf(w, "%5d | %s\n", n, clipLine(text, opts.Width))
		if n == line {
			writeCaret(w, loc, text)
		}
	}
}

func writeCaret(w io.Writer, loc prettyLocation, text string) {
	pad := int(loc.start.Col) - 1
	if pad < 0 {
		pad = 0
	}
	if pad > len(text) {
		pad = len(text)
	}

	width := 1
	switch {
	case loc.end.Line == loc.start.Line && loc.end.Col > loc.start.Col:
		width = int(loc.end.Col - loc.start.Col)
	case loc.end.Line > loc.start.Line:
		// До конца строки.
		if rest := len(text) - pad; rest > width {
			width = rest
		}
	}

	// Табуляции в строке повторяем в отступе, чтобы каретка не съезжала.
	indent := make([]byte, 0, pad)
	for i := 0; i < pad; i++ {
		if text[i] == '\t' {
			indent = append(indent, '\t')
		} else {
			indent = append(indent, ' ')
		}
	}

	fmt.Fprintf(w, "%5s | %s^%s\n", "", indent, strings.Repeat("~", width-1))
}

func lineCount(f *source.File) uint32 {
	count, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if len(f.Content) == 0 {
		return 0
	}
	if f.Content[len(f.Content)-1] == '\n' {
		return count
	}
	return count + 1
}

func clipLine(text string, width uint8) string {
	if width == 0 || len(text) <= int(width) {
		return text
	}
	return runewidth.Truncate(text, int(width), "...")
}
