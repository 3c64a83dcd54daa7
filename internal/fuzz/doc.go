// Package fuzztests houses Go fuzz harnesses that exercise the formatting
// pipeline (source -> lexer, and the whitespace core). Its goal is to smoke
// test robustness and guard against panics or allocator explosions on
// arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер и ядро форматирования.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/format, internal/diag.
package fuzztests
