// Package pathsdat reads and rewrites paths.dat files: registries that map
// entry names to file locations, one `name "path"` pair per entry. The
// package also keeps an append-only history of repointings so entries can be
// copied next to a working tree (make-local) and later reverted.
//
// Назначение: разбор и канонизация paths.dat, копирование целей в локальный
// каталог, журнал изменений с откатом.
// Не делает: удаления скопированных файлов, межпроцессных блокировок журнала.
// Зависимости: internal/lexer, internal/token, internal/diag, internal/source.
package pathsdat
