// Package format implements the stormatter line pipeline: per-line whitespace
// normalization, blank-line removal, and indentation driven by begin/end
// section blocks.
//
// Назначение: каноническое форматирование текста .dat/.storm за три чистых
// прохода по упорядоченному списку строк.
// Не делает: разбора семантики STORM, файлового IO, кеширования.
// Зависимости: только стандартная библиотека.
package format
