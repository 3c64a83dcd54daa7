package diag

import "sort"

// Bag накапливает диагностики одного запуска с жёстким лимитом.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add добавляет диагностику. Возвращает false, если лимит уже достигнут
// и диагностика отброшена.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors — есть ли хотя бы одна диагностика уровня Error и выше.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings — есть ли хотя бы одна диагностика уровня Warning и выше.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items отдаёт внутренний срез как read-only; модифицировать его нельзя.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge переносит диагностики из другого Bag, при необходимости
// расширяя лимит, чтобы вместить всё.
func (b *Bag) Merge(other *Bag) {
	total := len(b.items) + len(other.items)
	if uint16(total) > b.max {
		b.max = uint16(total)
	}
	b.items = append(b.items, other.items...)
}

// Sort упорядочивает диагностики детерминированно: файл, начало, конец,
// severity по убыванию, код по возрастанию. Рендеры полагаются на этот
// порядок и сами ничего не сортируют.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code.String() < dj.Code.String()
	})
}

// Dedup убирает повторы с одинаковым кодом и primary span.
func (b *Bag) Dedup() {
	type itemKey struct {
		code Code
		span string
	}
	seen := make(map[itemKey]struct{}, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := itemKey{code: d.Code, span: d.Primary.String()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}
	b.items = kept
}
