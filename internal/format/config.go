package format

import (
	"errors"
	"fmt"
)

// DefaultTabSize is the number of spaces per indentation level when none is
// configured.
const DefaultTabSize = 4

// ErrConfig marks configuration errors, such as a negative tab size. Callers
// match it with errors.Is.
var ErrConfig = errors.New("invalid format configuration")

// Config controls the formatting passes.
type Config struct {
	UseSpaces     bool // indent with spaces instead of one tab per level
	TabSize       int  // spaces per level; meaningful only with UseSpaces
	SectionBlocks bool // treat begin/end pairs as nested sections
}

// Normalized fills in defaults for zero-valued fields.
func (c Config) Normalized() Config {
	if c.TabSize == 0 {
		c.TabSize = DefaultTabSize
	}
	return c
}

// Validate rejects option values that must abort the run before any
// formatting begins.
func (c Config) Validate() error {
	if c.TabSize < 0 {
		return fmt.Errorf("%w: tab size must not be negative, got %d", ErrConfig, c.TabSize)
	}
	return nil
}
