package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident // name, begin, end
	// IntLit represents an integer literal token.
	IntLit // 42
	// FloatLit represents a float literal token.
	FloatLit // 3.14
	// StringLit represents a double-quoted string literal token.
	StringLit // "path/to/file"
	// Punct represents a single punctuation byte outside the classes above.
	Punct // = : , ...
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case IntLit:
		return "IntLit"
	case FloatLit:
		return "FloatLit"
	case StringLit:
		return "StringLit"
	case Punct:
		return "Punct"
	default:
		return "Unknown"
	}
}
