package token_test

import (
	"testing"

	"stormatter/internal/source"
	"stormatter/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{
		token.IntLit, token.FloatLit, token.StringLit,
	}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.Punct, token.EOF, token.Invalid}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsIdent(t *testing.T) {
	if !tok(token.Ident).IsIdent() {
		t.Fatalf("Ident should be ident")
	}
	if tok(token.StringLit).IsIdent() {
		t.Fatalf("StringLit must not be ident")
	}
}

func TestIsPunct(t *testing.T) {
	if !tok(token.Punct).IsPunct() {
		t.Fatalf("Punct should be punct")
	}
	if tok(token.Ident).IsPunct() {
		t.Fatalf("Ident must not be punct")
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		kind token.Kind
		want string
	}{
		{token.Invalid, "Invalid"},
		{token.EOF, "EOF"},
		{token.Ident, "Ident"},
		{token.IntLit, "IntLit"},
		{token.FloatLit, "FloatLit"},
		{token.StringLit, "StringLit"},
		{token.Punct, "Punct"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}
