// Package grammar implements the context-free grammar data model, the
// Peacock-JSON and Gramatron-JSON loaders, and the normalization phases
// that turn a raw grammar into a form the automaton builder can consume.
package grammar

import "fmt"

// SymbolKind distinguishes the two kinds of right-hand-side symbols.
type SymbolKind int

const (
	// KindTerminal marks a symbol as an opaque byte string.
	KindTerminal SymbolKind = iota
	// KindNonTerminal marks a symbol as a reference to another rule.
	KindNonTerminal
)

func (k SymbolKind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindNonTerminal:
		return "non-terminal"
	default:
		return "?"
	}
}

// Symbol is a tagged value: either a terminal carrying opaque bytes, or
// a non-terminal referencing a rule by name.
type Symbol struct {
	Kind  SymbolKind
	Name  string // valid when Kind == KindNonTerminal
	Bytes []byte // valid when Kind == KindTerminal, may be empty (ε)
}

// NewTerminal builds a terminal symbol from its content.
func NewTerminal(content []byte) Symbol {
	return Symbol{Kind: KindTerminal, Bytes: content}
}

// NewNonTerminal builds a non-terminal symbol referencing name.
func NewNonTerminal(name string) Symbol {
	return Symbol{Kind: KindNonTerminal, Name: name}
}

// IsTerminal reports whether s is a terminal symbol.
func (s Symbol) IsTerminal() bool {
	return s.Kind == KindTerminal
}

// IsNonTerminal reports whether s is a non-terminal symbol.
func (s Symbol) IsNonTerminal() bool {
	return s.Kind == KindNonTerminal
}

// IsEmpty reports whether s is the ε terminal (a terminal with no bytes).
func (s Symbol) IsEmpty() bool {
	return s.Kind == KindTerminal && len(s.Bytes) == 0
}

func (s Symbol) String() string {
	if s.IsNonTerminal() {
		return fmt.Sprintf("<%s>", s.Name)
	}
	return fmt.Sprintf("'%s'", string(s.Bytes))
}
