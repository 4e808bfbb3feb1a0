// Package automaton turns a normalized grammar into the flat,
// pointer-free description spec.md §4.3 calls for — an array of
// non-terminals, each an ordered list of alternatives, each alternative
// an ordered list of steps — and provides a generic Engine that walks
// that description directly.
//
// Engine exists only for tests and the peacock-generate demo binary; the
// performance-critical deliverable is the codegen package's emitted Go
// source, which switches over alternatives instead of indexing into this
// structure. See SPEC_FULL.md §9 for why both exist.
package automaton

import "github.com/z2-2z/peacock/grammar"

// StepKind distinguishes the two kinds of alternative steps.
type StepKind int

const (
	StepTerminal StepKind = iota
	StepNonTerminal
)

// Step is one element of an alternative's right-hand side: either a
// literal byte string or a reference to another non-terminal by ID.
type Step struct {
	Kind   StepKind
	Bytes  []byte // valid when Kind == StepTerminal
	Target int    // valid when Kind == StepNonTerminal, an index into Automaton.NonTerminals
}

// NonTerminalInfo is one non-terminal's compiled form: its source name
// (kept for diagnostics and codegen identifier naming) and its ordered
// alternatives, in source order — the same order the unparse trial
// sequence and the generate_N random choice both use.
type NonTerminalInfo struct {
	Name         string
	Alternatives [][]Step
}

// Automaton is the complete flat description of a grammar, ready for
// either the Engine or the codegen Emitter to consume.
type Automaton struct {
	NonTerminals []NonTerminalInfo
	EntryID      int
}

// Build assigns each production of each non-terminal its alternative
// index (source position, already established by grammar.New) and lowers
// the grammar's symbol references into Step slices addressed by the
// integer IDs grammar.Normalize assigned. It assumes n came from
// grammar.Normalize, so reachability and terminal coalescing already
// hold.
func Build(n *grammar.Normalized) (*Automaton, error) {
	a := &Automaton{
		NonTerminals: make([]NonTerminalInfo, len(n.Order)),
		EntryID:      n.EntryID,
	}

	for _, name := range n.Order {
		id := n.ID[name]
		rule := n.Grammar.Rules[name]

		info := NonTerminalInfo{
			Name:         name,
			Alternatives: make([][]Step, len(rule.Productions)),
		}

		for _, prod := range rule.Productions {
			steps := make([]Step, 0, len(prod.RHS))
			for _, sym := range prod.RHS {
				if sym.IsNonTerminal() {
					steps = append(steps, Step{Kind: StepNonTerminal, Target: n.ID[sym.Name]})
				} else {
					steps = append(steps, Step{Kind: StepTerminal, Bytes: sym.Bytes})
				}
			}
			info.Alternatives[prod.Index] = steps
		}

		a.NonTerminals[id] = info
	}

	return a, nil
}
