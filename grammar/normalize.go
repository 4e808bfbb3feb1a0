package grammar

import (
	"golang.org/x/exp/slices"

	"github.com/z2-2z/peacock/perr"
)

// maxProductivityDepth bounds the derivation-depth search used by the
// productivity check. It mirrors the "bounded-depth expansion" language
// without needing an explicit stack budget: Go's goroutine stacks grow on
// demand, so the bound exists to make the check terminate quickly, not to
// avoid overflow.
const maxProductivityDepth = 64

// Normalized is a Grammar that has been through every phase of Normalize:
// non-terminals carry stable small-integer IDs, unreachable rules are
// pruned, adjacent terminals within a production are coalesced, and the
// entry's productivity has been checked.
type Normalized struct {
	Grammar  *Grammar
	Order    []string       // non-terminal names in ID order
	ID       map[string]int // name -> ID
	EntryID  int
	Warnings []error // non-fatal, e.g. *perr.GrammarUnproductive
}

// Normalize runs the five phases documented in spec.md §4.2 over g:
// interning, reachability, terminal coalescing, trial-order recording
// (a no-op beyond preserving source order, which New already does), and
// a productivity check on the entry non-terminal.
func Normalize(g *Grammar) (*Normalized, error) {
	order, ids, err := internAndPrune(g)
	if err != nil {
		return nil, err
	}

	for _, name := range order {
		rule := g.Rules[name]
		for i := range rule.Productions {
			rule.Productions[i].RHS = coalesceTerminals(rule.Productions[i].RHS)
		}
	}

	n := &Normalized{
		Grammar: g,
		Order:   order,
		ID:      ids,
		EntryID: ids[g.Entry],
	}

	if !isProductive(g, g.Entry, maxProductivityDepth, map[string]bool{}) {
		n.Warnings = append(n.Warnings, &perr.GrammarUnproductive{NonTerminal: g.Entry})
	}

	return n, nil
}

// internAndPrune performs phases 1 and 2: it assigns IDs to every
// non-terminal reachable from g.Entry by forward closure (a worklist
// fixed-point, in the style of the teacher's FIRST-set computation) and
// fails with *perr.GrammarReference if a reachable production refers to a
// non-terminal with no rule. Non-terminals never reached are dropped from
// g.Rules entirely; they play no further part in compilation.
func internAndPrune(g *Grammar) ([]string, map[string]int, error) {
	reached := map[string]bool{g.Entry: true}
	worklist := []string{g.Entry}

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		rule, ok := g.Rules[name]
		if !ok {
			return nil, nil, &perr.GrammarReference{NonTerminal: name}
		}

		for _, prod := range rule.Productions {
			for _, sym := range prod.RHS {
				if !sym.IsNonTerminal() {
					continue
				}
				if reached[sym.Name] {
					continue
				}
				reached[sym.Name] = true
				worklist = append(worklist, sym.Name)
			}
		}
	}

	order := make([]string, 0, len(reached))
	for name := range g.Rules {
		if reached[name] {
			order = append(order, name)
		} else {
			delete(g.Rules, name)
		}
	}

	// Deterministic ID assignment: entry first, then the rest in the
	// order map iteration happened to find them is not reproducible
	// across runs, so sort by name once reachability is settled.
	sortStrings(order, g.Entry)

	ids := make(map[string]int, len(order))
	for i, name := range order {
		ids[name] = i
	}

	return order, ids, nil
}

// sortStrings puts entry first, then the remaining names in ascending
// lexical order, in place.
func sortStrings(names []string, entry string) {
	for i := range names {
		if names[i] == entry {
			names[0], names[i] = names[i], names[0]
			break
		}
	}
	slices.Sort(names[1:])
}

// coalesceTerminals merges adjacent terminal symbols in rhs into one,
// concatenating their bytes. A non-empty run swallows any empty
// terminals within it. If rhs reduces to nothing (it was all empty
// terminals), a single empty terminal is retained as the ε marker.
func coalesceTerminals(rhs []Symbol) []Symbol {
	out := make([]Symbol, 0, len(rhs))
	var pending []byte
	havePending := false

	flush := func() {
		if havePending && len(pending) > 0 {
			out = append(out, NewTerminal(pending))
		}
		pending = nil
		havePending = false
	}

	for _, sym := range rhs {
		if sym.IsNonTerminal() {
			flush()
			out = append(out, sym)
			continue
		}
		havePending = true
		pending = append(pending, sym.Bytes...)
	}
	flush()

	if len(out) == 0 {
		out = append(out, NewTerminal(nil))
	}

	return out
}

// isProductive performs a bounded-depth search for at least one finite
// derivation of name. It treats any non-terminal as productive once a
// terminal-only (or empty) frontier is reached within depth steps;
// recursion through already-open non-terminals at the same call stack is
// rejected rather than explored, since it cannot shorten the derivation.
func isProductive(g *Grammar, name string, depth int, open map[string]bool) bool {
	if depth <= 0 {
		return false
	}
	if open[name] {
		return false
	}
	rule, ok := g.Rules[name]
	if !ok {
		return false
	}

	open[name] = true
	defer delete(open, name)

	for _, prod := range rule.Productions {
		ok := true
		for _, sym := range prod.RHS {
			if sym.IsNonTerminal() && !isProductive(g, sym.Name, depth-1, open) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
