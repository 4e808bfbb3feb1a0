package grammar

import (
	"fmt"

	"github.com/z2-2z/peacock/perr"
)

// RawRule is one non-terminal definition as produced by a Loader, before
// any validation beyond "is this syntactically a rule at all." Productions
// preserve source order, which becomes the rule's alternative-index space.
type RawRule struct {
	Name        string
	Productions [][]Symbol
}

// Grammar is a mapping from non-terminal name to Rule, plus a
// distinguished entry non-terminal. See spec.md §3 for its invariants;
// New only establishes the ones that don't require a reachability pass
// (that happens in Normalize).
type Grammar struct {
	Rules map[string]*Rule
	Entry string
}

// New assembles raw rules (in the order a Loader produced them) into a
// Grammar. It fails with perr.GrammarEmpty if there are no rules at all,
// and with perr.GrammarShape if any rule has zero productions or an empty
// production (a production must contain at least one symbol; an
// intentional ε production is written as a single empty terminal).
func New(rules []RawRule, entry string) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, &perr.GrammarEmpty{}
	}

	g := &Grammar{
		Rules: make(map[string]*Rule, len(rules)),
		Entry: entry,
	}

	for _, raw := range rules {
		if len(raw.Productions) == 0 {
			return nil, &perr.GrammarShape{Detail: fmt.Sprintf("non-terminal <%s> has zero productions", raw.Name)}
		}

		rule, ok := g.Rules[raw.Name]
		if !ok {
			rule = &Rule{Name: raw.Name}
			g.Rules[raw.Name] = rule
		}

		for _, rhs := range raw.Productions {
			if len(rhs) == 0 {
				return nil, &perr.GrammarShape{Detail: fmt.Sprintf("a production of <%s> is empty", raw.Name)}
			}
			rule.Productions = append(rule.Productions, Production{
				Index: len(rule.Productions),
				RHS:   rhs,
			})
		}
	}

	if entry == "" {
		return nil, &perr.GrammarShape{Detail: "no entry non-terminal was specified"}
	}
	if _, ok := g.Rules[entry]; !ok {
		return nil, &perr.GrammarShape{Detail: fmt.Sprintf("entry non-terminal <%s> is not defined", entry)}
	}

	return g, nil
}
