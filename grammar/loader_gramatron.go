package grammar

import (
	"encoding/json"
	"strings"

	"github.com/z2-2z/peacock/perr"
)

// gramatronDoc mirrors the explicit Start/NonTerminals/Terminals/Rules
// shape of the Gramatron dialect. Unlike Peacock JSON, this dialect
// forbids comments, so the source goes straight to encoding/json.
type gramatronDoc struct {
	Start        string                `json:"Start"`
	NonTerminals []string              `json:"NonTerminals"`
	Terminals    []string              `json:"Terminals"`
	Rules        map[string][][]string `json:"Rules"`
}

// LoadGramatron parses a Gramatron-dialect grammar document. Each entry
// of Rules maps a non-terminal name to its ordered productions; each
// production is an ordered list of tokens, where a token present in
// NonTerminals is a non-terminal reference and anything else is treated
// as a literal terminal.
func LoadGramatron(path string, src []byte) (*Grammar, error) {
	var doc gramatronDoc
	if err := json.Unmarshal(src, &doc); err != nil {
		return nil, &perr.GrammarSyntax{Path: path, Row: perr.LineAt(src, syntaxOffset(err)), Cause: err}
	}

	if doc.Start == "" {
		return nil, &perr.GrammarShape{Path: path, Detail: "Gramatron document has no Start field"}
	}

	nonTerminals := make(map[string]bool, len(doc.NonTerminals))
	for _, nt := range doc.NonTerminals {
		nonTerminals[nt] = true
	}

	// Rules order within the map is not stable; fall back to iterating
	// NonTerminals, which the dialect declares in a fixed order, and only
	// consult map keys for names it didn't enumerate.
	seen := make(map[string]bool, len(doc.Rules))
	var names []string
	for _, nt := range doc.NonTerminals {
		if _, ok := doc.Rules[nt]; ok {
			names = append(names, nt)
			seen[nt] = true
		}
	}
	for name := range doc.Rules {
		if !seen[name] {
			names = append(names, name)
		}
	}

	var rules []RawRule
	for _, name := range names {
		productions := doc.Rules[name]
		rule := RawRule{Name: name}
		for _, rhs := range productions {
			symbols := make([]Symbol, 0, len(rhs))
			for _, tok := range rhs {
				if nonTerminals[tok] {
					symbols = append(symbols, NewNonTerminal(tok))
				} else {
					symbols = append(symbols, NewTerminal([]byte(tok)))
				}
			}
			rule.Productions = append(rule.Productions, symbols)
		}
		rules = append(rules, rule)
	}

	return New(rules, doc.Start)
}

// DetectDialect reports whether src looks like a Gramatron document
// (one containing a "Start" key) as opposed to Peacock JSON. It is a
// cheap substring heuristic, not a validating parse, and does not check
// that the key sits at the top level; both loaders still do full
// validation of whatever they are handed.
func DetectDialect(src []byte) string {
	trimmed := strings.TrimSpace(string(src))
	if strings.Contains(trimmed, "\"Start\"") {
		return "gramatron"
	}
	return "peacock"
}
