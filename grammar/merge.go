package grammar

import (
	"encoding/json"
	"errors"

	"github.com/z2-2z/peacock/perr"
)

// Merger accumulates Peacock-dialect grammar fragments from multiple
// files into one combined document, the way peacock-merge lets a user
// split a large grammar across files and compile them as one. It merges
// at the raw-JSON-object level, before any symbol parsing, so that a
// non-terminal defined twice across files is caught as a conflict rather
// than silently overwritten.
type Merger struct {
	order  []string
	values map[string]json.RawMessage
	entry  string
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{values: make(map[string]json.RawMessage)}
}

// Merge folds the document in src (from the file at path, for error
// messages) into m. It fails with *perr.GrammarSyntax on malformed JSON,
// *perr.GrammarShape if the document is not a JSON object, and
// *perr.GrammarMergeConflict if src redefines a non-terminal m already
// has.
func (m *Merger) Merge(path string, src []byte) error {
	order, values, entry, err := decodeOrderedObject(stripComments(src))
	if err != nil {
		var se *shapeErr
		if errors.As(err, &se) {
			return &perr.GrammarShape{Path: path, Detail: se.msg}
		}
		return &perr.GrammarSyntax{Path: path, Cause: err}
	}

	for _, key := range order {
		if _, exists := m.values[key]; exists {
			name, ok := peacockNonTerminalName(key)
			if !ok {
				name = key
			}
			return &perr.GrammarMergeConflict{NonTerminal: name}
		}
		m.order = append(m.order, key)
		m.values[key] = values[key]
	}

	if entry != "" {
		m.entry = entry
	}

	return nil
}

// Grammar parses the accumulated fragments into a single Grammar, the
// same way LoadPeacock would parse one file.
func (m *Merger) Grammar() (*Grammar, error) {
	var rules []RawRule
	for _, key := range m.order {
		name, ok := peacockNonTerminalName(key)
		if !ok {
			return nil, &perr.GrammarShape{Detail: "object key \"" + key + "\" is not a <non-terminal> name"}
		}

		var productionsJSON [][]string
		if err := json.Unmarshal(m.values[key], &productionsJSON); err != nil {
			return nil, &perr.GrammarSyntax{Cause: err}
		}

		rule := RawRule{Name: name}
		for _, rhs := range productionsJSON {
			symbols := make([]Symbol, 0, len(rhs))
			for _, tok := range rhs {
				sym, err := parsePeacockSymbol(tok)
				if err != nil {
					return nil, &perr.GrammarShape{Detail: err.Error()}
				}
				symbols = append(symbols, sym)
			}
			rule.Productions = append(rule.Productions, symbols)
		}
		rules = append(rules, rule)
	}

	entry := m.entry
	if entry == "" && len(rules) > 0 {
		entry = rules[0].Name
	}

	return New(rules, entry)
}

// MarshalJSON renders the merged fragments back out as a single
// Peacock-dialect document, in the accumulated key order and with the
// "$entry" override (if any) first, so that loading the result picks the
// same entry non-terminal Grammar does. This backs peacock-merge's
// default mode, where the merged grammar is written out rather than
// compiled directly.
func (m *Merger) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	if m.entry != "" {
		entry, _ := json.Marshal("<" + m.entry + ">")
		buf = append(append(buf, `"`+entryField+`":`...), entry...)
	}
	for _, key := range m.order {
		if len(buf) > 1 {
			buf = append(buf, ',')
		}
		name, _ := json.Marshal(key)
		buf = append(append(append(buf, name...), ':'), m.values[key]...)
	}
	return append(buf, '}'), nil
}
