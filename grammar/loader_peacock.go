package grammar

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/z2-2z/peacock/perr"
)

// entryField is the optional sibling field a Peacock-dialect document can
// carry to override "first key wins" entry selection.
const entryField = "$entry"

// LoadPeacock parses a Peacock-dialect grammar document: an object whose
// keys are non-terminal names wrapped in "<...>" and whose values are
// arrays of productions, each production an array of symbol strings.
// JavaScript-style comments are stripped first. Key insertion order is
// preserved; the first key encountered is the entry non-terminal unless a
// sibling "$entry" string field overrides it.
func LoadPeacock(path string, src []byte) (*Grammar, error) {
	stripped := stripComments(src)

	order, rawValues, entry, err := decodeOrderedObject(stripped)
	if err != nil {
		var se *shapeErr
		if errors.As(err, &se) {
			return nil, &perr.GrammarShape{Path: path, Detail: se.msg}
		}
		return nil, &perr.GrammarSyntax{Path: path, Row: perr.LineAt(stripped, syntaxOffset(err)), Cause: err}
	}

	var rules []RawRule
	for _, key := range order {
		if key == entryField {
			continue
		}

		name, ok := peacockNonTerminalName(key)
		if !ok {
			return nil, &perr.GrammarShape{Path: path, Detail: "object key \"" + key + "\" is not a <non-terminal> name"}
		}

		var productionsJSON [][]string
		if err := json.Unmarshal(rawValues[key], &productionsJSON); err != nil {
			return nil, &perr.GrammarSyntax{Path: path, Row: perr.LineAt(stripped, syntaxOffset(err)), Cause: err}
		}

		rule := RawRule{Name: name}
		for _, rhs := range productionsJSON {
			symbols := make([]Symbol, 0, len(rhs))
			for _, tok := range rhs {
				sym, err := parsePeacockSymbol(tok)
				if err != nil {
					return nil, &perr.GrammarShape{Path: path, Detail: err.Error()}
				}
				symbols = append(symbols, sym)
			}
			rule.Productions = append(rule.Productions, symbols)
		}
		rules = append(rules, rule)
	}

	if entry == "" && len(rules) > 0 {
		entry = rules[0].Name
	}

	return New(rules, entry)
}

// parsePeacockSymbol classifies a single symbol token: '...' is a
// terminal (the bytes between the quotes, '' is ε), <...> is a
// non-terminal reference. Anything else is a shape error.
func parsePeacockSymbol(tok string) (Symbol, error) {
	if len(tok) >= 2 && strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") {
		return NewTerminal([]byte(tok[1 : len(tok)-1])), nil
	}
	if name, ok := peacockNonTerminalName(tok); ok {
		return NewNonTerminal(name), nil
	}
	return Symbol{}, &shapeErr{"symbol \"" + tok + "\" is neither 'terminal' nor <non-terminal>"}
}

func peacockNonTerminalName(tok string) (string, bool) {
	if len(tok) >= 2 && strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return tok[1 : len(tok)-1], true
	}
	return "", false
}

type shapeErr struct{ msg string }

func (e *shapeErr) Error() string { return e.msg }

// syntaxOffset extracts the byte offset from a JSON decoding error, if it
// carries one, so the caller can turn it into a line number for
// perr.GrammarSyntax.Row. Not every error from encoding/json is a
// *json.SyntaxError (a type mismatch is a *json.UnmarshalTypeError, which
// also has an Offset), so both are checked.
func syntaxOffset(err error) int64 {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return syn.Offset
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return typ.Offset
	}
	return -1
}

// decodeOrderedObject walks a top-level JSON object with json.Decoder's
// token stream, rather than into a map, so that key insertion order
// survives (encoding/json's map decoding does not preserve it). It also
// extracts the "$entry" override if present.
func decodeOrderedObject(src []byte) (order []string, values map[string]json.RawMessage, entry string, err error) {
	dec := json.NewDecoder(strings.NewReader(string(src)))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, "", err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, nil, "", &shapeErr{"grammar document must be a JSON object"}
	}

	values = make(map[string]json.RawMessage)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, "", err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, "", &shapeErr{"object keys must be strings"}
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			// json.Decoder reports syntax-error offsets relative to the
			// value being decoded; re-scanning the whole document gives
			// an offset from the start of src, which perr.LineAt expects.
			var whole interface{}
			if verr := json.Unmarshal(src, &whole); verr != nil {
				return nil, nil, "", verr
			}
			return nil, nil, "", err
		}

		if key == entryField {
			var e string
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, nil, "", err
			}
			entry, _ = peacockNonTerminalName(e)
			if entry == "" {
				entry = e
			}
			continue
		}

		order = append(order, key)
		values[key] = raw
	}

	return order, values, entry, nil
}
