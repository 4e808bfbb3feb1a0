// Package perr contains the typed build-time errors of spec.md §7.
//
// It is named perr, not error, so that call sites importing it do not
// shadow the built-in error interface name; call sites import it without
// an alias.
package perr

import "fmt"

// GrammarSyntax means the grammar file was not valid JSON (after comment
// stripping, for the Peacock dialect). Row, if known, lets Error render
// the offending source line alongside the message.
type GrammarSyntax struct {
	Path  string
	Row   int
	Cause error
}

func (e *GrammarSyntax) Error() string {
	msg := fmt.Sprintf("invalid grammar syntax: %v", e.Cause)
	if e.Path != "" {
		if e.Row > 0 {
			msg = fmt.Sprintf("%s:%d: %s", e.Path, e.Row, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Path, msg)
		}
	}
	if line := SourceLine(e.Path, e.Row); line != "" {
		msg += "\n    " + line
	}
	return msg
}

func (e *GrammarSyntax) Unwrap() error {
	return e.Cause
}

// GrammarShape means the document was valid JSON but not shaped like a
// grammar: a symbol string that is neither a quoted terminal nor an
// angle-bracketed non-terminal, an empty right-hand side, or a
// non-terminal with zero productions.
type GrammarShape struct {
	Path   string
	Detail string
}

func (e *GrammarShape) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: malformed grammar: %s", e.Path, e.Detail)
	}
	return fmt.Sprintf("malformed grammar: %s", e.Detail)
}

// GrammarReference means a right-hand-side non-terminal has no rule
// defining it.
type GrammarReference struct {
	NonTerminal string
}

func (e *GrammarReference) Error() string {
	return fmt.Sprintf("non-terminal <%s> is referenced but never defined", e.NonTerminal)
}

// GrammarEmpty means the grammar contains zero rules.
type GrammarEmpty struct{}

func (e *GrammarEmpty) Error() string {
	return "grammar has no rules"
}

// GrammarUnproductive is a non-fatal warning: the entry non-terminal has
// no derivation reachable within the bounded-depth expansion the
// normalizer tries. A capacity-limited walk still terminates, so this
// never blocks compilation; callers surface it as advice.
type GrammarUnproductive struct {
	NonTerminal string
}

func (e *GrammarUnproductive) Error() string {
	return fmt.Sprintf("non-terminal <%s> has no finite derivation within the bounded-depth check", e.NonTerminal)
}

// GrammarMergeConflict means two grammar files being merged by
// peacock-merge both define the same non-terminal.
type GrammarMergeConflict struct {
	NonTerminal string
}

func (e *GrammarMergeConflict) Error() string {
	return fmt.Sprintf("two grammar files both define <%s>", e.NonTerminal)
}

// EmitIO means the output file for the generated source could not be
// written.
type EmitIO struct {
	Path  string
	Cause error
}

func (e *EmitIO) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Cause)
}

func (e *EmitIO) Unwrap() error {
	return e.Cause
}

// Warning is anything returned out-of-band alongside a successful
// compilation, mirroring the way the teacher's grammar.Compile returns a
// side-channel *spec.Report next to its error.
type Warning = error
