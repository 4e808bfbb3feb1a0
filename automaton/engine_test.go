package automaton

import (
	"testing"

	"github.com/z2-2z/peacock/grammar"
)

func buildAutomaton(t *testing.T, rules []grammar.RawRule, entry string) *Automaton {
	t.Helper()
	g, err := grammar.New(rules, entry)
	if err != nil {
		t.Fatalf("grammar.New: %v", err)
	}
	n, err := grammar.Normalize(g)
	if err != nil {
		t.Fatalf("grammar.Normalize: %v", err)
	}
	a, err := Build(n)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

// abGrammar is <start> ::= 'a' <start> | 'b' — every generated string is
// a run of a's followed by one b.
func abGrammar() []grammar.RawRule {
	return []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{
			{grammar.NewTerminal([]byte("a")), grammar.NewNonTerminal("start")},
			{grammar.NewTerminal([]byte("b"))},
		}},
	}
}

func TestMutateSequenceReplaysExistingPrefix(t *testing.T) {
	a := buildAutomaton(t, abGrammar(), "start")
	e := NewEngine(a, 42)

	walk := NewWalk(8)
	walk.Indices[0] = 0 // force 'a' <start>
	walk.Indices[1] = 1 // force 'b'
	walk.Length = 2

	truncated := e.MutateSequence(walk)
	if truncated {
		t.Fatal("did not expect truncation with ample capacity")
	}
	if walk.Length != 2 {
		t.Fatalf("replay should not have extended the walk, got length %d", walk.Length)
	}

	out := make([]byte, 16)
	n := e.SerializeSequence(walk, out)
	if string(out[:n]) != "ab" {
		t.Fatalf("got %q, want %q", out[:n], "ab")
	}
}

func TestMutateSequenceReportsTruncation(t *testing.T) {
	// start ::= mid, mid ::= 'x' — each non-terminal has exactly one
	// alternative, so the walk this produces is deterministic regardless
	// of the RNG. A capacity of 1 has room for start's own entry but not
	// mid's, so generation must report truncation.
	rules := []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{{grammar.NewNonTerminal("mid")}}},
		{Name: "mid", Productions: [][]grammar.Symbol{{grammar.NewTerminal([]byte("x"))}}},
	}
	a := buildAutomaton(t, rules, "start")
	e := NewEngine(a, 1)

	walk := NewWalk(1)
	truncated := e.MutateSequence(walk)
	if !truncated {
		t.Fatal("expected truncation: capacity 1 cannot hold both non-terminals' entries")
	}
	if walk.Length != 1 {
		t.Fatalf("got walk length %d, want 1 (only start's own entry fit)", walk.Length)
	}
}

func TestSerializeSequenceNoPartialTerminal(t *testing.T) {
	rules := []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{
			{grammar.NewTerminal([]byte("hello"))},
		}},
	}
	a := buildAutomaton(t, rules, "start")
	e := NewEngine(a, 7)

	walk := NewWalk(1)
	walk.Indices[0] = 0
	walk.Length = 1

	out := make([]byte, 3) // smaller than "hello"
	n := e.SerializeSequence(walk, out)
	if n != 0 {
		t.Fatalf("got %d bytes written, want 0 (no partial terminal)", n)
	}
}

func TestUnparseSequenceRoundTrip(t *testing.T) {
	a := buildAutomaton(t, abGrammar(), "start")
	e := NewEngine(a, 3)

	input := []byte("aaab")
	walk, consumed, ok := e.UnparseSequence(input, 16)
	if !ok {
		t.Fatal("expected the input to unparse successfully")
	}
	if consumed != len(input) {
		t.Fatalf("consumed %d bytes, want %d", consumed, len(input))
	}

	out := make([]byte, 16)
	n := e.SerializeSequence(walk, out)
	if string(out[:n]) != "aaab" {
		t.Fatalf("round trip got %q, want %q", out[:n], "aaab")
	}
}

func TestUnparseSequenceRejectsForeignInput(t *testing.T) {
	a := buildAutomaton(t, abGrammar(), "start")
	e := NewEngine(a, 3)

	_, _, ok := e.UnparseSequence([]byte("xyz"), 16)
	if ok {
		t.Fatal("expected input outside the language to fail to unparse")
	}
}

func TestUnparseSequenceCommitsFirstMatchingAlternative(t *testing.T) {
	// <start> ::= <a> | <b>, both of which can match the prefix "x", but
	// only <b> matches "xy" in full. Commit-first unparse commits to <a>
	// (which matches "x") without trying <b>, so on "xy" it succeeds
	// having consumed only the first byte.
	rules := []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{
			{grammar.NewNonTerminal("a")},
			{grammar.NewNonTerminal("b")},
		}},
		{Name: "a", Productions: [][]grammar.Symbol{{grammar.NewTerminal([]byte("x"))}}},
		{Name: "b", Productions: [][]grammar.Symbol{{grammar.NewTerminal([]byte("xy"))}}},
	}
	a := buildAutomaton(t, rules, "start")
	e := NewEngine(a, 9)

	_, consumed, ok := e.UnparseSequence([]byte("xy"), 16)
	if !ok {
		t.Fatal("expected the top-level match to succeed (it consumes only 'x')")
	}
	if consumed != 1 {
		t.Fatalf("commit-first unparse should stop after matching <a>, consumed %d bytes", consumed)
	}
}
