package grammar

import "testing"

func TestNewRejectsEmptyGrammar(t *testing.T) {
	_, err := New(nil, "")
	if err == nil {
		t.Fatal("expected an error for a grammar with no rules")
	}
}

func TestNewRejectsMissingEntry(t *testing.T) {
	rules := []RawRule{
		{Name: "A", Productions: [][]Symbol{{NewTerminal([]byte("x"))}}},
	}
	_, err := New(rules, "B")
	if err == nil {
		t.Fatal("expected an error when the entry non-terminal is undefined")
	}
}

func TestNewRejectsZeroProductionRule(t *testing.T) {
	rules := []RawRule{
		{Name: "A", Productions: nil},
	}
	_, err := New(rules, "A")
	if err == nil {
		t.Fatal("expected an error for a rule with zero productions")
	}
}

func TestNewMergesRepeatedRuleNames(t *testing.T) {
	rules := []RawRule{
		{Name: "A", Productions: [][]Symbol{{NewTerminal([]byte("x"))}}},
		{Name: "A", Productions: [][]Symbol{{NewTerminal([]byte("y"))}}},
	}
	g, err := New(rules, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := g.Rules["A"]
	if len(rule.Productions) != 2 {
		t.Fatalf("got %d productions, want 2", len(rule.Productions))
	}
	if rule.Productions[0].Index != 0 || rule.Productions[1].Index != 1 {
		t.Fatalf("production indices not assigned in source order: %v, %v", rule.Productions[0].Index, rule.Productions[1].Index)
	}
}

func TestSymbolClassification(t *testing.T) {
	term := NewTerminal([]byte("abc"))
	if !term.IsTerminal() || term.IsNonTerminal() {
		t.Fatalf("terminal misclassified: %+v", term)
	}

	nt := NewNonTerminal("X")
	if !nt.IsNonTerminal() || nt.IsTerminal() {
		t.Fatalf("non-terminal misclassified: %+v", nt)
	}

	empty := NewTerminal(nil)
	if !empty.IsEmpty() {
		t.Fatal("terminal with no bytes should be ε")
	}
	if term.IsEmpty() {
		t.Fatal("non-empty terminal reported as ε")
	}
}
