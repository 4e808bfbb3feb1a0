package grammar

import (
	"errors"
	"testing"

	"github.com/z2-2z/peacock/perr"
)

func TestLoadPeacockBasic(t *testing.T) {
	src := []byte(`{
		// entry: <start>
		"<start>": [
			["'hello '", "<name>"]
		],
		"<name>": [
			["'world'"],
			["''"]
		]
	}`)

	g, err := LoadPeacock("test.json", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Entry != "start" {
		t.Fatalf("got entry %q, want %q", g.Entry, "start")
	}
	if len(g.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(g.Rules))
	}

	name := g.Rules["name"]
	if len(name.Productions) != 2 {
		t.Fatalf("got %d productions for <name>, want 2", len(name.Productions))
	}
	if !name.Productions[1].RHS[0].IsEmpty() {
		t.Fatalf("second production of <name> should be ε, got %+v", name.Productions[1].RHS)
	}
}

func TestLoadPeacockEntryOverride(t *testing.T) {
	src := []byte(`{
		"$entry": "<b>",
		"<a>": [["'a'"]],
		"<b>": [["'b'"]]
	}`)

	g, err := LoadPeacock("test.json", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Entry != "b" {
		t.Fatalf("got entry %q, want %q", g.Entry, "b")
	}
}

func TestLoadPeacockBlockComment(t *testing.T) {
	src := []byte(`{
		/* a leading block comment
		   spanning lines */
		"<start>": [["'x'" /* inline */]]
	}`)

	g, err := LoadPeacock("test.json", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Entry != "start" {
		t.Fatalf("got entry %q, want %q", g.Entry, "start")
	}
}

func TestLoadPeacockRejectsBadSymbol(t *testing.T) {
	src := []byte(`{"<start>": [["not-a-symbol"]]}`)
	_, err := LoadPeacock("test.json", src)
	if err == nil {
		t.Fatal("expected a shape error for a malformed symbol token")
	}
}

func TestLoadPeacockRejectsInvalidJSON(t *testing.T) {
	src := []byte(`{"<start>": [`)
	_, err := LoadPeacock("test.json", src)
	if err == nil {
		t.Fatal("expected a syntax error for truncated JSON")
	}
}

func TestLoadPeacockSyntaxErrorCarriesRow(t *testing.T) {
	src := []byte("{\n\t\"<start>\": [\n\t\tbroken\n\t]\n}")
	_, err := LoadPeacock("test.json", src)
	if err == nil {
		t.Fatal("expected a syntax error")
	}

	var syn *perr.GrammarSyntax
	if !errors.As(err, &syn) {
		t.Fatalf("expected a *perr.GrammarSyntax, got %T", err)
	}
	if syn.Row != 3 {
		t.Errorf("got row %d, want 3 (the line with the broken token)", syn.Row)
	}
}
