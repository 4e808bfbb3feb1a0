package codegen

import (
	"strings"
	"testing"

	"github.com/z2-2z/peacock/automaton"
	"github.com/z2-2z/peacock/grammar"
)

func buildAutomaton(t *testing.T, rules []grammar.RawRule, entry string) *automaton.Automaton {
	t.Helper()
	g, err := grammar.New(rules, entry)
	if err != nil {
		t.Fatalf("grammar.New: %v", err)
	}
	n, err := grammar.Normalize(g)
	if err != nil {
		t.Fatalf("grammar.Normalize: %v", err)
	}
	a, err := automaton.Build(n)
	if err != nil {
		t.Fatalf("automaton.Build: %v", err)
	}
	return a
}

func abAutomaton(t *testing.T) *automaton.Automaton {
	rules := []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{
			{grammar.NewTerminal([]byte("a")), grammar.NewNonTerminal("start")},
			{grammar.NewTerminal([]byte("b"))},
		}},
	}
	return buildAutomaton(t, rules, "start")
}

func TestEmitProducesExpectedEntryPoints(t *testing.T) {
	src, err := Emit(abAutomaton(t), Options{PackageName: "fuzzgen"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(src)

	if !strings.HasPrefix(text, "// Code generated by peacock-compile. DO NOT EDIT.\n\npackage fuzzgen\n") {
		t.Fatalf("unexpected header:\n%s", firstLines(text, 3))
	}

	for _, want := range []string{
		"func SeedGenerator(seed uint64) {",
		"func MutateSequence(buf []uint32, length int, capacity int) int {",
		"func SerializeSequence(seq []uint32, out []byte) int {",
		"func UnparseSequence(buf []uint32, input []byte) int {",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("emitted source missing %q", want)
		}
	}
}

func TestEmitIsImportFreeByDefault(t *testing.T) {
	src, err := Emit(abAutomaton(t), Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(string(src), "import") {
		t.Error("default emitted source should not need any imports")
	}
}

func TestEmitMultithreadingAddsSyncImport(t *testing.T) {
	src, err := Emit(abAutomaton(t), Options{Multithreading: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(string(src), `"sync"`) {
		t.Error("multithreading option should import sync")
	}
	if !strings.Contains(string(src), "sync.Mutex") {
		t.Error("multithreading option should guard RNG state with a mutex")
	}
}

func TestEmitDisableRandOmitsRNG(t *testing.T) {
	src, err := Emit(abAutomaton(t), Options{DisableRand: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(src)
	if strings.Contains(text, "func peacockNextRand() uint64 {") {
		t.Error("disable-rand should omit the built-in RNG's definition")
	}
	if strings.Contains(text, "func SeedGenerator") {
		t.Error("disable-rand implies no seedable built-in RNG to expose")
	}
	if !strings.Contains(text, "peacockNextRand()") {
		t.Error("call sites should still reference peacockNextRand, for a caller-supplied definition")
	}
}

func TestEmitDisableSeedOmitsSeedGenerator(t *testing.T) {
	src, err := Emit(abAutomaton(t), Options{DisableSeed: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(string(src), "func SeedGenerator") {
		t.Error("disable-seed should omit SeedGenerator")
	}
	if !strings.Contains(string(src), "peacockNextRand") {
		t.Error("disable-seed should still keep the built-in RNG itself")
	}
}

func TestEmitCompiledSeedLiteral(t *testing.T) {
	seed := uint64(0xdeadbeef)
	src, err := Emit(abAutomaton(t), Options{Seed: &seed})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(string(src), "0xdeadbeef") {
		t.Error("compiled-in seed literal not found in emitted source")
	}
}

func TestEmitOneFunctionTriadPerNonTerminal(t *testing.T) {
	rules := []grammar.RawRule{
		{Name: "start", Productions: [][]grammar.Symbol{{grammar.NewNonTerminal("mid")}}},
		{Name: "mid", Productions: [][]grammar.Symbol{{grammar.NewTerminal([]byte("x"))}}},
	}
	src, err := Emit(buildAutomaton(t, rules, "start"), Options{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(src)

	for _, prefix := range []string{"peacockGenerate", "peacockSerialize", "peacockUnparse"} {
		count := strings.Count(text, "func "+prefix)
		if count != 2 {
			t.Errorf("got %d %s* functions, want 2 (one per non-terminal)", count, prefix)
		}
	}
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
