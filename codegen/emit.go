// Package codegen renders a compiled automaton.Automaton to a single,
// self-contained Go source file: spec.md §4.4's Code Emitter. The
// emitted file imports nothing from this module (not even from the
// automaton package) — it is meant to be dropped into a fuzzing harness
// or compiled standalone, the way protoc-gen-go or stringer emit
// artifacts that only depend on the standard library.
package codegen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/z2-2z/peacock/automaton"
)

//go:embed templates/artifact.go.tmpl
var artifactTemplateSource string

var artifactTemplate = template.Must(template.New("artifact").Parse(artifactTemplateSource))

// Options controls the compile-time knobs spec.md's Code Emitter section
// describes.
type Options struct {
	// PackageName is the emitted file's package clause. Defaults to
	// "peacock" if empty.
	PackageName string

	// Multithreading guards the package-level RNG state with a mutex,
	// at the cost of contention under concurrent generation.
	Multithreading bool

	// Seed, if non-nil, is compiled in as the RNG's initial state
	// instead of the default constant. SeedGenerator can still reseed
	// at runtime unless DisableSeed is set.
	Seed *uint64

	// DisableRand omits the built-in RNG and SeedGenerator entirely;
	// the emitted file will not compile as-is and is meant for callers
	// who hand-splice in their own peacockNextRand.
	DisableRand bool

	// DisableSeed omits SeedGenerator, leaving the compiled-in (or
	// default) seed as the only way to control determinism.
	DisableSeed bool

	// Debug appends a package-level trace of visited non-terminals,
	// recorded during MutateSequence, for interactive inspection.
	Debug bool
}

type templateData struct {
	PackageName    string
	Multithreading bool
	DisableRand    bool
	DisableSeed    bool
	Debug          bool
	SeedLiteral    string
	EntryGoName    string
	NonTerminals   []ntData
}

type ntData struct {
	GoName          string
	NumAlternatives int
	Alternatives    []altData
}

type altData struct {
	Steps []stepData
}

func (a altData) NonTerminalSteps() []stepData {
	var out []stepData
	for _, s := range a.Steps {
		if s.Kind == "nonterminal" {
			out = append(out, s)
		}
	}
	return out
}

type stepData struct {
	Kind    string // "terminal" or "nonterminal"
	GoName  string // target non-terminal's Go identifier fragment, for nonterminal steps
	GoBytes string // Go byte-slice literal, for terminal steps
	ByteLen int
}

// Emit renders a to a formatted, self-contained Go source file according
// to opts.
func Emit(a *automaton.Automaton, opts Options) ([]byte, error) {
	data := buildTemplateData(a, opts)

	var buf bytes.Buffer
	if err := artifactTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering emitted source: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting emitted source: %w", err)
	}

	return formatted, nil
}

func buildTemplateData(a *automaton.Automaton, opts Options) templateData {
	pkg := opts.PackageName
	if pkg == "" {
		pkg = "peacock"
	}

	seedLiteral := "0x9e3779b97f4a7c15"
	if opts.Seed != nil {
		seedLiteral = fmt.Sprintf("0x%x", *opts.Seed)
	}

	names := goNames(a)

	data := templateData{
		PackageName:    pkg,
		Multithreading: opts.Multithreading,
		DisableRand:    opts.DisableRand,
		DisableSeed:    opts.DisableSeed,
		Debug:          opts.Debug,
		SeedLiteral:    seedLiteral,
		EntryGoName:    names[a.EntryID],
		NonTerminals:   make([]ntData, len(a.NonTerminals)),
	}

	for id, info := range a.NonTerminals {
		nt := ntData{
			GoName:          names[id],
			NumAlternatives: len(info.Alternatives),
			Alternatives:    make([]altData, len(info.Alternatives)),
		}
		for i, alt := range info.Alternatives {
			steps := make([]stepData, len(alt))
			for j, step := range alt {
				if step.Kind == automaton.StepNonTerminal {
					steps[j] = stepData{Kind: "nonterminal", GoName: names[step.Target]}
				} else {
					steps[j] = stepData{Kind: "terminal", GoBytes: goByteLiteral(step.Bytes), ByteLen: len(step.Bytes)}
				}
			}
			nt.Alternatives[i] = altData{Steps: steps}
		}
		data.NonTerminals[id] = nt
	}

	return data
}

// goNames derives a unique, valid Go identifier fragment for every
// non-terminal, preferring its source name sanitized to [A-Za-z0-9_] and
// falling back to a numeric suffix on collision.
func goNames(a *automaton.Automaton) []string {
	names := make([]string, len(a.NonTerminals))
	used := make(map[string]bool, len(a.NonTerminals))

	for id, info := range a.NonTerminals {
		base := sanitizeIdent(info.Name)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[id] = name
	}

	return names
}

func sanitizeIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		return "Sym"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func goByteLiteral(b []byte) string {
	var buf strings.Builder
	buf.WriteString("[]byte{")
	for i, c := range b {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "0x%02x", c)
	}
	buf.WriteString("}")
	return buf.String()
}
