// Command peacock-generate samples inputs directly from a grammar by
// interpreting its rules, with no compile step — grounded on the
// original project's GrammarInterpreter: it walks the grammar's
// automaton, picking a uniformly random alternative at each
// non-terminal, rather than replaying and extending a persisted walk
// the way MutateSequence does. It is a demo/debugging tool, not the
// performance path; that is what peacock-compile's emitted source is
// for.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/automaton"
	"github.com/z2-2z/peacock/grammar"
)

var generateFlags = struct {
	dialect  *string
	count    *int
	capacity *int
	seed     *uint64
	sep      *string
}{}

var generateCmd = &cobra.Command{
	Use:           "peacock-generate grammar.json",
	Short:         "Sample inputs by interpreting a grammar directly",
	Example:       `  peacock-generate grammar.json --count 10`,
	Args:          cobra.ExactArgs(1),
	RunE:          runGenerate,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	generateFlags.dialect = generateCmd.Flags().String("dialect", "", `grammar dialect: "peacock" or "gramatron" (default: auto-detect)`)
	generateFlags.count = generateCmd.Flags().IntP("count", "n", 1, "number of inputs to generate")
	generateFlags.capacity = generateCmd.Flags().Int("capacity", 4096, "maximum walk length per input")
	generateFlags.seed = generateCmd.Flags().Uint64("seed", 0, "RNG seed (0 uses the default constant)")
	generateFlags.sep = generateCmd.Flags().String("separator", "\n", "text written between consecutive inputs")
}

func main() {
	if err := generateCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}

	g, err := grammar.Load(path, src, *generateFlags.dialect)
	if err != nil {
		return err
	}

	n, err := grammar.Normalize(g)
	if err != nil {
		return err
	}

	a, err := automaton.Build(n)
	if err != nil {
		return err
	}

	engine := automaton.NewEngine(a, *generateFlags.seed)

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	out := make([]byte, 1<<20)
	for i := 0; i < *generateFlags.count; i++ {
		walk := automaton.NewWalk(*generateFlags.capacity)
		engine.MutateSequence(walk)

		written := engine.SerializeSequence(walk, out)
		w.Write(out[:written])

		if i < *generateFlags.count-1 {
			w.WriteString(*generateFlags.sep)
		}
	}

	return nil
}
