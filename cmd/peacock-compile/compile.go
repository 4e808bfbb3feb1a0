package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/automaton"
	"github.com/z2-2z/peacock/codegen"
	"github.com/z2-2z/peacock/grammar"
	"github.com/z2-2z/peacock/perr"
)

var compileFlags = struct {
	output         *string
	dialect        *string
	packageName    *string
	multithreading *bool
	seed           *uint64
	disableRand    *bool
	disableSeed    *bool
	debug          *bool
	verbose        *bool
	emitAutomaton  *string
}{}

func init() {
	rootCmd.Args = cobra.ExactArgs(1)
	rootCmd.RunE = runCompile
	rootCmd.Example = `  peacock-compile grammar.json -o generated.go -p fuzzgen`

	compileFlags.output = rootCmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.dialect = rootCmd.Flags().String("dialect", "", `grammar dialect: "peacock" or "gramatron" (default: auto-detect)`)
	compileFlags.packageName = rootCmd.Flags().StringP("package", "p", "peacock", "package name of the emitted source")
	compileFlags.multithreading = rootCmd.Flags().Bool("multithreading", false, "guard the emitted RNG with a mutex")
	compileFlags.seed = rootCmd.Flags().Uint64("seed", 0, "compile in a fixed RNG seed (0 uses the default constant)")
	compileFlags.disableRand = rootCmd.Flags().Bool("disable-rand", false, "omit the built-in RNG; caller supplies peacockNextRand")
	compileFlags.disableSeed = rootCmd.Flags().Bool("disable-seed", false, "omit SeedGenerator from the emitted source")
	compileFlags.debug = rootCmd.Flags().Bool("debug", false, "emit a trace of visited non-terminals")
	compileFlags.verbose = rootCmd.Flags().BoolP("verbose", "v", false, "log normalization warnings")
	compileFlags.emitAutomaton = rootCmd.Flags().String("emit-automaton", "", "also write the compiled automaton description as CBOR to this path")
}

func runCompile(cmd *cobra.Command, args []string) error {
	if *compileFlags.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}

	g, err := grammar.Load(path, src, *compileFlags.dialect)
	if err != nil {
		return err
	}

	n, err := grammar.Normalize(g)
	if err != nil {
		return err
	}
	for _, w := range n.Warnings {
		logWarning(w)
	}

	a, err := automaton.Build(n)
	if err != nil {
		return err
	}

	if *compileFlags.emitAutomaton != "" {
		if err := writeAutomatonCBOR(*compileFlags.emitAutomaton, a); err != nil {
			return err
		}
	}

	opts := codegen.Options{
		PackageName:    *compileFlags.packageName,
		Multithreading: *compileFlags.multithreading,
		DisableRand:    *compileFlags.disableRand,
		DisableSeed:    *compileFlags.disableSeed,
		Debug:          *compileFlags.debug,
	}
	if *compileFlags.seed != 0 {
		seed := *compileFlags.seed
		opts.Seed = &seed
	}

	out, err := codegen.Emit(a, opts)
	if err != nil {
		return err
	}

	return writeOutput(*compileFlags.output, out)
}

func writeOutput(path string, data []byte) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return &perr.EmitIO{Path: path, Cause: err}
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return &perr.EmitIO{Path: path, Cause: err}
	}
	return nil
}

// writeAutomatonCBOR dumps the flat automaton description to CBOR, for
// tooling (or peacock-dump in a future revision) that wants to inspect a
// compiled grammar's shape without re-parsing the source grammar file.
func writeAutomatonCBOR(path string, a *automaton.Automaton) error {
	data, err := cbor.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding automaton description: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &perr.EmitIO{Path: path, Cause: err}
	}
	return nil
}

func logWarning(err error) {
	log.Warn().Err(err).Msg("grammar normalization warning")
}
