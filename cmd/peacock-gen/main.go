// Command peacock-gen is a thin alias of peacock-compile: it reads one
// grammar file and writes the generated Go source next to it, inferring
// the output name from the grammar's base name, for the common case
// where none of peacock-compile's other flags are needed.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/automaton"
	"github.com/z2-2z/peacock/codegen"
	"github.com/z2-2z/peacock/grammar"
)

var genFlags = struct {
	pkgName *string
}{}

var genCmd = &cobra.Command{
	Use:           "peacock-gen grammar.json",
	Short:         "Compile a grammar, writing <name>_peacock.go next to it",
	Example:       `  peacock-gen grammar.json`,
	Args:          cobra.ExactArgs(1),
	RunE:          runGen,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	genFlags.pkgName = genCmd.Flags().StringP("package", "p", "main", "package name")
}

func main() {
	if err := genCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGen(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}

	g, err := grammar.Load(path, src, "")
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

	out, err := codegen.Emit(a, codegen.Options{PackageName: *genFlags.pkgName})
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(filepath.Dir(path), base+"_peacock.go")

	return os.WriteFile(outPath, out, 0644)
}
