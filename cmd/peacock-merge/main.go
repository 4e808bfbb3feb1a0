// Command peacock-merge combines several Peacock-dialect grammar
// fragments into one document, failing if two fragments define the same
// non-terminal. With -compile it goes further and emits the generated
// Go source directly, the same as feeding the merged document to
// peacock-compile.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/automaton"
	"github.com/z2-2z/peacock/codegen"
	"github.com/z2-2z/peacock/grammar"
)

var mergeFlags = struct {
	output  *string
	compile *bool
	pkgName *string
}{}

var mergeCmd = &cobra.Command{
	Use:           "peacock-merge file1.json file2.json ...",
	Short:         "Merge several grammar fragments into one document",
	Example:       `  peacock-merge tokens.json rules.json -o grammar.json`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runMerge,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	mergeFlags.output = mergeCmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	mergeFlags.compile = mergeCmd.Flags().Bool("compile", false, "compile the merged grammar to Go instead of writing JSON")
	mergeFlags.pkgName = mergeCmd.Flags().StringP("package", "p", "peacock", "package name, with -compile")
}

func main() {
	if err := mergeCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	m := grammar.NewMerger()

	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := m.Merge(path, src); err != nil {
			return err
		}
	}

	if *mergeFlags.compile {
		g, err := m.Grammar()
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
		out, err := codegen.Emit(a, codegen.Options{PackageName: *mergeFlags.pkgName})
		if err != nil {
			return err
		}
		return writeBytes(*mergeFlags.output, out)
	}

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeBytes(*mergeFlags.output, out)
}

func writeBytes(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
