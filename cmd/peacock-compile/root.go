package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "peacock-compile",
	Short: "Compile a grammar into a self-contained Go fuzzing engine",
	Long: `peacock-compile reads a Peacock or Gramatron grammar and emits a
single, dependency-free Go source file implementing a generate/serialize/
unparse triad for every non-terminal, plus the public MutateSequence,
SerializeSequence, and UnparseSequence entry points.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
