// Command peacock-dump renders one or more persisted walk files (raw
// little-endian uint32 arrays, conventionally named peacock-raw-*) back
// into the bytes they represent, using a compiled grammar plugin's
// SerializeSequence entry point.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/pluginhost"
)

const maxSerialized = 1 << 20

var dumpFlags = struct {
	plugin *string
	debug  *bool
}{}

var dumpCmd = &cobra.Command{
	Use:           "peacock-dump peacock-raw-1 peacock-raw-2 ...",
	Short:         "Render persisted walks back to bytes via a compiled plugin",
	Example:       `  peacock-dump --plugin ./grammar.so peacock-raw-0001`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runDump,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	dumpFlags.plugin = dumpCmd.Flags().String("plugin", "", "path to a grammar compiled with -buildmode=plugin (required)")
	dumpFlags.debug = dumpCmd.Flags().Bool("debug", false, "also print the raw alternative-index sequence")
	dumpCmd.MarkFlagRequired("plugin")
}

func main() {
	if err := dumpCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	artifact, err := pluginhost.Load(*dumpFlags.plugin)
	if err != nil {
		return err
	}

	for _, path := range args {
		seq, err := readWalk(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if *dumpFlags.debug {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, repr.String(seq))
		}

		out := make([]byte, maxSerialized)
		n := artifact.SerializeSequence(seq, out)
		os.Stdout.Write(out[:n])
	}

	return nil
}

func readWalk(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("file length %d is not a multiple of 4", len(raw))
	}
	seq := make([]uint32, len(raw)/4)
	for i := range seq {
		seq[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return seq, nil
}
