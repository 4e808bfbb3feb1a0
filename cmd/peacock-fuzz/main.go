// Command peacock-fuzz drives a forkserver-instrumented target with
// test cases generated from a compiled grammar plugin, saving the
// persisted walk (not just the generated bytes) for any run that
// crashes, so the exact derivation can be replayed or minimized later.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/z2-2z/peacock/forkserver"
	"github.com/z2-2z/peacock/pluginhost"
)

var fuzzFlags = struct {
	plugin     *string
	inputFile  *string
	corpusDir  *string
	capacity   *int
	seed       *uint64
	iterations *int
	crashExit  *int
}{}

var fuzzCmd = &cobra.Command{
	Use:           "peacock-fuzz --plugin grammar.so --input-file FILE -- ./harness [target args]",
	Short:         "Fuzz a forkserver-instrumented target with a compiled grammar",
	Example:       `  peacock-fuzz --plugin grammar.so --input-file /tmp/input.bin -- ./harness /tmp/input.bin`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runFuzz,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	fuzzFlags.plugin = fuzzCmd.Flags().String("plugin", "", "path to a grammar compiled with -buildmode=plugin (required)")
	fuzzFlags.inputFile = fuzzCmd.Flags().String("input-file", "", "path the target reads its test case from (required)")
	fuzzFlags.corpusDir = fuzzCmd.Flags().String("corpus-dir", "crashes", "directory to save crashing walks in")
	fuzzFlags.capacity = fuzzCmd.Flags().Int("capacity", 4096, "maximum walk length")
	fuzzFlags.seed = fuzzCmd.Flags().Uint64("seed", 0, "seed for the plugin's RNG, if it exports SeedGenerator")
	fuzzFlags.iterations = fuzzCmd.Flags().Int("iterations", 0, "stop after N runs (0 = run forever)")
	fuzzFlags.crashExit = fuzzCmd.Flags().Int("crash-status", 1, "forkserver status word considered a crash")
	fuzzCmd.MarkFlagRequired("plugin")
	fuzzCmd.MarkFlagRequired("input-file")
}

func main() {
	if err := fuzzCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFuzz(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no target binary given after --")
	}
	target, targetArgs := args[0], args[1:]

	artifact, err := pluginhost.Load(*fuzzFlags.plugin)
	if err != nil {
		return err
	}
	if artifact.SeedGenerator != nil {
		artifact.SeedGenerator(*fuzzFlags.seed)
	}

	if err := os.MkdirAll(*fuzzFlags.corpusDir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	fs, err := forkserver.Start(target, targetArgs, os.Environ())
	if err != nil {
		return err
	}
	defer fs.Close()

	capacity := *fuzzFlags.capacity
	buf := make([]uint32, capacity)
	out := make([]byte, 1<<20)

	start := time.Now()
	var ran int
	for *fuzzFlags.iterations == 0 || ran < *fuzzFlags.iterations {
		ran++

		length := artifact.MutateSequence(buf, 0, capacity)

		n := artifact.SerializeSequence(buf[:length], out)
		if err := os.WriteFile(*fuzzFlags.inputFile, out[:n], 0644); err != nil {
			return fmt.Errorf("writing test case: %w", err)
		}

		status, err := fs.Run()
		if err != nil {
			log.Error().Err(err).Int("run", ran).Msg("forkserver run failed")
			break
		}

		if int(status) == *fuzzFlags.crashExit {
			if err := saveCrash(*fuzzFlags.corpusDir, buf[:length]); err != nil {
				log.Error().Err(err).Msg("saving crashing walk")
			} else {
				log.Warn().Int("run", ran).Msg("crash found")
			}
		}

		if ran%1000 == 0 {
			log.Info().Int("runs", ran).Dur("elapsed", time.Since(start)).Msg("fuzzing")
		}
	}

	log.Info().Int("total_runs", ran).Dur("elapsed", time.Since(start)).Msg("campaign finished")
	return nil
}

// saveCrash persists seq as a raw little-endian uint32 array, named with
// a random UUID so concurrent campaigns against the same corpus
// directory never collide.
func saveCrash(dir string, seq []uint32) error {
	raw := make([]byte, len(seq)*4)
	for i, v := range seq {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	name := "peacock-raw-" + uuid.NewString()
	return os.WriteFile(filepath.Join(dir, name), raw, 0644)
}
