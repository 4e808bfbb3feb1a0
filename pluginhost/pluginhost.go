// Package pluginhost dynamically loads a compiled peacock-compile
// artifact as a Go plugin, the way the original project uses
// libloading/dlopen to let peacock-dump and peacock-fuzz work against
// any grammar's compiled shared object without being rebuilt per
// grammar. -buildmode=plugin is Go's analogue: the caller must have
// built the emitted source with `go build -buildmode=plugin`.
package pluginhost

import (
	"fmt"
	"plugin"
)

// Artifact is the set of exported entry points a compiled peacock
// plugin must provide. SeedGenerator is nil if the artifact was
// compiled with -disable-seed.
type Artifact struct {
	MutateSequence    func(buf []uint32, length int, capacity int) int
	SerializeSequence func(seq []uint32, out []byte) int
	UnparseSequence   func(buf []uint32, input []byte) int
	SeedGenerator     func(seed uint64)
}

// Load opens the shared object at path and resolves the four Peacock
// entry points. MutateSequence, SerializeSequence, and UnparseSequence
// are mandatory; SeedGenerator is optional.
func Load(path string) (*Artifact, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", path, err)
	}

	a := &Artifact{}

	if err := lookup(p, "MutateSequence", &a.MutateSequence); err != nil {
		return nil, err
	}
	if err := lookup(p, "SerializeSequence", &a.SerializeSequence); err != nil {
		return nil, err
	}
	if err := lookup(p, "UnparseSequence", &a.UnparseSequence); err != nil {
		return nil, err
	}
	_ = lookup(p, "SeedGenerator", &a.SeedGenerator) // optional

	return a, nil
}

// lookup resolves symbol from p and stores it into *dst, which must be a
// pointer to a func type matching the symbol's actual type exactly.
func lookup[T any](p *plugin.Plugin, symbol string, dst *T) error {
	sym, err := p.Lookup(symbol)
	if err != nil {
		return fmt.Errorf("plugin is missing %s: %w", symbol, err)
	}
	fn, ok := sym.(T)
	if !ok {
		return fmt.Errorf("plugin's %s has an unexpected signature", symbol)
	}
	*dst = fn
	return nil
}
