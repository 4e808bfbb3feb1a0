package automaton

// Engine interprets an Automaton description directly, dispatching on
// Step.Kind at runtime instead of switching over a compiled alternative
// index the way the codegen-emitted artifact does. It exists so the
// three core algorithms can be exercised by tests (and by
// peacock-generate) without invoking the Go toolchain on generated
// source; it is not the performance-critical path spec.md targets.
type Engine struct {
	Automaton *Automaton
	RNG       *RNG
}

// NewEngine builds an Engine over a, seeded with seed.
func NewEngine(a *Automaton, seed uint64) *Engine {
	return &Engine{Automaton: a, RNG: NewRNG(seed)}
}

// MutateSequence replays walk from its existing contents and extends it
// with freshly chosen alternatives up to walk.Capacity, exactly as
// generate_N does in the emitted code: a cursor position inside the
// existing walk is read back (replay), a cursor position at the tail is
// chosen at random and appended (extend), and a cursor past capacity
// reports truncation.
//
// It reports whether the walk was truncated; the new walk length is left
// in walk.Length.
func (e *Engine) MutateSequence(walk *Walk) (truncated bool) {
	cursor := 0
	ok := e.generate(e.Automaton.EntryID, walk, &cursor)
	return !ok
}

func (e *Engine) generate(ntID int, walk *Walk, cursor *int) bool {
	nt := &e.Automaton.NonTerminals[ntID]

	pos := *cursor
	var alt int
	switch {
	case pos < walk.Length:
		alt = int(walk.Indices[pos])
	case walk.Length < walk.Capacity:
		alt = e.RNG.Intn(len(nt.Alternatives))
		walk.Indices[walk.Length] = uint32(alt)
		walk.Length++
	default:
		return false
	}
	*cursor++

	for _, step := range nt.Alternatives[alt] {
		if step.Kind == StepNonTerminal {
			if !e.generate(step.Target, walk, cursor) {
				return false
			}
		}
	}
	return true
}

// SerializeSequence renders walk's chosen alternatives to bytes into out,
// returning the number of bytes written. It stops at the walk's recorded
// length (graceful end) and never writes a partial terminal: once out
// cannot hold the next terminal's bytes in full, emission halts there.
func (e *Engine) SerializeSequence(walk *Walk, out []byte) int {
	cursor := 0
	return e.serialize(e.Automaton.EntryID, walk, &cursor, out)
}

func (e *Engine) serialize(ntID int, walk *Walk, cursor *int, out []byte) int {
	if *cursor >= walk.Length {
		return 0
	}
	nt := &e.Automaton.NonTerminals[ntID]
	alt := int(walk.Indices[*cursor])
	*cursor++

	written := 0
	for _, step := range nt.Alternatives[alt] {
		switch step.Kind {
		case StepTerminal:
			remaining := len(out) - written
			if len(step.Bytes) > remaining {
				return written
			}
			copy(out[written:], step.Bytes)
			written += len(step.Bytes)
		case StepNonTerminal:
			written += e.serialize(step.Target, walk, cursor, out[written:])
		}
	}
	return written
}

// UnparseSequence reconstructs a walk from input bytes by trying each
// non-terminal's alternatives in source order and committing to the
// first one whose steps fully match (commit-first, not longest-match;
// see SPEC_FULL.md's design notes on why this follows spec.md rather
// than the reference implementation's backtracking C code). It returns
// the populated walk, the number of input bytes consumed, and whether
// the entry non-terminal matched at all.
func (e *Engine) UnparseSequence(input []byte, capacity int) (*Walk, int, bool) {
	walk := NewWalk(capacity)
	bytePos := 0
	ok := e.unparse(e.Automaton.EntryID, walk, input, &bytePos)
	return walk, bytePos, ok
}

func (e *Engine) unparse(ntID int, walk *Walk, input []byte, bytePos *int) bool {
	nt := &e.Automaton.NonTerminals[ntID]

	for altIdx, alt := range nt.Alternatives {
		if walk.Length >= walk.Capacity {
			return false
		}

		savedBytePos := *bytePos
		savedLen := walk.Length
		slot := walk.Length
		walk.Length++

		ok := true
		for _, step := range alt {
			switch step.Kind {
			case StepTerminal:
				n := len(step.Bytes)
				if *bytePos+n > len(input) || !bytesEqual(input[*bytePos:*bytePos+n], step.Bytes) {
					ok = false
				} else {
					*bytePos += n
				}
			case StepNonTerminal:
				if !e.unparse(step.Target, walk, input, bytePos) {
					ok = false
				}
			}
			if !ok {
				break
			}
		}

		if ok {
			walk.Indices[slot] = uint32(altIdx)
			return true
		}

		*bytePos = savedBytePos
		walk.Length = savedLen
	}

	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
