// Package forkserver drives an AFL-style forkserver-instrumented target
// binary: a persistent child process that forks fresh copies of itself
// per test case instead of paying full process-startup cost every run.
// It is grounded on the handshake shape of syzkaller's pkg/ipc executor
// protocol, simplified from syzkaller's shared-memory RPC to the two
// anonymous pipes classic AFL forkservers use.
//
// Unlike AFL's hardcoded fds 198/199, the child's control and status
// pipe file descriptors are passed as PEACOCK_CTL_FD and PEACOCK_ST_FD
// environment variables, since Go's os/exec has no portable way to plant
// inherited files at a fixed low fd without raw syscall plumbing; a
// harness built against this package reads those variables instead of
// assuming fixed numbers.
package forkserver

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	ctlFDEnv = "PEACOCK_CTL_FD"
	stFDEnv  = "PEACOCK_ST_FD"

	helloTimeout = 10 * time.Second
	runTimeout   = 5 * time.Second
)

// Forkserver supervises one running instrumented target.
type Forkserver struct {
	cmd  *exec.Cmd
	ctlW *os.File // parent writes; child's PEACOCK_CTL_FD reads
	stR  *os.File // parent reads; child's PEACOCK_ST_FD writes
}

// Start launches path with args and env, wiring up the control and
// status pipes and waiting for the initial four-byte handshake the
// child sends once it has reached its persistent loop.
func Start(path string, args []string, env []string) (*Forkserver, error) {
	ctlR, ctlW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating control pipe: %w", err)
	}
	stR, stW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating status pipe: %w", err)
	}

	cmd := exec.Command(path, args...)
	cmd.ExtraFiles = []*os.File{ctlR, stW}
	// os/exec places ExtraFiles starting at fd 3, in order.
	ctlFD := 3
	stFD := 4
	cmd.Env = append(append([]string{}, env...),
		fmt.Sprintf("%s=%d", ctlFDEnv, ctlFD),
		fmt.Sprintf("%s=%d", stFDEnv, stFD),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		ctlR.Close()
		ctlW.Close()
		stR.Close()
		stW.Close()
		return nil, fmt.Errorf("starting target: %w", err)
	}

	// The parent's copies of the child's ends are no longer needed once
	// the child has inherited them.
	ctlR.Close()
	stW.Close()

	fs := &Forkserver{cmd: cmd, ctlW: ctlW, stR: stR}

	if err := fs.handshake(); err != nil {
		fs.Close()
		return nil, err
	}

	return fs, nil
}

func (fs *Forkserver) handshake() error {
	fs.stR.SetReadDeadline(time.Now().Add(helloTimeout))
	var hello [4]byte
	if _, err := readFull(fs.stR, hello[:]); err != nil {
		return fmt.Errorf("forkserver handshake failed: %w", err)
	}
	return nil
}

// Run sends a four-byte go signal (always zero) to the child (triggering
// a fork of the persistent loop) and waits for a four-byte status word back. The
// caller is responsible for making the input itself available to the
// child, e.g. via a shared file path or shared memory segment agreed on
// out of band; this protocol only carries the go/no-go signal and the
// exit status, matching the minimal handshake real AFL forkservers use.
func (fs *Forkserver) Run() (status uint32, err error) {
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], 0)
	if _, err := fs.ctlW.Write(seq[:]); err != nil {
		return 0, fmt.Errorf("signalling target: %w", err)
	}

	fs.stR.SetReadDeadline(time.Now().Add(runTimeout))
	var buf [4]byte
	if _, err := readFull(fs.stR, buf[:]); err != nil {
		return 0, fmt.Errorf("reading target status: %w", err)
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Close terminates the persistent child and releases the pipes.
func (fs *Forkserver) Close() error {
	fs.ctlW.Close()
	fs.stR.Close()
	if fs.cmd.Process != nil {
		fs.cmd.Process.Kill()
		fs.cmd.Wait()
	}
	return nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
