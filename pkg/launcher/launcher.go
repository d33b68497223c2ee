// Package launcher implements C5: spawn a child process pre-stopped, so
// the tracer's first suspend is guaranteed to observe it at its entry
// point rather than racing it through arbitrary startup instructions.
package launcher

import (
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

const (
	stopSettleDelay = 50 * time.Millisecond
	pollInterval    = 100 * time.Millisecond
)

// Launcher manages one spawned child process.
type Launcher struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	pid    int
	paused bool
}

// Launch spawns program with args, stdin closed and stdout/stderr
// inherited, then immediately SIGSTOPs it and sleeps briefly to let the
// stop land before returning. The returned PID is alive but has not yet
// executed past its entry point.
func Launch(program string, args []string) (*Launcher, error) {
	cmd := exec.Command(program, args...)
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "spawn %s", program)
	}

	pid := cmd.Process.Pid
	if err := syscall.Kill(pid, syscall.SIGSTOP); err != nil {
		return nil, errors.Wrapf(err, "stop pid %d", pid)
	}
	time.Sleep(stopSettleDelay)

	return &Launcher{cmd: cmd, pid: pid, paused: true}, nil
}

// PID returns the child's process id.
func (l *Launcher) PID() int { return l.pid }

// Resume sends SIGCONT exactly once; later calls are no-ops.
func (l *Launcher) Resume() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.paused {
		return nil
	}
	if err := syscall.Kill(l.pid, syscall.SIGCONT); err != nil {
		return errors.Wrapf(err, "resume pid %d", l.pid)
	}
	l.paused = false
	return nil
}

// IsRunning probes liveness with a zero signal.
func (l *Launcher) IsRunning() bool {
	return syscall.Kill(l.pid, syscall.Signal(0)) == nil
}

// WaitForExit polls IsRunning until the child has exited.
func (l *Launcher) WaitForExit() {
	for l.IsRunning() {
		time.Sleep(pollInterval)
	}
}
