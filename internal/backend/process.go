package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// stderrLimit caps how much subprocess stderr is quoted in an error.
const stderrLimit = 2048

// waitDelay is how long Wait keeps reading output after the process is
// killed. Grandchildren that inherited the pipes would otherwise hold it open.
const waitDelay = 2 * time.Second

// invocation is a single run of a model CLI.
type invocation struct {
	name  string
	args  []string
	dir   string
	stdin io.Reader
}

// output is what a finished subprocess printed.
type output struct {
	stdout []byte
	stderr []byte
}

// command builds the exec.Cmd for inv. The child leads its own process
// group, and cancelling ctx kills that group rather than only the leader.
func (inv invocation) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.name, inv.args...)
	cmd.Dir = inv.dir
	cmd.Stdin = inv.stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return killGroup(cmd) }
	cmd.WaitDelay = waitDelay
	return cmd
}

// run executes inv to completion. A non-zero exit is an error that quotes
// the tail of stderr. When pm is non-nil the process is tracked while it runs.
func run(ctx context.Context, inv invocation, pm *ProcessManager) (output, error) {
	var stdout, stderr bytes.Buffer
	cmd := inv.command(ctx)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return output{}, fmt.Errorf("starting %s: %w", inv.name, err)
	}
	if pm != nil {
		pm.Track(cmd)
		defer pm.Untrack(cmd)
	}

	err := cmd.Wait()
	out := output{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s interrupted: %w", inv.name, ctxErr)
	}
	if msg := tail(out.stderr, stderrLimit); msg != "" {
		return out, fmt.Errorf("%s exited: %w: %s", inv.name, err, msg)
	}
	return out, fmt.Errorf("%s exited: %w", inv.name, err)
}

// tail returns the last n bytes of b as trimmed text.
func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = append([]byte("..."), b[len(b)-n:]...)
	}
	return string(b)
}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errors.New("process not started")
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// ProcessManager remembers which model CLIs are running so the process can
// take them down on shutdown.
type ProcessManager struct {
	mu      sync.Mutex
	running map[*exec.Cmd]struct{}
}

// NewProcessManager returns an empty ProcessManager.
func NewProcessManager() *ProcessManager {
	return &ProcessManager{running: make(map[*exec.Cmd]struct{})}
}

// Track records a started subprocess. Commands that never started are ignored.
func (pm *ProcessManager) Track(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pm.mu.Lock()
	pm.running[cmd] = struct{}{}
	pm.mu.Unlock()
}

// Untrack forgets a subprocess.
func (pm *ProcessManager) Untrack(cmd *exec.Cmd) {
	pm.mu.Lock()
	delete(pm.running, cmd)
	pm.mu.Unlock()
}

// KillAll sends SIGKILL to the process group of every tracked subprocess.
// Groups that already exited are not errors.
func (pm *ProcessManager) KillAll() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var errs []error
	for cmd := range pm.running {
		if err := killGroup(cmd); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", cmd.Process.Pid, err))
		}
	}
	return errors.Join(errs...)
}

// Count reports how many subprocesses are tracked.
func (pm *ProcessManager) Count() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.running)
}
