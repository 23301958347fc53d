//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts cmd in a new process group so the whole tree can
// be signalled at once.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort: the process may already be gone.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
