//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// processGroupAttr has no process-group equivalent wired on Windows; the
// child is killed directly instead of by group.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
