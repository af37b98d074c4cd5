//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// processGroupAttr puts the child in its own process group so killGroup
// can take down the whole tree (the CLI plus any MCP server children it
// spawns) with a single signal.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the child's entire process group. Unlike
// SIGTERM this cannot be caught or ignored, which matters once a deadline
// has already fired and the child is presumed wedged.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		_ = cmd.Process.Kill()
		return
	}
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
