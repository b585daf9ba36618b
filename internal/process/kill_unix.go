//go:build !windows

// Package process terminates browser process trees left behind by the
// rendering engines.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid so Chrome
// helper processes die with the browser.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the engine's own Kill/Cancel runs afterwards anyway.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
