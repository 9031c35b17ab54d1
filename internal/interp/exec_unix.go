//go:build unix

// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepareCommand assigns cmd to a process group. If leaderPgid is 0,
// cmd becomes the leader of a new group (its own pid becomes the
// pgid); otherwise cmd joins the given existing group. Grounded on
// mvdan-sh/interp/handler_unix.go's prepareCommand, extended to support
// joining a pipeline's shared group (spec.md §4.J "assign every item to
// one process group, led by the first").
func prepareCommand(cmd *exec.Cmd, leaderPgid int) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    leaderPgid,
	}
}

// interruptCommand interrupts a command's whole process group.
func interruptCommand(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
}

// killCommand kills a command's whole process group.
func killCommand(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// setForegroundPgrp hands control of the controlling terminal to pgid,
// the tcsetpgrp half of spec.md §4.J's "terminal ownership handoff".
// Errors are ignored: the shell may not be attached to a tty (scripts,
// tests), in which case there is nothing to hand off.
func setForegroundPgrp(pgid int) {
	if pgid <= 0 {
		return
	}
	_ = unix.IoctlSetInt(syscall.Stdin, unix.TIOCSPGRP, pgid)
}
