// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package signal implements the Signal Plane (spec.md §4.L): handlers
// for SIGINT/SIGTERM/SIGHUP/SIGTSTP/SIGCHLD and the lock-free slot the
// main loop polls. It does not block SIGTSTP/SIGTTOU/SIGTTIN/SIGCHLD
// around process start; no signal is blocked anywhere.
package signal

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Plane owns the shell's signal handling state: a lock-free "pending
// signal" slot fed by installed handlers, read by the main loop
// (spec.md §4.L).
type Plane struct {
	pending  atomic.Int32 // last-seen signal number, 0 if none
	ch       chan os.Signal
	stopped  chan struct{}
	Log      *logrus.Entry
	onSIGHUP func()
	onSIGTERM func()
}

// New installs handlers for SIGINT, SIGTERM, SIGHUP, SIGTSTP, SIGCHLD
// and starts the goroutine that funnels them into the pending slot.
func New(log *logrus.Logger) *Plane {
	if log == nil {
		log = logrus.New()
	}
	p := &Plane{
		ch:      make(chan os.Signal, 16),
		stopped: make(chan struct{}),
		Log:     log.WithField("component", "signal"),
	}
	signal.Notify(p.ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGTSTP, syscall.SIGCHLD)
	go p.loop()
	return p
}

func (p *Plane) loop() {
	for {
		select {
		case sig := <-p.ch:
			n := signum(sig)
			p.pending.Store(int32(n))
			p.Log.Debugf("received signal %d", n)
			switch sig {
			case syscall.SIGTERM:
				if p.onSIGTERM != nil {
					p.onSIGTERM()
				}
			case syscall.SIGHUP:
				if p.onSIGHUP != nil {
					p.onSIGHUP()
				}
			}
		case <-p.stopped:
			return
		}
	}
}

func signum(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 0
}

// OnSIGTERM registers the callback run when the shell itself receives
// SIGTERM (propagate to background pgids, then exit, spec.md §4.L).
func (p *Plane) OnSIGTERM(fn func()) { p.onSIGTERM = fn }

// OnSIGHUP registers the callback run when the shell itself receives
// SIGHUP.
func (p *Plane) OnSIGHUP(fn func()) { p.onSIGHUP = fn }

// TakePending reads and clears the last-seen signal number, 0 if none
// arrived since the last call.
func (p *Plane) TakePending() int {
	return int(p.pending.Swap(0))
}

// Stop tears down the signal-handling goroutine.
func (p *Plane) Stop() {
	signal.Stop(p.ch)
	close(p.stopped)
}
