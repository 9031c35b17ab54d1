// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package job implements Job Control (spec.md §3, §4.K): the
// BackgroundProcess table, the supervisor goroutine watching each
// backgrounded pipeline, and the jobs/fg/bg/disown operations (suspend
// is handled by the builtin package, not here).
//
// The supervisor-goroutine-plus-done-channel shape is grounded on
// titpetric-atkins' psexec.Process.wait(): one goroutine blocks on
// exec.Cmd.Wait and records the result under a mutex, signalling a done
// channel that Wait callers and the "jobs" built-in can poll without
// racing the table.
package job

import (
	"os"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/redox-os/ion-sub002/internal/ionerr"
)

// State is a BackgroundProcess's run state (spec.md §3).
type State int

const (
	Running State = iota
	Stopped
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	}
	return "Unknown"
}

// Process is one backgrounded pipeline tracked in the job table
// (spec.md §3 BackgroundProcess).
type Process struct {
	ID       int
	Pgid     int
	Command  string
	State    State
	ExitCode int
	Disowned bool

	mu   sync.Mutex
	done chan struct{}
}

// Wait blocks until the process finishes, returning its final exit code.
func (p *Process) Wait() int {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ExitCode
}

// Done reports whether the process has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) setState(s State) {
	p.mu.Lock()
	p.State = s
	p.mu.Unlock()
}

// Table is the mutex-protected background-process table (spec.md §3,
// §4.K). Slots are reused: a finished, collected job's index becomes
// available for reuse as described in spec.md §4.K "stable/reused
// indices".
type Table struct {
	mu    sync.Mutex
	slots []*Process // nil entries are free slots
	log   *logrus.Entry
}

// New creates an empty job table.
func New(log *logrus.Logger) *Table {
	if log == nil {
		log = logrus.New()
	}
	return &Table{log: log.WithField("component", "job")}
}

// Spawn registers a new background process under pgid and starts its
// supervisor goroutine, which watches proc.Wait() (an *os.Process or
// equivalent waiter) and updates the table on exit.
func (t *Table) Spawn(pgid int, command string, proc interface{ Wait() (*os.ProcessState, error) }) *Process {
	t.mu.Lock()
	id := t.allocSlot()
	p := &Process{ID: id, Pgid: pgid, Command: command, State: Running, done: make(chan struct{})}
	t.slots[id] = p
	t.mu.Unlock()

	go t.supervise(p, proc)
	return p
}

// supervise is the per-job goroutine grounded on psexec.Process.wait:
// block on the waiter, then record exit status and close done.
func (t *Table) supervise(p *Process, proc interface{ Wait() (*os.ProcessState, error) }) {
	state, err := proc.Wait()
	p.mu.Lock()
	p.State = Done
	if state != nil {
		if ws, ok := state.Sys().(syscall.WaitStatus); ok {
			switch {
			case ws.Exited():
				p.ExitCode = ws.ExitStatus()
			case ws.Signaled():
				p.ExitCode = 128 + int(ws.Signal())
			}
		}
	} else if err != nil {
		p.ExitCode = 1
	}
	p.mu.Unlock()
	close(p.done)
	t.log.WithFields(logrus.Fields{"job": p.ID, "pgid": p.Pgid}).Debug("background job finished")
}

// allocSlot finds a free (nil) slot, extending the table if needed.
// Caller must hold t.mu.
func (t *Table) allocSlot() int {
	for i, s := range t.slots {
		if s == nil {
			return i
		}
	}
	t.slots = append(t.slots, nil)
	return len(t.slots) - 1
}

// List returns a stable, ID-ordered snapshot of live jobs (spec.md §6
// "jobs" built-in).
func (t *Table) List() []*Process {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Process, 0, len(t.slots))
	for _, s := range t.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the process registered under id.
func (t *Table) Get(id int) (*Process, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.slots) || t.slots[id] == nil {
		return nil, false
	}
	return t.slots[id], true
}

// Collect removes a finished job from the table, freeing its slot for
// reuse (spec.md §4.K).
func (t *Table) Collect(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id >= 0 && id < len(t.slots) {
		t.slots[id] = nil
	}
}

// Disown marks a job as disowned: SIGHUP propagation on shell exit
// skips it (spec.md §4.K, §4.L).
func (t *Table) Disown(id int) error {
	p, ok := t.Get(id)
	if !ok {
		return ionerr.New("jobs", "no such job %d", id)
	}
	p.mu.Lock()
	p.Disowned = true
	p.mu.Unlock()
	return nil
}

// Resume sends SIGCONT to a job's process group, used by both fg and bg
// (spec.md §6).
func (t *Table) Resume(id int) error {
	p, ok := t.Get(id)
	if !ok {
		return ionerr.New("jobs", "no such job %d", id)
	}
	if err := syscall.Kill(-p.Pgid, syscall.SIGCONT); err != nil {
		return ionerr.Wrap("jobs", err)
	}
	p.setState(Running)
	return nil
}

// PropagateSIGHUP sends SIGHUP to every live, non-disowned job's
// process group, used when the shell itself receives SIGHUP or exits a
// login session without "disown -a" having been called (spec.md §4.L).
func (t *Table) PropagateSIGHUP() {
	for _, p := range t.List() {
		p.mu.Lock()
		disowned := p.Disowned
		p.mu.Unlock()
		if disowned {
			continue
		}
		_ = syscall.Kill(-p.Pgid, syscall.SIGHUP)
	}
}
