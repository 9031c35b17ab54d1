package interp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/redox-os/ion-sub002/internal/pipeline"
)

// plannedItem is one PipeItem after stdio plumbing has been decided but
// before the process/goroutine has necessarily finished: external
// commands carry a started *exec.Cmd, built-ins/functions run in a
// goroutine and report through done.
type plannedItem struct {
	item   pipeline.PipeItem
	isLast bool

	cmd  *exec.Cmd // nil for built-ins/functions
	done chan builtinResult

	stdin          io.Reader
	stdout, stderr io.Writer

	closers []io.Closer
}

type builtinResult struct {
	code int
	err  error
}

func (it *plannedItem) wait() (int, error) {
	if it.cmd != nil {
		err := it.cmd.Wait()
		closeAll(it.closers)
		return exitCodeFromWait(it.cmd, err)
	}
	r := <-it.done
	closeAll(it.closers)
	return r.code, r.err
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}

func exitCodeFromWait(cmd *exec.Cmd, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if _, ok := err.(*exec.Error); ok {
		return 127, err
	}
	return 1, err
}

// plan resolves every PipeItem's stdin/stdout/stderr plumbing (honoring
// Connector and per-item Redirects) without yet starting any process,
// per spec.md §4.J steps 1-2.
func (e *Executor) plan(dir string, env []string, p *pipeline.Pipeline) ([]*plannedItem, error) {
	items := make([]*plannedItem, len(p.Items))
	var prevOut io.Reader

	for i := range p.Items {
		it := &plannedItem{item: p.Items[i], isLast: i == len(p.Items)-1}
		items[i] = it

		stdin, err := e.resolveStdin(dir, it.item, prevOut, it)
		if err != nil {
			return nil, err
		}

		var nextOut io.Reader
		stdout, stderr, nextOut, err := e.resolveStdout(dir, it.item, it)
		if err != nil {
			return nil, err
		}
		prevOut = nextOut

		it.stdin, it.stdout, it.stderr = stdin, stdout, stderr

		if it.item.Job.BuiltinName == "" && !it.item.Job.IsFunction {
			cmd, err := e.buildExternal(dir, env, it.item.Job.Argv, stdin, stdout, stderr)
			if err != nil {
				return nil, err
			}
			it.cmd = cmd
		}
	}
	return items, nil
}

func (e *Executor) resolveStdin(dir string, job pipeline.PipeItem, prevOut io.Reader, it *plannedItem) (io.Reader, error) {
	if len(job.Inputs) > 0 {
		r := job.Inputs[len(job.Inputs)-1]
		switch r.Op {
		case pipeline.RedirIn:
			f, err := os.Open(resolvePath(dir, r.Word))
			if err != nil {
				return nil, fmt.Errorf("ion: exec: %w", err)
			}
			it.closers = append(it.closers, f)
			return f, nil
		case pipeline.RedirHereString:
			return strings.NewReader(r.Word + "\n"), nil
		case pipeline.RedirHeredoc:
			return strings.NewReader(r.Word), nil
		}
	}
	if prevOut != nil {
		return prevOut, nil
	}
	return e.Stdin, nil
}

// resolveStdout builds the stdout/stderr writers for job, honoring its
// Connector (pipe to next stage) alongside any file Outputs
// (spec.md §4.J's multi-output "tee" case), and returns the reader the
// next PipeItem should consume if this item connects forward.
func (e *Executor) resolveStdout(dir string, job pipeline.PipeItem, it *plannedItem) (io.Writer, io.Writer, io.Reader, error) {
	var outDests, errDests []io.Writer
	var nextReader io.Reader

	if job.Job.RedirectTo != pipeline.ConnNone {
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ion: exec: pipe: %w", err)
		}
		it.closers = append(it.closers, pw)
		nextReader = pr
		switch job.Job.RedirectTo {
		case pipeline.ConnStdout:
			outDests = append(outDests, pw)
		case pipeline.ConnStderr:
			errDests = append(errDests, pw)
		case pipeline.ConnBoth:
			outDests = append(outDests, pw)
			errDests = append(errDests, pw)
		}
	}

	for _, r := range job.Outputs {
		f, err := openOutputRedirect(dir, r)
		if err != nil {
			return nil, nil, nil, err
		}
		it.closers = append(it.closers, f)
		switch r.Op {
		case pipeline.RedirOutTrunc, pipeline.RedirOutAppend:
			outDests = append(outDests, f)
		case pipeline.RedirErrTrunc, pipeline.RedirErrAppend:
			errDests = append(errDests, f)
		case pipeline.RedirBothTrunc, pipeline.RedirBothAppend:
			outDests = append(outDests, f)
			errDests = append(errDests, f)
		}
	}

	if len(outDests) == 0 {
		outDests = append(outDests, e.Stdout)
	}
	if len(errDests) == 0 {
		errDests = append(errDests, e.Stderr)
	}

	return fanOutWriter(outDests), fanOutWriter(errDests), nextReader, nil
}

// fanOutWriter returns ws[0] directly when there is only one
// destination, otherwise an io.MultiWriter. This is the executor's only
// "tee" path; fanOut in pipes.go is not called.
func fanOutWriter(ws []io.Writer) io.Writer {
	if len(ws) == 1 {
		return ws[0]
	}
	return io.MultiWriter(ws...)
}

func openOutputRedirect(dir string, r pipeline.Redirect) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch r.Op {
	case pipeline.RedirOutAppend, pipeline.RedirErrAppend, pipeline.RedirBothAppend:
		flags |= os.O_APPEND
	default:
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(resolvePath(dir, r.Word), flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ion: exec: %w", err)
	}
	return f, nil
}

func resolvePath(dir, path string) string {
	if path == "" || path[0] == '/' {
		return path
	}
	return dir + string(os.PathSeparator) + path
}

func (e *Executor) buildExternal(dir string, env []string, argv []string, stdin io.Reader, stdout, stderr io.Writer) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("ion: exec: empty command")
	}
	path, err := lookPath(env, argv[0])
	if err != nil {
		return nil, fmt.Errorf("ion: exec: %s: command not found", argv[0])
	}
	cmd := &exec.Cmd{
		Path:   path,
		Args:   argv,
		Dir:    dir,
		Env:    env,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	return cmd, nil
}

func lookPath(env []string, name string) (string, error) {
	pathVar := "/usr/local/bin:/usr/bin:/bin"
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			pathVar = kv[len("PATH="):]
			break
		}
	}
	if strings.ContainsRune(name, '/') {
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			return name, nil
		}
		return "", fmt.Errorf("not found")
	}
	for _, dir := range strings.Split(pathVar, string(os.PathListSeparator)) {
		if dir == "" {
			dir = "."
		}
		cand := dir + string(os.PathSeparator) + name
		if st, err := os.Stat(cand); err == nil && !st.IsDir() && st.Mode()&0o111 != 0 {
			return cand, nil
		}
	}
	return "", fmt.Errorf("not found")
}

// startAll starts every external command and launches a goroutine for
// every built-in/function item, in source order, per spec.md §4.J step
// 3. The first external item started becomes the pipeline's process
// group leader; later external items join that group.
func (e *Executor) startAll(ctx context.Context, items []*plannedItem) error {
	leaderPgid := 0
	for _, it := range items {
		if it.cmd != nil {
			prepareCommand(it.cmd, leaderPgid)
			if err := it.cmd.Start(); err != nil {
				return fmt.Errorf("ion: exec: %w", err)
			}
			if leaderPgid == 0 {
				leaderPgid = it.cmd.Process.Pid
			}
			continue
		}
		it.done = make(chan builtinResult, 1)
		go e.runInProcess(ctx, it)
	}
	return nil
}

// runInProcess executes a built-in or function item in a goroutine so
// it runs concurrently with the rest of the pipeline, reporting its
// result on it.done (spec.md §4.J: built-ins participate in pipelines
// exactly like external processes from the stdio perspective).
func (e *Executor) runInProcess(ctx context.Context, it *plannedItem) {
	ec := &ExecContext{Stdin: bufio.NewReader(it.stdin), Stdout: it.stdout, Stderr: it.stderr}
	var code int
	var err error
	switch {
	case it.item.Job.IsFunction && e.Functions != nil:
		code, err = e.Functions.RunFunction(ctx, it.item.Job.Argv[0], it.item.Job.Argv, ec)
	case it.item.Job.BuiltinName != "":
		fn, ok := e.Builtins[it.item.Job.BuiltinName]
		if !ok {
			code, err = 127, errNoSuchBuiltin
		} else {
			code, err = fn(ctx, ec, it.item.Job.Argv)
		}
	default:
		code, err = 127, errNoSuchBuiltin
	}
	it.done <- builtinResult{code: code, err: err}
}
