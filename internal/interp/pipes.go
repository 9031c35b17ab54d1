package interp

import (
	"io"

	"golang.org/x/sync/errgroup"
)

// fanIn merges N readers into one, a multi-input "cat" helper. Copies
// run concurrently via errgroup; the writer side of the returned pipe is
// closed once every source is drained (or the first error occurs). The
// executor does not call it: resolveStdin in plan.go uses only the last
// input redirection of a PipeItem, and several inputs are not
// concatenated.
func fanIn(srcs ...io.Reader) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		var g errgroup.Group
		for _, s := range srcs {
			s := s
			g.Go(func() error {
				_, err := io.Copy(pw, s)
				return err
			})
		}
		err := g.Wait()
		pw.CloseWithError(err)
	}()
	return pr
}

// fanOut duplicates a single reader to N destinations, a multi-output
// "tee" helper. Each destination is written concurrently via errgroup so
// a slow file write cannot stall the pipe reader. The executor does not
// call it: resolveStdout in plan.go tees several output destinations
// through fanOutWriter's io.MultiWriter instead.
func fanOut(src io.Reader, dests ...io.Writer) error {
	if len(dests) == 1 {
		_, err := io.Copy(dests[0], src)
		return err
	}
	pipes := make([]*io.PipeWriter, len(dests))
	var g errgroup.Group
	for i, d := range dests {
		pr, pw := io.Pipe()
		pipes[i] = pw
		d := d
		g.Go(func() error {
			_, err := io.Copy(d, pr)
			return err
		})
	}
	writers := make([]io.Writer, len(pipes))
	for i, pw := range pipes {
		writers[i] = pw
	}
	_, copyErr := io.Copy(io.MultiWriter(writers...), src)
	for _, pw := range pipes {
		pw.CloseWithError(copyErr)
	}
	return g.Wait()
}
