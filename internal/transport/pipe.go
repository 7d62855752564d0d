// Package transport opens the pre-established named pipes connecting the
// host to its terminal peer.
package transport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// PipeError reports a failed pipe acquisition, carrying the underlying
// OS error.
type PipeError struct {
	Op   string // "open input" or "open output"
	Path string // pipe name
	Err  error  // underlying error
}

func (e *PipeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PipeError) Unwrap() error {
	return e.Err
}

// Errno returns the underlying platform error code, or 0 if none is
// available.
func (e *PipeError) Errno() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

// Pair holds a freshly acquired input/output pipe pair. Each handle is
// surrendered at most once via the Take methods; Close releases whatever
// has not been taken.
type Pair struct {
	in  *os.File
	out *os.File
}

// OpenPipes opens the input pipe for exclusive read access and the output
// pipe for exclusive write access, both blocking. The pipes must already
// exist and be connected; this never creates or waits for an endpoint, so
// a missing name fails immediately with the OS error.
//
// The first failure aborts the sequence: if the input pipe opened but the
// output pipe did not, the input handle is closed before returning.
func OpenPipes(inName, outName string) (*Pair, error) {
	in, err := os.OpenFile(inName, os.O_RDONLY, 0)
	if err != nil {
		return nil, &PipeError{Op: "open input", Path: inName, Err: unwrapOS(err)}
	}

	out, err := os.OpenFile(outName, os.O_WRONLY, 0)
	if err != nil {
		in.Close()
		return nil, &PipeError{Op: "open output", Path: outName, Err: unwrapOS(err)}
	}

	return &Pair{in: in, out: out}, nil
}

// TakeInput transfers ownership of the input handle to the caller.
// Subsequent calls return nil.
func (p *Pair) TakeInput() io.ReadCloser {
	in := p.in
	p.in = nil
	if in == nil {
		return nil
	}
	return in
}

// TakeOutput transfers ownership of the output handle to the caller.
// Subsequent calls return nil.
func (p *Pair) TakeOutput() io.WriteCloser {
	out := p.out
	p.out = nil
	if out == nil {
		return nil
	}
	return out
}

// Close releases any handle that has not been taken.
func (p *Pair) Close() error {
	var first error
	if p.in != nil {
		first = p.in.Close()
		p.in = nil
	}
	if p.out != nil {
		if err := p.out.Close(); err != nil && first == nil {
			first = err
		}
		p.out = nil
	}
	return first
}

// unwrapOS strips the *fs.PathError wrapper so PipeError carries the bare
// errno when one exists.
func unwrapOS(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return err
}
