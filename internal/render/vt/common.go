// Package vt implements the render engines that translate frames into
// VT/ANSI escape sequences on an output pipe.
package vt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/vtbridge/internal/render/core"
)

// ErrNilPipe indicates an engine was constructed without an output pipe.
var ErrNilPipe = errors.New("nil output pipe")

// emitter accumulates escape sequences for one operation and writes them to
// the owned pipe in a single call. The pipe is owned exclusively: nothing
// else writes to it after construction.
type emitter struct {
	mu  sync.Mutex
	w   io.WriteCloser
	buf bytes.Buffer
}

// cup emits a cursor position sequence for the given 0-based cell position.
func (e *emitter) cup(x, y int) {
	fmt.Fprintf(&e.buf, "\x1b[%d;%dH", y+1, x+1)
}

// flush writes the accumulated sequences to the pipe and resets the buffer.
func (e *emitter) flush() error {
	defer e.buf.Reset()
	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return err
	}
	return nil
}

// clear emits a full-screen erase followed by a cursor home.
func (e *emitter) clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()
	e.buf.WriteString("\x1b[2J\x1b[H")
	return e.flush()
}

// moveCursor emits a lone cursor position update.
func (e *emitter) moveCursor(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()
	e.cup(x, y)
	return e.flush()
}

// close closes the owned pipe.
func (e *emitter) close() error {
	return e.w.Close()
}

// writeRune appends a cell's rune, substituting a space for unprintable
// content. Continuation cells of wide runes carry width 0 and are skipped
// by the callers.
func (e *emitter) writeRune(r rune) {
	if r == 0 || core.RuneWidth(r) == 0 {
		r = ' '
	}
	e.buf.WriteRune(r)
}

// attrCodes appends SGR parameter codes for the attributes in the mask,
// restricted to the given set.
func attrCodes(buf *bytes.Buffer, attrs, supported core.Attribute) {
	codes := []struct {
		attr core.Attribute
		code string
	}{
		{core.AttrBold, ";1"},
		{core.AttrDim, ";2"},
		{core.AttrItalic, ";3"},
		{core.AttrUnderline, ";4"},
		{core.AttrReverse, ";7"},
		{core.AttrStrikethrough, ";9"},
	}
	for _, c := range codes {
		if attrs.Has(c.attr) && supported.Has(c.attr) {
			buf.WriteString(c.code)
		}
	}
}
