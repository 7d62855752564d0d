package vt

import (
	"fmt"
	"io"

	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
)

// XtermEngine renders frames for a 16-color xterm peer. Every color is
// quantized through the host's color table before an index escape code is
// emitted, so the peer sees the nearest entry the host palette offers.
type XtermEngine struct {
	emitter
	table core.ColorTable
}

// NewXtermEngine creates an engine writing to the given output pipe using
// the host's color table. The engine takes exclusive ownership of the pipe.
func NewXtermEngine(w io.WriteCloser, table core.ColorTable) (*XtermEngine, error) {
	if w == nil {
		return nil, ErrNilPipe
	}
	e := &XtermEngine{table: table}
	e.w = w
	return e, nil
}

// WriteFrame emits a full repaint with styles quantized to 16 colors.
func (e *XtermEngine) WriteFrame(f render.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()
	e.cup(0, 0)

	var last core.Style
	first := true
	for y, row := range f {
		if y > 0 {
			e.buf.WriteString("\r\n")
		}
		for _, cell := range row {
			if cell.Width == 0 && cell.Rune == 0 {
				continue
			}
			if first || !cell.Style.Equals(last) {
				e.writeSGR(cell.Style)
				last = cell.Style
				first = false
			}
			e.writeRune(cell.Rune)
		}
	}
	e.buf.WriteString("\x1b[0m")
	return e.flush()
}

// SetCursor moves the peer's cursor.
func (e *XtermEngine) SetCursor(x, y int) error {
	return e.moveCursor(x, y)
}

// Clear erases the peer's screen.
func (e *XtermEngine) Clear() error {
	return e.clear()
}

// Close closes the output pipe.
func (e *XtermEngine) Close() error {
	return e.close()
}

// writeSGR emits a 16-color SGR sequence. Bright table entries use the
// aixterm 90-97/100-107 range.
func (e *XtermEngine) writeSGR(s core.Style) {
	e.buf.WriteString("\x1b[0")
	attrCodes(&e.buf, s.Attributes, core.AttrBold|core.AttrUnderline|core.AttrReverse)

	if s.Foreground.IsDefault() {
		e.buf.WriteString(";39")
	} else {
		idx := e.table.NearestIndex(s.Foreground)
		if idx < 8 {
			fmt.Fprintf(&e.buf, ";%d", 30+idx)
		} else {
			fmt.Fprintf(&e.buf, ";%d", 90+idx-8)
		}
	}

	if s.Background.IsDefault() {
		e.buf.WriteString(";49")
	} else {
		idx := e.table.NearestIndex(s.Background)
		if idx < 8 {
			fmt.Fprintf(&e.buf, ";%d", 40+idx)
		} else {
			fmt.Fprintf(&e.buf, ";%d", 100+idx-8)
		}
	}

	e.buf.WriteByte('m')
}
