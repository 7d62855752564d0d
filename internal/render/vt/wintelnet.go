package vt

import (
	"fmt"
	"io"

	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
)

// WinTelnetEngine renders frames for a telnet-negotiated VT peer. Such
// peers implement only the basic SGR 30-37/40-47 color range and handle
// relative cursor motion poorly, so every row is addressed with an explicit
// cursor position and bright colors fall back to bold.
type WinTelnetEngine struct {
	emitter
	table core.ColorTable
}

// NewWinTelnetEngine creates an engine writing to the given output pipe
// using the host's color table. The engine takes exclusive ownership of
// the pipe.
func NewWinTelnetEngine(w io.WriteCloser, table core.ColorTable) (*WinTelnetEngine, error) {
	if w == nil {
		return nil, ErrNilPipe
	}
	e := &WinTelnetEngine{table: table}
	e.w = w
	return e, nil
}

// WriteFrame emits a full repaint, re-homing the cursor at the start of
// every row.
func (e *WinTelnetEngine) WriteFrame(f render.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()

	var last core.Style
	first := true
	for y, row := range f {
		e.cup(0, y)
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
func (e *WinTelnetEngine) SetCursor(x, y int) error {
	return e.moveCursor(x, y)
}

// Clear erases the peer's screen.
func (e *WinTelnetEngine) Clear() error {
	return e.clear()
}

// Close closes the output pipe.
func (e *WinTelnetEngine) Close() error {
	return e.close()
}

// writeSGR emits a basic-range SGR sequence. Bright foregrounds become
// bold + base color; backgrounds are folded into the base 40-47 range.
func (e *WinTelnetEngine) writeSGR(s core.Style) {
	e.buf.WriteString("\x1b[0")

	fg := 7
	if !s.Foreground.IsDefault() {
		fg = e.table.NearestIndex(s.Foreground)
	}
	if fg >= 8 {
		fmt.Fprintf(&e.buf, ";1;%d", 30+fg-8)
	} else {
		fmt.Fprintf(&e.buf, ";%d", 30+fg)
	}

	bg := 0
	if !s.Background.IsDefault() {
		bg = e.table.NearestIndex(s.Background)
	}
	fmt.Fprintf(&e.buf, ";%d", 40+bg%8)

	e.buf.WriteByte('m')
}
