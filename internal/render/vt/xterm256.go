package vt

import (
	"fmt"
	"io"

	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
)

// Xterm256Engine renders frames as full-fidelity xterm escape sequences.
// True colors are emitted directly as 24-bit SGR codes, so no host color
// table is needed.
type Xterm256Engine struct {
	emitter
}

// NewXterm256Engine creates an engine writing to the given output pipe.
// The engine takes exclusive ownership of the pipe.
func NewXterm256Engine(w io.WriteCloser) (*Xterm256Engine, error) {
	if w == nil {
		return nil, ErrNilPipe
	}
	e := &Xterm256Engine{}
	e.w = w
	return e, nil
}

// WriteFrame emits a full repaint. Styles are emitted as runs: an SGR
// sequence is written only when the style changes between cells.
func (e *Xterm256Engine) WriteFrame(f render.Frame) error {
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
func (e *Xterm256Engine) SetCursor(x, y int) error {
	return e.moveCursor(x, y)
}

// Clear erases the peer's screen.
func (e *Xterm256Engine) Clear() error {
	return e.clear()
}

// Close closes the output pipe.
func (e *Xterm256Engine) Close() error {
	return e.close()
}

// writeSGR emits the full SGR sequence for a style: reset, attributes,
// then 24-bit or palette color parameters.
func (e *Xterm256Engine) writeSGR(s core.Style) {
	e.buf.WriteString("\x1b[0")
	attrCodes(&e.buf, s.Attributes, core.AttrBold|core.AttrDim|core.AttrItalic|core.AttrUnderline|core.AttrReverse|core.AttrStrikethrough)

	switch {
	case s.Foreground.IsDefault():
		e.buf.WriteString(";39")
	case s.Foreground.Indexed:
		fmt.Fprintf(&e.buf, ";38;5;%d", s.Foreground.R)
	default:
		fmt.Fprintf(&e.buf, ";38;2;%d;%d;%d", s.Foreground.R, s.Foreground.G, s.Foreground.B)
	}

	switch {
	case s.Background.IsDefault():
		e.buf.WriteString(";49")
	case s.Background.Indexed:
		fmt.Fprintf(&e.buf, ";48;5;%d", s.Background.R)
	default:
		fmt.Fprintf(&e.buf, ";48;2;%d;%d;%d", s.Background.R, s.Background.G, s.Background.B)
	}

	e.buf.WriteByte('m')
}
