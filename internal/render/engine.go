package render

import "github.com/dshills/vtbridge/internal/render/core"

// Frame is a row-major grid of cells representing one full repaint of the
// host's screen model.
type Frame [][]core.Cell

// NewFrame creates a frame of the given dimensions filled with empty cells.
func NewFrame(width, height int) Frame {
	f := make(Frame, height)
	for y := range f {
		f[y] = make([]core.Cell, width)
		for x := range f[y] {
			f[y][x] = core.EmptyCell()
		}
	}
	return f
}

// Width returns the frame width in cells.
func (f Frame) Width() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Height returns the frame height in cells.
func (f Frame) Height() int {
	return len(f)
}

// SetText writes a string into the frame starting at the given position,
// clipped to the frame bounds.
func (f Frame) SetText(x, y int, text string, style core.Style) {
	if y < 0 || y >= len(f) {
		return
	}
	row := f[y]
	for _, r := range text {
		if x < 0 || x >= len(row) {
			break
		}
		row[x] = core.NewStyledCell(r, style)
		x++

		// Wide characters occupy a second column.
		if core.RuneWidth(r) == 2 && x < len(row) {
			row[x] = core.ContinuationCell()
			x++
		}
	}
}

// Engine translates screen state into output for one destination. Concrete
// implementations emit VT escape sequences to a pipe or mirror cells to a
// locally attached terminal.
type Engine interface {
	// WriteFrame emits a full repaint of the given frame.
	WriteFrame(f Frame) error

	// SetCursor moves the destination's cursor to the given cell position.
	SetCursor(x, y int) error

	// Clear erases the destination's screen.
	Clear() error

	// Close releases the destination. The engine is unusable afterwards.
	Close() error
}
