// Package local provides a render engine that mirrors frames onto the
// host's own attached terminal via tcell.
package local

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
)

// Engine implements render.Engine on a tcell screen.
type Engine struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewEngine creates an engine on a newly initialized terminal screen.
func NewEngine() (*Engine, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &Engine{screen: screen}, nil
}

// NewEngineForScreen creates an engine on an existing initialized screen.
// Used with tcell's simulation screen in tests.
func NewEngineForScreen(screen tcell.Screen) *Engine {
	return &Engine{screen: screen}
}

// WriteFrame mirrors the frame onto the screen.
func (e *Engine) WriteFrame(f render.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for y, row := range f {
		for x, cell := range row {
			if cell.Width == 0 && cell.Rune == 0 {
				continue
			}
			e.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
		}
	}
	e.screen.Show()
	return nil
}

// SetCursor positions the screen cursor.
func (e *Engine) SetCursor(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.screen.ShowCursor(x, y)
	e.screen.Show()
	return nil
}

// Clear erases the screen.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.screen.Clear()
	e.screen.Show()
	return nil
}

// Close restores the terminal.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.screen.Fini()
	return nil
}

func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(s.Foreground)).
		Background(convertColor(s.Background))

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	return style
}

func convertColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}
