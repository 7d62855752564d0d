// Package render provides the composite renderer that fans paint operations
// out to every registered render engine.
package render

import (
	"errors"
	"fmt"
	"sync"
)

// Renderer errors.
var (
	// ErrRendererClosed indicates an operation on a closed renderer.
	ErrRendererClosed = errors.New("renderer closed")

	// ErrNilEngine indicates an attempt to register a nil engine.
	ErrNilEngine = errors.New("nil render engine")
)

// Renderer fans rendering operations out to every registered engine.
// A single screen-state change drives one or more engines: the host's local
// display, a VT pipe, or both.
type Renderer struct {
	mu      sync.Mutex
	engines []Engine
	closed  bool
}

// NewRenderer creates an empty composite renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// AddEngine registers an engine with the renderer. Every subsequent paint
// operation is fanned out to it.
func (r *Renderer) AddEngine(e Engine) error {
	if e == nil {
		return ErrNilEngine
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	r.engines = append(r.engines, e)
	return nil
}

// EngineCount returns the number of registered engines.
func (r *Renderer) EngineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.engines)
}

// PaintFrame emits a full repaint to every registered engine. The first
// engine failure aborts the fan-out and is returned.
func (r *Renderer) PaintFrame(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	for _, e := range r.engines {
		if err := e.WriteFrame(f); err != nil {
			return fmt.Errorf("paint frame: %w", err)
		}
	}
	return nil
}

// SetCursor moves the cursor on every registered engine.
func (r *Renderer) SetCursor(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	for _, e := range r.engines {
		if err := e.SetCursor(x, y); err != nil {
			return fmt.Errorf("set cursor: %w", err)
		}
	}
	return nil
}

// Clear erases the screen on every registered engine.
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	for _, e := range r.engines {
		if err := e.Clear(); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return nil
}

// Close closes every registered engine and marks the renderer closed.
// The first close error is returned; all engines are closed regardless.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var first error
	for _, e := range r.engines {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.engines = nil
	return first
}
