package vtio

import (
	"fmt"
	"io"

	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
	"github.com/dshills/vtbridge/internal/render/vt"
)

// buildEngine constructs the render engine matching the resolved mode,
// handing it exclusive ownership of the output pipe. The indexed variants
// take the host's color table; the 256-color variant emits full-fidelity
// codes and needs none.
//
// The default branch is a deliberate invariant check: a caller that
// resolved its mode successfully can never reach it.
func buildEngine(mode Mode, w io.WriteCloser, table core.ColorTable) (render.Engine, error) {
	var (
		engine render.Engine
		err    error
	)

	switch mode {
	case ModeXterm256:
		engine, err = vt.NewXterm256Engine(w)
	case ModeXterm:
		engine, err = vt.NewXtermEngine(w, table)
	case ModeWinTelnet:
		engine, err = vt.NewWinTelnetEngine(w, table)
	default:
		return nil, fmt.Errorf("%w: no render engine for mode %d", ErrInternal, mode)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: constructing %s engine: %v", ErrInternal, mode, err)
	}
	return engine, nil
}
