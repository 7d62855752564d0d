package vtio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/vtbridge/internal/input"
	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
	"github.com/dshills/vtbridge/internal/transport"
)

// Status is the outcome of StartIfNeeded.
type Status int

const (
	// StatusSkipped means no bridge was configured and there was
	// nothing to start. This is a legitimate way to run the host.
	StatusSkipped Status = iota

	// StatusStarted means the render engine was registered and the
	// input decoder is running.
	StatusStarted
)

// String returns a readable status name.
func (s Status) String() string {
	if s == StatusStarted {
		return "started"
	}
	return "skipped"
}

// EngineRegistry is the slice of the composite renderer the bridge needs:
// registration of one render engine.
type EngineRegistry interface {
	AddEngine(render.Engine) error
}

// InputStarter is the slice of the input decoder agent the bridge manages:
// a one-shot start of its read loop.
type InputStarter interface {
	Start() bool
}

// VtIo bridges the host to a VT terminal peer. A zero bridge is inert;
// Initialize configures it and StartIfNeeded brings it to life. Neither
// method is safe to call concurrently with the other or with itself.
type VtIo struct {
	renderer EngineRegistry
	queue    *input.Queue
	table    core.ColorTable
	log      zerolog.Logger

	mode    Mode
	usingVT bool
	started bool

	engine  render.Engine
	decoder InputStarter
}

// New creates an unconfigured bridge. The composite renderer, input queue,
// and color table are the host facilities the bridge attaches to; they are
// passed explicitly rather than discovered through globals.
func New(renderer EngineRegistry, queue *input.Queue, table core.ColorTable, log zerolog.Logger) *VtIo {
	return &VtIo{
		renderer: renderer,
		queue:    queue,
		table:    table,
		log:      log.With().Str("bridge", uuid.NewString()).Logger(),
	}
}

// IsUsingVT reports whether Initialize has succeeded.
func (v *VtIo) IsUsingVT() bool {
	return v.usingVT
}

// Mode returns the resolved protocol mode, or ModeInvalid before a
// successful Initialize.
func (v *VtIo) Mode() Mode {
	return v.mode
}

// Initialize resolves the mode string, opens both pipes, and constructs
// the input decoder and render engine. The pipes must have been created
// and connected by the host's launcher already.
//
// Initialize is all-or-nothing: on any failure the bridge reverts to its
// unconfigured state with no handles open, and the error classifies the
// failure (ErrInvalidMode, *transport.PipeError, or ErrInternal).
func (v *VtIo) Initialize(inPipe, outPipe, modeText string) error {
	mode, err := ParseMode(modeText)
	if err != nil {
		v.mode = ModeInvalid
		return err
	}
	v.mode = mode

	pair, err := transport.OpenPipes(inPipe, outPipe)
	if err != nil {
		v.mode = ModeInvalid
		return err
	}

	in := pair.TakeInput()
	decoder, err := input.NewDecoder(in, v.queue, v.log)
	if err != nil {
		in.Close()
		pair.Close()
		v.mode = ModeInvalid
		return fmt.Errorf("%w: constructing input decoder: %v", ErrInternal, err)
	}

	out := pair.TakeOutput()
	engine, err := buildEngine(v.mode, out, v.table)
	if err != nil {
		out.Close()
		decoder.Close()
		v.mode = ModeInvalid
		return err
	}

	v.decoder = decoder
	v.engine = engine
	v.usingVT = true

	v.log.Info().
		Str("mode", v.mode.String()).
		Str("in", inPipe).
		Str("out", outPipe).
		Msg("vt bridge initialized")
	return nil
}

// StartIfNeeded attaches the render engine to the composite renderer and
// starts the input decoder's read loop. On an unconfigured bridge it is a
// deliberate no-op returning StatusSkipped: a host may legitimately run
// without a VT peer.
//
// Both effects must succeed; if engine registration fails the decoder is
// not started and the call fails with ErrInternal.
func (v *VtIo) StartIfNeeded() (Status, error) {
	if !v.usingVT {
		return StatusSkipped, nil
	}
	if v.started {
		return StatusSkipped, ErrAlreadyStarted
	}

	if err := v.renderer.AddEngine(v.engine); err != nil {
		return StatusSkipped, fmt.Errorf("%w: registering render engine: %v", ErrInternal, err)
	}

	v.decoder.Start()
	v.started = true

	v.log.Info().Str("mode", v.mode.String()).Msg("vt bridge started")
	return StatusStarted, nil
}
