package vtio

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/vtbridge/internal/input"
	"github.com/dshills/vtbridge/internal/input/key"
	"github.com/dshills/vtbridge/internal/render"
	"github.com/dshills/vtbridge/internal/render/core"
	"github.com/dshills/vtbridge/internal/transport"
)

// fakeRegistry records engine registrations.
type fakeRegistry struct {
	engines []render.Engine
	fail    error
}

func (r *fakeRegistry) AddEngine(e render.Engine) error {
	if r.fail != nil {
		return r.fail
	}
	r.engines = append(r.engines, e)
	return nil
}

// fakeStarter records start calls.
type fakeStarter struct {
	starts int
}

func (s *fakeStarter) Start() bool {
	s.starts++
	return s.starts == 1
}

// pipePair creates both FIFOs and opens their peer ends in the
// background, standing in for the launcher-created terminal peer. The
// peer's ends stay open for the duration of the test.
func pipePair(t *testing.T) (inPath, outPath string) {
	t.Helper()

	dir := t.TempDir()
	inPath = filepath.Join(dir, "vt-in")
	outPath = filepath.Join(dir, "vt-out")
	for _, p := range []string{inPath, outPath} {
		if err := syscall.Mkfifo(p, 0600); err != nil {
			t.Fatalf("mkfifo %s: %v", p, err)
		}
	}

	done := make(chan *os.File, 2)
	go func() {
		f, _ := os.OpenFile(inPath, os.O_WRONLY, 0)
		done <- f
	}()
	go func() {
		f, _ := os.OpenFile(outPath, os.O_RDONLY, 0)
		done <- f
	}()
	t.Cleanup(func() {
		for i := 0; i < 2; i++ {
			select {
			case f := <-done:
				if f != nil {
					f.Close()
				}
			case <-time.After(2 * time.Second):
				return
			}
		}
	})

	return inPath, outPath
}

func newBridge(reg EngineRegistry, q *input.Queue) *VtIo {
	return New(reg, q, core.DefaultColorTable(), zerolog.Nop())
}

func TestStartIfNeededUnconfigured(t *testing.T) {
	reg := &fakeRegistry{}
	v := newBridge(reg, input.NewQueue(8))

	status, err := v.StartIfNeeded()
	if err != nil {
		t.Fatalf("StartIfNeeded failed: %v", err)
	}
	if status != StatusSkipped {
		t.Errorf("status = %v, want skipped", status)
	}
	if len(reg.engines) != 0 {
		t.Error("unconfigured bridge must not register an engine")
	}
}

func TestInitializeRejectsModeBeforeOpeningPipes(t *testing.T) {
	v := newBridge(&fakeRegistry{}, input.NewQueue(8))

	// The pipe names point nowhere: if resolution failed after
	// acquisition, this would surface a PipeError instead.
	err := v.Initialize("/nonexistent/in", "/nonexistent/out", "")
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("Initialize = %v, want ErrInvalidMode", err)
	}

	var pe *transport.PipeError
	if errors.As(err, &pe) {
		t.Error("mode resolution must precede pipe acquisition")
	}
	if v.IsUsingVT() {
		t.Error("bridge must stay unconfigured after a failed Initialize")
	}
	if v.Mode() != ModeInvalid {
		t.Errorf("Mode() = %v, want ModeInvalid", v.Mode())
	}
}

func TestInitializeMissingInputPipe(t *testing.T) {
	dir := t.TempDir()
	v := newBridge(&fakeRegistry{}, input.NewQueue(8))

	err := v.Initialize(filepath.Join(dir, "absent-in"), filepath.Join(dir, "absent-out"), "xterm-256color")

	var pe *transport.PipeError
	if !errors.As(err, &pe) {
		t.Fatalf("Initialize = %v, want *transport.PipeError", err)
	}
	if pe.Errno() == 0 {
		t.Error("PipeError should carry a non-zero platform error code")
	}
	if v.IsUsingVT() {
		t.Error("bridge must stay unconfigured after a failed Initialize")
	}
	if v.Mode() != ModeInvalid {
		t.Errorf("Mode() = %v, want ModeInvalid", v.Mode())
	}
}

func TestInitializeReleasesPipesOnDecoderFailure(t *testing.T) {
	inPath, outPath := pipePair(t)

	// A nil queue makes decoder construction fail after both pipes
	// have been acquired.
	v := New(&fakeRegistry{}, nil, core.DefaultColorTable(), zerolog.Nop())

	err := v.Initialize(inPath, outPath, "xterm")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("Initialize = %v, want ErrInternal", err)
	}
	if v.IsUsingVT() {
		t.Error("bridge must stay unconfigured after a failed Initialize")
	}

	// With the bridge's read end released, a nonblocking write-open of
	// the input FIFO finds no reader.
	fd, err := syscall.Open(inPath, syscall.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err == nil {
		syscall.Close(fd)
		t.Error("input pipe still held open after failed Initialize")
	} else if err != syscall.ENXIO {
		t.Errorf("nonblocking open = %v, want ENXIO", err)
	}
}

func TestInitializeAndStart(t *testing.T) {
	inPath, outPath := pipePair(t)
	reg := &fakeRegistry{}
	q := input.NewQueue(8)
	v := newBridge(reg, q)

	if err := v.Initialize(inPath, outPath, "default"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !v.IsUsingVT() {
		t.Error("IsUsingVT() should be true after Initialize")
	}
	// The default literal resolves to the richest variant.
	if v.Mode() != ModeXterm256 {
		t.Errorf("Mode() = %v, want ModeXterm256", v.Mode())
	}

	status, err := v.StartIfNeeded()
	if err != nil {
		t.Fatalf("StartIfNeeded failed: %v", err)
	}
	if status != StatusStarted {
		t.Errorf("status = %v, want started", status)
	}
	if len(reg.engines) != 1 {
		t.Fatalf("registered %d engines, want 1", len(reg.engines))
	}
}

func TestDoubleStartGuard(t *testing.T) {
	reg := &fakeRegistry{}
	v := newBridge(reg, input.NewQueue(8))
	starter := &fakeStarter{}

	// Configure the bridge directly; the pipes are irrelevant to the
	// double-start guard.
	v.usingVT = true
	v.mode = ModeXterm256
	v.engine = &nopEngine{}
	v.decoder = starter

	if status, err := v.StartIfNeeded(); err != nil || status != StatusStarted {
		t.Fatalf("first StartIfNeeded = (%v, %v)", status, err)
	}
	if _, err := v.StartIfNeeded(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second StartIfNeeded = %v, want ErrAlreadyStarted", err)
	}

	if len(reg.engines) != 1 {
		t.Errorf("registered %d engines, want 1", len(reg.engines))
	}
	if starter.starts != 1 {
		t.Errorf("decoder started %d times, want 1", starter.starts)
	}
}

func TestRegistrationFailureLeavesDecoderStopped(t *testing.T) {
	reg := &fakeRegistry{fail: errors.New("renderer shut down")}
	v := newBridge(reg, input.NewQueue(8))
	starter := &fakeStarter{}

	v.usingVT = true
	v.mode = ModeXterm
	v.engine = &nopEngine{}
	v.decoder = starter

	_, err := v.StartIfNeeded()
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("StartIfNeeded = %v, want ErrInternal", err)
	}
	if starter.starts != 0 {
		t.Error("decoder must not start when registration fails")
	}
}

func TestBridgeDeliversDecodedInput(t *testing.T) {
	inPath, outPath := pipePair(t)
	q := input.NewQueue(8)
	v := newBridge(&fakeRegistry{}, q)

	if err := v.Initialize(inPath, outPath, "xterm-256color"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := v.StartIfNeeded(); err != nil {
		t.Fatalf("StartIfNeeded failed: %v", err)
	}

	peer, err := os.OpenFile(inPath, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open peer end: %v", err)
	}
	defer peer.Close()

	if _, err := peer.Write([]byte("\x1b[B")); err != nil {
		t.Fatalf("peer write failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if ev, ok := q.TryPoll(); ok {
			if ev.Key != key.KeyDown {
				t.Fatalf("event = %+v, want Down", ev)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for decoded event")
		case <-time.After(time.Millisecond):
		}
	}
}

// nopEngine satisfies render.Engine for coordinator tests.
type nopEngine struct{}

func (*nopEngine) WriteFrame(render.Frame) error { return nil }
func (*nopEngine) SetCursor(int, int) error      { return nil }
func (*nopEngine) Clear() error                  { return nil }
func (*nopEngine) Close() error                  { return nil }
