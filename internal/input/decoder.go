package input

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/vtbridge/internal/input/key"
)

// ErrNilPipe indicates a decoder was constructed without an input pipe.
var ErrNilPipe = errors.New("nil input pipe")

// ErrNilQueue indicates a decoder was constructed without a queue.
var ErrNilQueue = errors.New("nil input queue")

// Decoder reads VT sequences from an exclusively owned input pipe and
// publishes decoded key events to the host input queue. The read loop runs
// on its own goroutine for the lifetime of the pipe; there is no
// cancellation beyond closing the pipe.
type Decoder struct {
	r       io.ReadCloser
	queue   *Queue
	log     zerolog.Logger
	started atomic.Bool
	done    chan struct{}
}

// NewDecoder creates a decoder owning the given input pipe.
func NewDecoder(r io.ReadCloser, queue *Queue, log zerolog.Logger) (*Decoder, error) {
	if r == nil {
		return nil, ErrNilPipe
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &Decoder{
		r:     r,
		queue: queue,
		log:   log,
		done:  make(chan struct{}),
	}, nil
}

// Start launches the read loop on its own goroutine. Returns true if the
// loop was started, false if it was already running.
func (d *Decoder) Start() bool {
	if d.started.Swap(true) {
		return false
	}
	go d.loop()
	return true
}

// Close closes the input pipe, which unblocks and ends the read loop.
func (d *Decoder) Close() error {
	return d.r.Close()
}

// Done returns a channel closed when the read loop has exited.
func (d *Decoder) Done() <-chan struct{} {
	return d.done
}

func (d *Decoder) loop() {
	defer close(d.done)
	defer d.r.Close()

	buf := make([]byte, 4096)
	var pending []byte

	for {
		n, err := d.r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			pending = d.drain(pending)
		}
		if err != nil {
			for _, ev := range key.Flush(pending) {
				d.queue.Post(ev)
			}
			if !errors.Is(err, io.EOF) {
				d.log.Warn().Err(err).Msg("input pipe read failed")
			}
			d.log.Debug().Msg("input read loop ended")
			return
		}
	}
}

// drain decodes and posts every complete sequence in pending, returning
// the undecoded tail.
func (d *Decoder) drain(pending []byte) []byte {
	for len(pending) > 0 {
		ev, n, err := key.DecodeSequence(pending)
		switch {
		case err == nil:
			if !d.queue.Post(ev) {
				d.log.Warn().Str("event", ev.String()).Msg("input queue full, event dropped")
			}
			pending = pending[n:]
		case errors.Is(err, key.ErrIncomplete):
			return pending
		default:
			d.log.Debug().Int("len", n).Msg("skipping unrecognized input sequence")
			pending = pending[n:]
		}
	}
	return nil
}
