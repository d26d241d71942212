package acquire

import (
	"fmt"
	"log/slog"
	"time"
)

// Option configures a Reader.
type Option func(*Reader)

// WithWaitTimeout sets the per-attempt completion wait. Timeouts are
// retried, not surfaced, so this bounds how often a stalled device is
// logged rather than how long a read may take.
func WithWaitTimeout(d time.Duration) Option {
	return func(r *Reader) { r.waitTimeout = d }
}

// WithLogger sets the logger used by the reader and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

// WithWaitRetryHook registers a callback invoked every time a wait
// attempt expires without a completed frame.
func WithWaitRetryHook(hook func()) Option {
	return func(r *Reader) { r.retryHook = hook }
}

// Reader exposes a camera's request/completion pipeline as a
// synchronous pull interface: construct, then call Read for one
// grayscale frame at a time. Not safe for concurrent use.
type Reader struct {
	handle *Handle
	pool   *BufferPool
	ring   *RequestRing
	waiter *CompletionWaiter

	cfg    *StreamConfig
	policy FormatPolicy

	waitTimeout time.Duration
	retryHook   func()
	logger      *slog.Logger

	recording bool
	released  bool
}

// NewReader acquires the camera identified by deviceID, negotiates the
// default stream, and prepares buffers and mappings. The camera is held
// exclusively until Release. Setup failures tear down whatever was
// built before returning.
func NewReader(mgr Manager, deviceID string, opts ...Option) (*Reader, error) {
	r := &Reader{
		waitTimeout: DefaultWaitTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	handle, err := OpenHandle(mgr, deviceID, r.logger)
	if err != nil {
		return nil, err
	}
	r.handle = handle

	cfg, err := handle.NegotiateDefaultStream()
	if err != nil {
		_ = handle.Release()
		return nil, err
	}
	r.cfg = cfg
	r.policy = handle.Policy()

	r.pool = NewBufferPool(handle.Camera(), r.logger)
	if _, err := r.pool.Allocate(); err != nil {
		_ = handle.Release()
		return nil, err
	}
	if err := r.pool.MapAll(); err != nil {
		_ = r.pool.Release()
		_ = handle.Release()
		return nil, err
	}

	r.ring = NewRequestRing(handle.Camera(), r.logger)
	r.logger.Info("Camera ready",
		"device_id", deviceID,
		"width", cfg.Width,
		"height", cfg.Height,
		"format", r.policy.Name,
		"buffers", r.pool.Count())
	return r, nil
}

// Width returns the negotiated frame width in pixels.
func (r *Reader) Width() uint32 {
	return r.cfg.Width
}

// Height returns the negotiated frame height in pixels.
func (r *Reader) Height() uint32 {
	return r.cfg.Height
}

// FrameSize returns the byte length of frames returned by Read.
func (r *Reader) FrameSize() int {
	return int(r.cfg.Width) * int(r.cfg.Height) * r.policy.BytesPerPixel
}

// Recording reports whether the stream has been started.
func (r *Reader) Recording() bool {
	return r.recording
}

// InFlight returns how many requests are currently queued with the
// driver: zero before Record and after Release.
func (r *Reader) InFlight() int {
	if r.released || !r.recording {
		return 0
	}
	return r.ring.InFlight()
}

// Record submits the initial request population and starts the stream.
// Calling Record on a reader that is already recording is a no-op.
func (r *Reader) Record() error {
	if r.released {
		return fmt.Errorf("reader already released")
	}
	if r.recording {
		return nil
	}

	if err := r.ring.BuildAndSubmitAll(r.pool.Count()); err != nil {
		return err
	}
	if err := r.handle.StartStream(); err != nil {
		return err
	}

	r.waiter = NewCompletionWaiter(r.handle.Camera().EventFd(), r.waitTimeout)
	r.waiter.OnTimeout = func() {
		r.logger.Warn("Still waiting for a frame",
			"device_id", r.handle.id,
			"timeout", r.waitTimeout)
		if r.retryHook != nil {
			r.retryHook()
		}
	}

	r.recording = true
	return nil
}

// Read blocks until the device delivers at least one frame, returns the
// grayscale payload of the oldest completion, and recycles every
// drained request so the in-flight population stays constant. The
// returned slice aliases a mapped buffer the device will overwrite; it
// is valid only until the next Read or Release. Use ReadCopy to retain
// a frame.
func (r *Reader) Read() ([]byte, error) {
	if r.released {
		return nil, fmt.Errorf("reader already released")
	}
	if !r.recording {
		if err := r.Record(); err != nil {
			return nil, err
		}
	}

	var completed []Request
	for {
		if err := r.waiter.Wait(); err != nil {
			return nil, err
		}
		drained, err := r.ring.DrainCompleted()
		if err != nil {
			return nil, err
		}
		if len(drained) > 0 {
			completed = drained
			break
		}
	}

	frame, err := r.extract(completed[0])
	if err != nil {
		return nil, err
	}

	for _, req := range completed {
		if rerr := r.ring.Recycle(req); rerr != nil {
			return nil, rerr
		}
	}
	return frame, nil
}

// ReadCopy is Read with the payload copied into fresh memory, safe to
// retain across subsequent reads.
func (r *Reader) ReadCopy() ([]byte, error) {
	frame, err := r.Read()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	return out, nil
}

// extract cuts the frame payload out of the request's buffer according
// to the negotiated decode policy.
func (r *Reader) extract(req Request) ([]byte, error) {
	if n := req.BufferCount(); n != r.policy.Planes {
		return nil, NewAcquireError(ErrCodeUnsupportedBufferLayout,
			fmt.Sprintf("request carries %d buffers, expected %d", n, r.policy.Planes), nil)
	}
	plane, ok := r.pool.Plane(req.BufferIndex())
	if !ok {
		return nil, NewAcquireError(ErrCodeUnsupportedBufferLayout,
			fmt.Sprintf("no mapping for buffer %d", req.BufferIndex()), nil)
	}
	return r.policy.Extract(plane, r.cfg.Width, r.cfg.Height), nil
}

// Release stops the stream, unmaps and frees the buffers, and gives the
// camera back. Safe to call more than once and after partial setup.
func (r *Reader) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	r.recording = false

	var firstErr error
	if err := r.handle.StopStream(); err != nil {
		firstErr = err
	}
	if err := r.pool.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := r.handle.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
