package acquire

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultWaitTimeout is the per-attempt completion wait. A timeout is
// not an error; the caller retries until a frame arrives.
const DefaultWaitTimeout = 5 * time.Second

// CompletionWaiter blocks on the driver's completion-notification
// descriptor until at least one request has finished, polling in
// bounded attempts so a stalled device surfaces as visible retries
// instead of an unbounded silent block.
type CompletionWaiter struct {
	fd      int
	timeout time.Duration

	// OnTimeout, when set, runs after each attempt that expires without
	// a completion.
	OnTimeout func()
}

// NewCompletionWaiter wraps the descriptor fd. A non-positive timeout
// falls back to DefaultWaitTimeout.
func NewCompletionWaiter(fd int, timeout time.Duration) *CompletionWaiter {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &CompletionWaiter{fd: fd, timeout: timeout}
}

// Wait blocks until the descriptor signals readability, retrying
// indefinitely across timeouts. Only a poll failure is an error.
func (w *CompletionWaiter) Wait() error {
	fds := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
	timeoutMs := int(w.timeout.Milliseconds())

	for {
		fds[0].Revents = 0
		n, err := unix.Poll(fds, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("failed to wait for frame completion: %w", err)
		}
		if n > 0 {
			return nil
		}
		if w.OnTimeout != nil {
			w.OnTimeout()
		}
	}
}
