package acquire

import (
	"fmt"
	"log/slog"
)

// RequestRing maintains the fixed set of fill requests, one per pool
// buffer, created once at stream setup and recycled for the life of the
// stream. The request population never grows or shrinks while the
// stream runs.
type RequestRing struct {
	cam      Camera
	inFlight int
	total    int
	logger   *slog.Logger
}

// NewRequestRing creates an empty ring bound to cam.
func NewRequestRing(cam Camera, logger *slog.Logger) *RequestRing {
	return &RequestRing{cam: cam, logger: logger}
}

// BuildAndSubmitAll creates one request per buffer index in [0, count)
// and queues each for filling. A mid-sequence failure returns
// immediately; requests already queued stay in flight and are reclaimed
// by stream teardown, not individually rolled back.
func (r *RequestRing) BuildAndSubmitAll(count int) error {
	for i := 0; i < count; i++ {
		req, err := r.cam.CreateRequest(i)
		if err != nil {
			return NewAcquireError(ErrCodeRequestBuildFailed,
				fmt.Sprintf("failed to create request for buffer %d", i), err)
		}
		if err := r.cam.QueueRequest(req); err != nil {
			return NewAcquireError(ErrCodeRequestBuildFailed,
				fmt.Sprintf("failed to queue request for buffer %d", i), err)
		}
		r.inFlight++
		r.total++
	}
	return nil
}

// DrainCompleted collects every request the device has completed since
// the last drain. Never blocks.
func (r *RequestRing) DrainCompleted() ([]Request, error) {
	ready, err := r.cam.ReadyRequests()
	if err != nil {
		return nil, fmt.Errorf("failed to collect completed requests: %w", err)
	}
	r.inFlight -= len(ready)
	return ready, nil
}

// Recycle resets a drained request and resubmits it, keeping the
// in-flight population constant across read cycles.
func (r *RequestRing) Recycle(req Request) error {
	if err := req.Reuse(); err != nil {
		return fmt.Errorf("failed to reset request %d: %w", req.BufferIndex(), err)
	}
	if err := r.cam.QueueRequest(req); err != nil {
		return fmt.Errorf("failed to requeue request %d: %w", req.BufferIndex(), err)
	}
	r.inFlight++
	return nil
}

// InFlight returns the number of requests currently queued with the
// device.
func (r *RequestRing) InFlight() int {
	return r.inFlight
}

// Total returns the number of requests ever built for this ring.
func (r *RequestRing) Total() int {
	return r.total
}
