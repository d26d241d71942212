//go:build linux

package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"

	"github.com/smazurov/camgrab/internal/acquire"
	"github.com/smazurov/camgrab/pkg/linuxav/v4l2"
)

// requestedBuffers is the buffer count asked of the driver. The driver
// may grant fewer; the granted count is authoritative.
const requestedBuffers = 4

// Camera adapts one V4L2 device to the acquisition driver contract.
// A fill request is a queued buffer slot: queueing a request is QBUF,
// draining completions is DQBUF until the queue is empty, and the
// device descriptor doubles as the completion-notification descriptor.
type Camera struct {
	id       string
	path     string
	dev      *v4l2.Device
	pix      v4l2.PixFormat
	mappings map[int][]byte
	logger   *slog.Logger
}

// Acquire opens the device node. V4L2 has no separate reservation
// step; holding the descriptor is the exclusive claim.
func (c *Camera) Acquire() error {
	dev, err := v4l2.Open(c.path)
	if err != nil {
		return err
	}
	c.dev = dev
	return nil
}

// Release closes the device node, dropping the claim.
func (c *Camera) Release() error {
	if c.dev == nil {
		return nil
	}
	err := c.dev.Close()
	c.dev = nil
	return err
}

// GenerateConfiguration reports the driver's current format as the
// suggested configuration, plus every pixel format the device
// advertises in driver order.
func (c *Camera) GenerateConfiguration(role acquire.StreamRole) (*acquire.StreamConfig, error) {
	pix, err := c.dev.Format()
	if err != nil {
		return nil, err
	}

	formats, err := c.dev.Formats()
	if err != nil {
		return nil, err
	}
	fourccs := make([]uint32, 0, len(formats))
	for _, f := range formats {
		fourccs = append(fourccs, f.PixelFormat)
	}

	return &acquire.StreamConfig{
		Width:       pix.Width,
		Height:      pix.Height,
		PixelFormat: pix.PixelFormat,
		Formats:     fourccs,
	}, nil
}

// Validate runs TRY_FMT. When the driver substitutes values the
// configuration is rewritten in place and the adjustment is reported.
func (c *Camera) Validate(cfg *acquire.StreamConfig) (acquire.ValidateStatus, error) {
	pix := v4l2.PixFormat{
		Width:       cfg.Width,
		Height:      cfg.Height,
		PixelFormat: cfg.PixelFormat,
	}
	adjusted, err := c.dev.TryFormat(&pix)
	if err != nil {
		return acquire.ValidateInvalid, err
	}
	if adjusted {
		cfg.Width = pix.Width
		cfg.Height = pix.Height
		cfg.PixelFormat = pix.PixelFormat
		return acquire.ValidateAdjusted, nil
	}
	return acquire.ValidateUnchanged, nil
}

// Configure applies the validated format with S_FMT.
func (c *Camera) Configure(cfg *acquire.StreamConfig) error {
	pix := v4l2.PixFormat{
		Width:       cfg.Width,
		Height:      cfg.Height,
		PixelFormat: cfg.PixelFormat,
	}
	if err := c.dev.SetFormat(&pix); err != nil {
		return err
	}
	if pix.Width != cfg.Width || pix.Height != cfg.Height || pix.PixelFormat != cfg.PixelFormat {
		return fmt.Errorf("driver replaced validated format with %dx%d %s",
			pix.Width, pix.Height, v4l2.FourCC(pix.PixelFormat))
	}
	c.pix = pix
	return nil
}

// AllocateBuffers requests mmap-able buffers and returns the count the
// driver actually granted.
func (c *Camera) AllocateBuffers() (int, error) {
	granted, err := c.dev.RequestBuffers(requestedBuffers)
	if err != nil {
		return 0, err
	}
	return int(granted), nil
}

// MapBuffer maps buffer index into the process address space.
func (c *Camera) MapBuffer(index int) ([]byte, error) {
	offset, length, err := c.dev.QueryBuffer(uint32(index))
	if err != nil {
		return nil, err
	}
	data, err := c.dev.Mmap(offset, length)
	if err != nil {
		return nil, err
	}
	c.mappings[index] = data
	return data, nil
}

// UnmapBuffer releases the mapping for buffer index.
func (c *Camera) UnmapBuffer(index int) error {
	data, ok := c.mappings[index]
	if !ok {
		return nil
	}
	delete(c.mappings, index)
	return c.dev.Munmap(data)
}

// FreeBuffers releases the driver-side allocation. Requesting zero
// buffers frees a previous allocation.
func (c *Camera) FreeBuffers() error {
	_, err := c.dev.RequestBuffers(0)
	return err
}

// CreateRequest builds a fill request for buffer index. A V4L2 request
// is just the buffer slot; there is no driver object to construct.
func (c *Camera) CreateRequest(index int) (acquire.Request, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid buffer index %d", index)
	}
	return &request{index: index}, nil
}

// QueueRequest queues the request's buffer to be filled.
func (c *Camera) QueueRequest(req acquire.Request) error {
	return c.dev.Queue(uint32(req.BufferIndex()))
}

// ReadyRequests dequeues every completed buffer without blocking.
func (c *Camera) ReadyRequests() ([]acquire.Request, error) {
	var ready []acquire.Request
	for {
		index, bytesused, err := c.dev.Dequeue()
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				return ready, nil
			}
			return ready, err
		}
		c.logger.Debug("Dequeued buffer", "index", index, "bytes", bytesused)
		ready = append(ready, &request{index: int(index)})
	}
}

// Start begins streaming.
func (c *Camera) Start() error {
	return c.dev.StreamOn()
}

// Stop halts streaming and reclaims all in-flight buffers.
func (c *Camera) Stop() error {
	return c.dev.StreamOff()
}

// EventFd returns the device descriptor, readable whenever a filled
// buffer can be dequeued.
func (c *Camera) EventFd() int {
	return c.dev.Fd()
}

// request is a fill request bound to one buffer slot.
type request struct {
	index int
}

func (r *request) BufferIndex() int { return r.index }

// BufferCount is always one: the single-planar capture path attaches
// exactly one buffer per request.
func (r *request) BufferCount() int { return 1 }

// Reuse is a no-op; requeueing the buffer is the reset.
func (r *request) Reuse() error { return nil }
