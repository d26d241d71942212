// Package capture glues the acquisition core to its consumers: it grabs
// one grayscale frame from a device and shapes it as an image that can
// be encoded to PNG or PGM.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/smazurov/camgrab/internal/acquire"
	"github.com/smazurov/camgrab/internal/events"
	"github.com/smazurov/camgrab/internal/logging"
	"github.com/smazurov/camgrab/internal/metrics"
)

// Options controls a one-shot frame grab.
type Options struct {
	// DeviceID is the stable identifier of the camera to read from.
	DeviceID string

	// WaitTimeout bounds each completion wait attempt. Zero means the
	// acquisition default.
	WaitTimeout time.Duration

	// EventBus, when set, receives FrameCaptured and CaptureError
	// events for the grab.
	EventBus *events.Bus
}

// Result is one captured grayscale frame.
type Result struct {
	DeviceID string
	Width    uint32
	Height   uint32
	Gray     *image.Gray
}

// GrabFrame acquires the device, reads a single frame, and releases the
// device again. The returned frame owns its pixel data.
func GrabFrame(mgr acquire.Manager, opts Options) (*Result, error) {
	logger := logging.GetLogger("capture").With("device_id", opts.DeviceID)
	start := time.Now()

	readerOpts := []acquire.Option{
		acquire.WithLogger(logger),
		acquire.WithWaitRetryHook(func() {
			metrics.IncWaitRetry(opts.DeviceID)
		}),
	}
	if opts.WaitTimeout > 0 {
		readerOpts = append(readerOpts, acquire.WithWaitTimeout(opts.WaitTimeout))
	}

	reader, err := acquire.NewReader(mgr, opts.DeviceID, readerOpts...)
	if err != nil {
		reportError(opts, err)
		return nil, fmt.Errorf("failed to open device %s: %w", opts.DeviceID, err)
	}
	defer func() {
		wasRecording := reader.Recording()
		if releaseErr := reader.Release(); releaseErr != nil {
			logger.Warn("Failed to release device", "error", releaseErr)
		}
		if wasRecording {
			metrics.SetRequestsInFlight(opts.DeviceID, 0)
			publishState(opts, false)
		}
	}()

	if err := reader.Record(); err != nil {
		reportError(opts, err)
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}
	metrics.SetRequestsInFlight(opts.DeviceID, reader.InFlight())
	publishState(opts, true)

	frame, err := reader.ReadCopy()
	if err != nil {
		reportError(opts, err)
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	width, height := reader.Width(), reader.Height()
	result := &Result{
		DeviceID: opts.DeviceID,
		Width:    width,
		Height:   height,
		Gray: &image.Gray{
			Pix:    frame,
			Stride: int(width),
			Rect:   image.Rect(0, 0, int(width), int(height)),
		},
	}

	metrics.IncFramesCaptured(opts.DeviceID)
	metrics.ObserveReadDuration(opts.DeviceID, time.Since(start).Seconds())
	if opts.EventBus != nil {
		opts.EventBus.Publish(events.FrameCapturedEvent{
			DeviceID:  opts.DeviceID,
			Width:     width,
			Height:    height,
			Bytes:     len(frame),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	logger.Info("Frame captured", "width", width, "height", height, "bytes", len(frame))
	return result, nil
}

func publishState(opts Options, streaming bool) {
	if opts.EventBus == nil {
		return
	}
	opts.EventBus.Publish(events.CaptureStateChangedEvent{
		DeviceID:  opts.DeviceID,
		Streaming: streaming,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func reportError(opts Options, err error) {
	code := acquire.CodeOf(err)
	metrics.IncCaptureError(opts.DeviceID, code)
	if opts.EventBus != nil {
		opts.EventBus.Publish(events.CaptureErrorEvent{
			DeviceID:  opts.DeviceID,
			Code:      code,
			Error:     err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// EncodePNG writes the frame as a grayscale PNG.
func (r *Result) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Gray)
}

// EncodePGM writes the frame as a binary PGM (P5) image, the rawest
// portable container for 8-bit luma data.
func (r *Result) EncodePGM(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", r.Width, r.Height); err != nil {
		return err
	}
	_, err := w.Write(r.Gray.Pix)
	return err
}
