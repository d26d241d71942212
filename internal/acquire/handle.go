package acquire

import (
	"fmt"
	"log/slog"
)

type handleState int

const (
	stateUnacquired handleState = iota
	stateAcquired
	stateConfigured
	stateStreaming
	stateStopped
)

// Handle owns one camera: its acquisition lifecycle and the negotiated
// stream configuration. Exactly one live stream per Handle.
type Handle struct {
	cam    Camera
	id     string
	cfg    *StreamConfig
	policy FormatPolicy
	state  handleState
	logger *slog.Logger
}

// OpenHandle resolves a camera by stable ID from the manager and
// exclusively locks it for the lifetime of the returned handle.
func OpenHandle(mgr Manager, deviceID string, logger *slog.Logger) (*Handle, error) {
	ids, err := mgr.Cameras()
	if err != nil {
		return nil, NewAcquireError(ErrCodeNoDevicesPresent, "failed to enumerate cameras", err)
	}
	if len(ids) == 0 {
		return nil, NewAcquireError(ErrCodeNoDevicesPresent, "no cameras identified on the system", nil)
	}

	cam, err := mgr.Get(deviceID)
	if err != nil || cam == nil {
		return nil, NewAcquireError(ErrCodeDeviceNotFound,
			fmt.Sprintf("camera ID %s not found", deviceID), err)
	}

	if err := cam.Acquire(); err != nil {
		return nil, NewAcquireError(ErrCodeDeviceNotFound,
			fmt.Sprintf("failed to acquire camera %s", deviceID), err)
	}

	return &Handle{
		cam:    cam,
		id:     deviceID,
		state:  stateAcquired,
		logger: logger,
	}, nil
}

// NegotiateDefaultStream asks the driver for a viewfinder configuration,
// keeps its suggested resolution, and selects the first advertised pixel
// format present in the supported-format table. The mutated
// configuration is re-validated by the driver; validation always
// produces some working configuration, so any result other than
// "unchanged" is treated as a rejection instead of silently accepting
// whatever the driver substituted.
func (h *Handle) NegotiateDefaultStream() (*StreamConfig, error) {
	cfg, err := h.cam.GenerateConfiguration(RoleViewfinder)
	if err != nil {
		return nil, NewAcquireError(ErrCodeConfigurationRejected, "failed to generate default configuration", err)
	}

	policy, ok := SelectFormat(cfg.Formats)
	if !ok {
		return nil, NewAcquireError(ErrCodeUnsupportedFormat,
			fmt.Sprintf("none of %d advertised formats are supported", len(cfg.Formats)), nil)
	}
	cfg.PixelFormat = policy.PixelFormat

	status, err := h.cam.Validate(cfg)
	if err != nil {
		return nil, NewAcquireError(ErrCodeConfigurationRejected, "validation failed", err)
	}
	if status != ValidateUnchanged {
		return nil, NewAcquireError(ErrCodeConfigurationRejected,
			fmt.Sprintf("driver adjusted configuration to %dx%d %s",
				cfg.Width, cfg.Height, FourCCString(cfg.PixelFormat)), nil)
	}

	if err := h.cam.Configure(cfg); err != nil {
		return nil, NewAcquireError(ErrCodeConfigurationRejected, "failed to configure camera", err)
	}

	h.cfg = cfg
	h.policy = policy
	h.state = stateConfigured
	h.logger.Debug("Negotiated stream",
		"device_id", h.id,
		"width", cfg.Width,
		"height", cfg.Height,
		"format", policy.Name)
	return cfg, nil
}

// StartStream begins capture. Starting an already-streaming handle is a
// no-op.
func (h *Handle) StartStream() error {
	if h.state == stateStreaming {
		return nil
	}
	if err := h.cam.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	h.state = stateStreaming
	return nil
}

// StopStream halts capture and releases hardware resources. Safe to
// call multiple times.
func (h *Handle) StopStream() error {
	if h.state != stateStreaming {
		return nil
	}
	if err := h.cam.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	h.state = stateStopped
	return nil
}

// Release stops the stream if running and gives the camera back. Safe
// to call even if acquisition only partially succeeded.
func (h *Handle) Release() error {
	if h.state == stateUnacquired {
		return nil
	}
	if h.state == stateStreaming {
		if err := h.cam.Stop(); err != nil {
			h.logger.Warn("Failed to stop stream during release", "device_id", h.id, "error", err)
		}
	}
	err := h.cam.Release()
	h.state = stateUnacquired
	return err
}

// Camera returns the underlying driver camera.
func (h *Handle) Camera() Camera {
	return h.cam
}

// Config returns the negotiated stream configuration, nil before
// negotiation.
func (h *Handle) Config() *StreamConfig {
	return h.cfg
}

// Policy returns the decode policy selected during negotiation.
func (h *Handle) Policy() FormatPolicy {
	return h.policy
}

// Streaming reports whether capture is currently running.
func (h *Handle) Streaming() bool {
	return h.state == stateStreaming
}
