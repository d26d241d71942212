package events

import "github.com/smazurov/camgrab/internal/api/models"

// Event type constants for kelindar/event.
const (
	TypeFrameCaptured uint32 = iota + 1
	TypeCaptureError
	TypeDeviceDiscovery
	TypeCaptureStateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// FrameCapturedEvent represents a successfully acquired frame.
type FrameCapturedEvent struct {
	DeviceID  string `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Width     uint32 `json:"width" example:"640" doc:"Frame width in pixels"`
	Height    uint32 `json:"height" example:"480" doc:"Frame height in pixels"`
	Bytes     int    `json:"bytes" example:"307200" doc:"Frame payload size"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Capture timestamp"`
}

// Type returns the event type identifier for FrameCapturedEvent.
func (e FrameCapturedEvent) Type() uint32 { return TypeFrameCaptured }

// CaptureErrorEvent represents a failed frame acquisition.
type CaptureErrorEvent struct {
	DeviceID  string `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Code      string `json:"code" example:"UNSUPPORTED_FORMAT" doc:"Acquisition error code"`
	Error     string `json:"error" example:"none of 3 advertised formats are supported" doc:"Detailed error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Error timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }

// DeviceDiscoveryEvent represents device hotplug events.
type DeviceDiscoveryEvent struct {
	models.DeviceInfo
	Action    string `json:"action" example:"added" doc:"Action type: added, removed, changed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDiscoveryEvent.
func (e DeviceDiscoveryEvent) Type() uint32 { return TypeDeviceDiscovery }

// CaptureStateChangedEvent represents a change in a reader's streaming state.
type CaptureStateChangedEvent struct {
	DeviceID  string `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Streaming bool   `json:"streaming" example:"true" doc:"Whether the device is streaming"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureStateChangedEvent.
func (e CaptureStateChangedEvent) Type() uint32 { return TypeCaptureStateChanged }
