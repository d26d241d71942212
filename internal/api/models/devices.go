package models

import (
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
)

// VideoFormat represents supported video format names
type VideoFormat string

// Single source of truth - all definitions here
const (
	FormatYUYV422 VideoFormat = "yuyv422"
	FormatNV12    VideoFormat = "nv12"
	FormatMJPEG   VideoFormat = "mjpeg"
	FormatH264    VideoFormat = "h264"
	FormatYU12    VideoFormat = "yu12"
	FormatYV12    VideoFormat = "yv12"
	FormatNV16    VideoFormat = "nv16" // Y/UV 4:2:2 (half chroma)
	FormatGREY    VideoFormat = "grey" // 8-bit luma only
)

// Pixel format mappings - single source of truth
var videoFormatToPixelFormat = map[VideoFormat]uint32{
	FormatYUYV422: 1448695129, // YUYV
	FormatNV12:    842094158,  // NV12
	FormatMJPEG:   1196444237, // MJPEG
	FormatH264:    875967048,  // H264
	FormatYU12:    842093913,  // YU12/I420
	FormatYV12:    842094169,  // YV12
	FormatNV16:    909203022,  // NV16
	FormatGREY:    1497715271, // GREY
}

// Implement SchemaProvider for dynamic enum validation
func (VideoFormat) Schema(r huma.Registry) *huma.Schema {
	enumValues := make([]any, 0, len(videoFormatToPixelFormat))
	for format := range videoFormatToPixelFormat {
		enumValues = append(enumValues, string(format))
	}

	return &huma.Schema{
		Type:        huma.TypeString,
		Enum:        enumValues,
		Description: "Supported video format names",
	}
}

// Utility methods derived from the map
func (vf VideoFormat) ToPixelFormat() (uint32, error) {
	if pf, exists := videoFormatToPixelFormat[vf]; exists {
		return pf, nil
	}
	return 0, fmt.Errorf("unsupported format: %s", vf)
}

func (vf VideoFormat) IsValid() bool {
	_, exists := videoFormatToPixelFormat[vf]
	return exists
}

// PixelFormatToHumanReadable converts V4L2 pixel format codes to human-readable names
func PixelFormatToHumanReadable(pixelFormat uint32) string {
	for format, code := range videoFormatToPixelFormat {
		if code == pixelFormat {
			return string(format)
		}
	}

	logger := slog.With("component", "device_models")
	logger.Warn("Unknown pixel format code", "pixel_format", pixelFormat)
	return "unknown"
}

// DeviceInfo represents a video device with snake_case fields
type DeviceInfo struct {
	DevicePath   string   `json:"device_path" example:"/dev/video0" doc:"System device path"`
	DeviceName   string   `json:"device_name" example:"USB Camera" doc:"Device name"`
	DeviceID     string   `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Caps         uint32   `json:"caps" example:"84000001" doc:"Raw V4L2 capability flags"`
	Capabilities []string `json:"capabilities" example:"[\"Video Capture\", \"Streaming I/O\"]" doc:"Device capabilities"`
}

// FormatInfo represents a video format with human-readable format names and snake_case fields
type FormatInfo struct {
	FormatName   string `json:"format_name" example:"nv12" doc:"Human-readable format name"`
	OriginalName string `json:"original_name" example:"Y/UV 4:2:0" doc:"Original V4L2 format name"`
	Emulated     bool   `json:"emulated" example:"false" doc:"Whether format is emulated"`
	Supported    bool   `json:"supported" example:"true" doc:"Whether the frame grabber can read this format"`
}

// Device API response models
type DeviceData struct {
	Devices []DeviceInfo `json:"devices" doc:"List of available video devices"`
	Count   int          `json:"count" example:"2" doc:"Number of devices found"`
}

type DeviceResponse struct {
	Body DeviceData
}

type DeviceFormatsData struct {
	DeviceID string       `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Formats  []FormatInfo `json:"formats" doc:"Supported video formats"`
}

type DeviceFormatsResponse struct {
	Body DeviceFormatsData
}
