//go:build linux

package v4l2

// DeviceInfo contains information about a V4L2 device.
type DeviceInfo struct {
	DevicePath string
	DeviceName string
	DeviceID   string // Stable identifier (from /dev/v4l/by-id/ or synthetic)
	Caps       uint32
}

// FormatInfo contains information about a supported pixel format.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	Emulated    bool
}

// PixFormat describes one single-planar capture format.
type PixFormat struct {
	Width        uint32
	Height       uint32
	PixelFormat  uint32
	BytesPerLine uint32
	SizeImage    uint32
}

// Capability flags.
const (
	v4l2CapVideoCapture = 0x00000001
	v4l2CapStreaming    = 0x04000000
	v4l2CapDeviceCaps   = 0x80000000
)

// Format flags.
const (
	v4l2FmtFlagEmulated = 0x0002
)

// Common pixel formats.
const (
	PixFmtYUYV  = 0x56595559 // 'YUYV'
	PixFmtMJPEG = 0x47504A4D // 'MJPG'
	PixFmtNV12  = 0x3231564E // 'NV12'
	PixFmtYU12  = 0x32315559 // 'YU12' (I420)
	PixFmtGREY  = 0x59455247 // 'GREY'
)

// Buffer type and memory mode.
const (
	v4l2BufTypeVideoCapture = 1
	v4l2MemoryMmap          = 1
	v4l2FieldNone           = 1
)

// FourCC converts a 4-byte pixel format to a human-readable string.
func FourCC(format uint32) string {
	b := make([]byte, 4)
	b[0] = byte(format & 0xFF)
	b[1] = byte((format >> 8) & 0xFF)
	b[2] = byte((format >> 16) & 0xFF)
	b[3] = byte((format >> 24) & 0xFF)
	return string(b)
}
