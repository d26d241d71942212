//go:build darwin

package devices

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smazurov/camgrab/internal/api/models"
	"github.com/smazurov/camgrab/internal/logging"
)

// DarwinDeviceDetector returns mock devices for development on macOS.
// Real capture requires Linux.
type DarwinDeviceDetector struct {
	logger *slog.Logger
}

// NewDeviceDetector creates a detector for the current platform.
func NewDeviceDetector() DeviceDetector {
	return &DarwinDeviceDetector{
		logger: logging.GetLogger("devices"),
	}
}

// FindDevices returns a fixed mock device list.
func (d *DarwinDeviceDetector) FindDevices() ([]models.DeviceInfo, error) {
	d.logger.Debug("Returning mock devices (darwin)")
	return []models.DeviceInfo{
		{
			DevicePath:   "/dev/mock-video0",
			DeviceName:   "Mock Camera",
			DeviceID:     "mock-camera-video-index0",
			Caps:         capVideoCapture | capStreaming,
			Capabilities: translateCapabilities(capVideoCapture | capStreaming),
		},
	}, nil
}

// GetDeviceFormats returns mock formats for the mock device.
func (d *DarwinDeviceDetector) GetDeviceFormats(devicePath string) ([]models.FormatInfo, error) {
	if devicePath != "/dev/mock-video0" {
		return nil, fmt.Errorf("device %s not found", devicePath)
	}
	return []models.FormatInfo{
		{FormatName: "nv12", OriginalName: "Y/UV 4:2:0", Supported: true},
		{FormatName: "yuyv422", OriginalName: "YUYV 4:2:2", Supported: false},
	}, nil
}

// GetDevicePathByID resolves the mock device ID.
func (d *DarwinDeviceDetector) GetDevicePathByID(deviceID string) (string, error) {
	if deviceID == "mock-camera-video-index0" {
		return "/dev/mock-video0", nil
	}
	return "", fmt.Errorf("device with ID %s not found", deviceID)
}

// StartMonitoring is a no-op on macOS.
func (d *DarwinDeviceDetector) StartMonitoring(_ context.Context, _ EventBroadcaster) error {
	d.logger.Debug("Device monitoring not available on darwin")
	return nil
}

// StopMonitoring is a no-op on macOS.
func (d *DarwinDeviceDetector) StopMonitoring() {}
