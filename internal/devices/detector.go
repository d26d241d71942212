// Package devices provides video device discovery used by the HTTP API
// and CLI: listing cameras, listing their formats, resolving stable
// device IDs to paths, and hotplug monitoring.
package devices

import (
	"context"

	"github.com/smazurov/camgrab/internal/api/models"
)

// EventBroadcaster receives device discovery events from monitoring.
type EventBroadcaster interface {
	BroadcastDeviceDiscovery(action string, device models.DeviceInfo, timestamp string)
}

// DeviceDetector abstracts platform-specific device discovery.
type DeviceDetector interface {
	// FindDevices returns all available video capture devices.
	FindDevices() ([]models.DeviceInfo, error)

	// GetDeviceFormats returns the pixel formats a device advertises.
	GetDeviceFormats(devicePath string) ([]models.FormatInfo, error)

	// GetDevicePathByID resolves a stable device ID to its /dev path.
	GetDevicePathByID(deviceID string) (string, error)

	// StartMonitoring begins watching for device hotplug events.
	StartMonitoring(ctx context.Context, broadcaster EventBroadcaster) error

	// StopMonitoring stops watching for device changes.
	StopMonitoring()
}

// V4L2 capability constants (from linux/videodev2.h)
const (
	capVideoCapture = 0x00000001
	capVideoOutput  = 0x00000002
	capVideoM2M     = 0x00008000
	capReadWrite    = 0x01000000
	capAsyncIO      = 0x02000000
	capStreaming    = 0x04000000
	capMetaCapture  = 0x00800000
	capDeviceCaps   = 0x80000000
)

// translateCapabilities converts V4L2 capability flags to readable strings.
func translateCapabilities(caps uint32) []string {
	capMap := []struct {
		flag uint32
		name string
	}{
		{capVideoCapture, "Video Capture"},
		{capVideoOutput, "Video Output"},
		{capVideoM2M, "Memory-to-Memory"},
		{capReadWrite, "Read/Write I/O"},
		{capAsyncIO, "Asynchronous I/O"},
		{capStreaming, "Streaming I/O"},
		{capMetaCapture, "Metadata Capture"},
		{capDeviceCaps, "Device Capabilities"},
	}

	var capabilities []string
	for _, c := range capMap {
		if caps&c.flag != 0 {
			capabilities = append(capabilities, c.name)
		}
	}
	return capabilities
}

// deviceDiff holds the result of comparing two device snapshots.
type deviceDiff struct {
	added   []models.DeviceInfo
	removed []models.DeviceInfo
	changed []models.DeviceInfo
}

// diffDevices compares device snapshots keyed by stable device ID.
// A device present in both snapshots counts as changed when its path,
// name, or capability flags differ.
func diffDevices(prev, curr []models.DeviceInfo) deviceDiff {
	prevByID := make(map[string]models.DeviceInfo, len(prev))
	for _, d := range prev {
		prevByID[d.DeviceID] = d
	}

	var diff deviceDiff
	seen := make(map[string]bool, len(curr))
	for _, d := range curr {
		seen[d.DeviceID] = true
		old, existed := prevByID[d.DeviceID]
		if !existed {
			diff.added = append(diff.added, d)
			continue
		}
		if old.DevicePath != d.DevicePath || old.DeviceName != d.DeviceName || old.Caps != d.Caps {
			diff.changed = append(diff.changed, d)
		}
	}
	for _, d := range prev {
		if !seen[d.DeviceID] {
			diff.removed = append(diff.removed, d)
		}
	}
	return diff
}
