//go:build linux

package devices

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/camgrab/internal/acquire"
	"github.com/smazurov/camgrab/internal/api/models"
	"github.com/smazurov/camgrab/internal/logging"
	"github.com/smazurov/camgrab/pkg/linuxav/v4l2"
)

// pollInterval is how often the monitor re-enumerates devices. Hotplug
// is detected by diffing successive snapshots rather than subscribing
// to udev, which keeps the build cgo-free.
const pollInterval = 2 * time.Second

// LinuxDeviceDetector discovers V4L2 devices through sysfs enumeration.
type LinuxDeviceDetector struct {
	logger *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	snapshot []models.DeviceInfo
}

// NewDeviceDetector creates a detector for the current platform.
func NewDeviceDetector() DeviceDetector {
	return &LinuxDeviceDetector{
		logger: logging.GetLogger("devices"),
	}
}

// FindDevices returns all video capture devices found under sysfs.
func (d *LinuxDeviceDetector) FindDevices() ([]models.DeviceInfo, error) {
	raw, err := v4l2.FindDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to find devices: %w", err)
	}

	devices := make([]models.DeviceInfo, len(raw))
	for i, dev := range raw {
		devices[i] = models.DeviceInfo{
			DevicePath:   dev.DevicePath,
			DeviceName:   dev.DeviceName,
			DeviceID:     dev.DeviceID,
			Caps:         dev.Caps,
			Capabilities: translateCapabilities(dev.Caps),
		}
	}
	return devices, nil
}

// GetDeviceFormats opens the device and enumerates its capture formats.
func (d *LinuxDeviceDetector) GetDeviceFormats(devicePath string) ([]models.FormatInfo, error) {
	dev, err := v4l2.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", devicePath, err)
	}
	defer dev.Close()

	raw, err := dev.Formats()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate formats: %w", err)
	}

	formats := make([]models.FormatInfo, len(raw))
	for i, f := range raw {
		_, supported := acquire.LookupFormat(f.PixelFormat)
		formats[i] = models.FormatInfo{
			FormatName:   models.PixelFormatToHumanReadable(f.PixelFormat),
			OriginalName: f.FormatName,
			Emulated:     f.Emulated,
			Supported:    supported,
		}
	}
	return formats, nil
}

// GetDevicePathByID resolves a stable device ID to its /dev path.
func (d *LinuxDeviceDetector) GetDevicePathByID(deviceID string) (string, error) {
	return v4l2.GetDevicePathByID(deviceID)
}

// StartMonitoring polls for device changes and broadcasts added,
// removed, and changed events until the context is cancelled.
func (d *LinuxDeviceDetector) StartMonitoring(ctx context.Context, broadcaster EventBroadcaster) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return fmt.Errorf("monitoring already started")
	}

	initial, err := d.FindDevices()
	if err != nil {
		return fmt.Errorf("failed to take initial device snapshot: %w", err)
	}
	d.snapshot = initial

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done

	d.logger.Info("Starting device monitoring", "interval", pollInterval, "devices", len(initial))
	go d.monitorLoop(ctx, broadcaster, done)
	return nil
}

// StopMonitoring stops the polling loop and waits for it to exit.
func (d *LinuxDeviceDetector) StopMonitoring() {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.cancel = nil
	d.done = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (d *LinuxDeviceDetector) monitorLoop(ctx context.Context, broadcaster EventBroadcaster, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollOnce(broadcaster)
		}
	}
}

func (d *LinuxDeviceDetector) pollOnce(broadcaster EventBroadcaster) {
	current, err := d.FindDevices()
	if err != nil {
		d.logger.Warn("Device enumeration failed during monitoring", "error", err)
		return
	}

	d.mu.Lock()
	diff := diffDevices(d.snapshot, current)
	d.snapshot = current
	d.mu.Unlock()

	timestamp := time.Now().Format(time.RFC3339)
	for _, dev := range diff.added {
		d.logger.Info("Device added", "device_id", dev.DeviceID, "path", dev.DevicePath)
		broadcaster.BroadcastDeviceDiscovery("added", dev, timestamp)
	}
	for _, dev := range diff.removed {
		d.logger.Info("Device removed", "device_id", dev.DeviceID, "path", dev.DevicePath)
		broadcaster.BroadcastDeviceDiscovery("removed", dev, timestamp)
	}
	for _, dev := range diff.changed {
		d.logger.Debug("Device changed", "device_id", dev.DeviceID, "path", dev.DevicePath)
		broadcaster.BroadcastDeviceDiscovery("changed", dev, timestamp)
	}
}
