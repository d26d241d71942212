//go:build linux

package v4l2

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"unsafe"
)

// Device is an open V4L2 capture device.
type Device struct {
	fd   int
	path string
}

// Open opens a V4L2 device in non-blocking mode.
func Open(path string) (*Device, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", path, err)
	}
	return &Device{fd: fd, path: path}, nil
}

// Close closes the device file descriptor.
func (d *Device) Close() error {
	return syscall.Close(d.fd)
}

// Fd returns the device file descriptor. The descriptor becomes readable
// when a filled buffer is ready to dequeue, so it doubles as the
// completion-notification descriptor for readiness polling.
func (d *Device) Fd() int {
	return d.fd
}

// Path returns the device node path.
func (d *Device) Path() string {
	return d.path
}

// Capability returns the driver, card and capability flags of the device.
func (d *Device) Capability() (driver, card string, caps uint32, err error) {
	c := v4l2Capability{}
	if err = ioctl(d.fd, vidiocQuerycap, unsafe.Pointer(&c)); err != nil {
		return "", "", 0, err
	}
	caps = c.capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = c.deviceCaps
	}
	return cstr(c.driver[:]), cstr(c.card[:]), caps, nil
}

// FindDevices finds all V4L2 video capture devices on the system.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir("/sys/class/video4linux")
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read video4linux directory: %w", err)
	}

	var devices []DeviceInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		devicePath := "/dev/" + entry.Name()

		dev, err := Open(devicePath)
		if err != nil {
			slog.With("component", "linuxav").Debug("failed to open video device", "path", devicePath, "error", err)
			continue
		}

		_, card, caps, err := dev.Capability()
		if err != nil {
			slog.With("component", "linuxav").Debug("failed to query device capabilities", "path", devicePath, "error", err)
			dev.Close()
			continue
		}
		busInfo := dev.busInfo()
		dev.Close()

		// Only include streaming video capture devices
		if caps&v4l2CapVideoCapture == 0 || caps&v4l2CapStreaming == 0 {
			continue
		}

		indexPath := filepath.Join("/sys/class/video4linux", entry.Name(), "index")
		indexValue := readSysfsInt(indexPath)

		stableID := findStableID(entry.Name(), indexValue)
		if stableID == "" {
			// Fallback: synthetic ID from bus_info + index
			if strings.HasPrefix(busInfo, "usb-") {
				stableID = fmt.Sprintf("%s-video-index%d", busInfo, indexValue)
			} else {
				stableID = fmt.Sprintf("platform-%s-video-index%d", busInfo, indexValue)
			}
		}

		devices = append(devices, DeviceInfo{
			DevicePath: devicePath,
			DeviceName: card,
			DeviceID:   stableID,
			Caps:       caps,
		})
	}

	return devices, nil
}

// GetDevicePathByID finds the device path for a given stable device ID.
func GetDevicePathByID(deviceID string) (string, error) {
	devices, err := FindDevices()
	if err != nil {
		return "", fmt.Errorf("failed to find devices: %w", err)
	}

	for _, device := range devices {
		if device.DeviceID == deviceID {
			return device.DevicePath, nil
		}
	}

	return "", fmt.Errorf("device with ID %s not found", deviceID)
}

func (d *Device) busInfo() string {
	c := v4l2Capability{}
	if err := ioctl(d.fd, vidiocQuerycap, unsafe.Pointer(&c)); err != nil {
		return ""
	}
	return cstr(c.busInfo[:])
}

// findStableID looks for a stable ID symlink in /dev/v4l/by-id/
func findStableID(deviceName string, indexValue int) string {
	byIDDir := "/dev/v4l/by-id"
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return ""
	}

	expectedSuffix := fmt.Sprintf("-video-index%d", indexValue)

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		linkPath := filepath.Join(byIDDir, entry.Name())
		target, err := os.Readlink(linkPath)
		if err != nil {
			continue
		}

		targetBase := filepath.Base(target)
		if targetBase == deviceName && strings.HasSuffix(entry.Name(), expectedSuffix) {
			return entry.Name()
		}
	}

	return ""
}

// readSysfsInt reads an integer value from a sysfs file.
func readSysfsInt(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	val, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return val
}

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
