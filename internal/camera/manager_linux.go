//go:build linux

package camera

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/camgrab/internal/acquire"
	"github.com/smazurov/camgrab/pkg/linuxav/v4l2"
)

// Manager enumerates V4L2 capture devices by stable ID.
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a camera manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger.With("component", "camera")}
}

// Cameras returns the stable IDs of every streaming capture device.
func (m *Manager) Cameras() ([]string, error) {
	devices, err := v4l2.FindDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	ids := make([]string, 0, len(devices))
	for _, dev := range devices {
		ids = append(ids, dev.DeviceID)
	}
	return ids, nil
}

// Get resolves a stable device ID to a camera. The device node is not
// opened until the camera is acquired.
func (m *Manager) Get(id string) (acquire.Camera, error) {
	path, err := v4l2.GetDevicePathByID(id)
	if err != nil {
		return nil, err
	}
	return &Camera{
		id:       id,
		path:     path,
		mappings: make(map[int][]byte),
		logger:   m.logger,
	}, nil
}
