//go:build !linux

package camera

import (
	"errors"
	"log/slog"

	"github.com/smazurov/camgrab/internal/acquire"
)

var errUnsupported = errors.New("camera capture is only supported on Linux")

// Manager is a stub for platforms without a camera backend.
type Manager struct{}

// NewManager creates a stub camera manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{}
}

// Cameras reports that no backend exists on this platform.
func (m *Manager) Cameras() ([]string, error) {
	return nil, errUnsupported
}

// Get reports that no backend exists on this platform.
func (m *Manager) Get(id string) (acquire.Camera, error) {
	return nil, errUnsupported
}
