package devices

import (
	"slices"
	"testing"

	"github.com/smazurov/camgrab/internal/api/models"
)

func dev(id, path string, caps uint32) models.DeviceInfo {
	return models.DeviceInfo{
		DeviceID:   id,
		DevicePath: path,
		DeviceName: "Test Camera",
		Caps:       caps,
	}
}

func ids(devices []models.DeviceInfo) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.DeviceID
	}
	return out
}

func TestDiffDevices(t *testing.T) {
	camA := dev("cam-a", "/dev/video0", capVideoCapture)
	camB := dev("cam-b", "/dev/video1", capVideoCapture)
	camBMoved := dev("cam-b", "/dev/video2", capVideoCapture)
	camC := dev("cam-c", "/dev/video3", capVideoCapture)

	tests := []struct {
		name        string
		prev, curr  []models.DeviceInfo
		wantAdded   []string
		wantRemoved []string
		wantChanged []string
	}{
		{
			name: "no changes",
			prev: []models.DeviceInfo{camA, camB},
			curr: []models.DeviceInfo{camA, camB},
		},
		{
			name:      "device added",
			prev:      []models.DeviceInfo{camA},
			curr:      []models.DeviceInfo{camA, camC},
			wantAdded: []string{"cam-c"},
		},
		{
			name:        "device removed",
			prev:        []models.DeviceInfo{camA, camB},
			curr:        []models.DeviceInfo{camA},
			wantRemoved: []string{"cam-b"},
		},
		{
			name:        "device node renumbered",
			prev:        []models.DeviceInfo{camA, camB},
			curr:        []models.DeviceInfo{camA, camBMoved},
			wantChanged: []string{"cam-b"},
		},
		{
			name:        "replug swaps devices",
			prev:        []models.DeviceInfo{camA, camB},
			curr:        []models.DeviceInfo{camB, camC},
			wantAdded:   []string{"cam-c"},
			wantRemoved: []string{"cam-a"},
		},
		{
			name:      "empty previous snapshot",
			prev:      nil,
			curr:      []models.DeviceInfo{camA},
			wantAdded: []string{"cam-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := diffDevices(tt.prev, tt.curr)
			if got := ids(diff.added); !slices.Equal(got, tt.wantAdded) {
				t.Errorf("added = %v, want %v", got, tt.wantAdded)
			}
			if got := ids(diff.removed); !slices.Equal(got, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", got, tt.wantRemoved)
			}
			if got := ids(diff.changed); !slices.Equal(got, tt.wantChanged) {
				t.Errorf("changed = %v, want %v", got, tt.wantChanged)
			}
		})
	}
}

func TestDiffDevicesCapsChange(t *testing.T) {
	prev := []models.DeviceInfo{dev("cam-a", "/dev/video0", capVideoCapture)}
	curr := []models.DeviceInfo{dev("cam-a", "/dev/video0", capVideoCapture|capStreaming)}

	diff := diffDevices(prev, curr)
	if len(diff.changed) != 1 || diff.changed[0].DeviceID != "cam-a" {
		t.Errorf("expected cam-a in changed, got %v", ids(diff.changed))
	}
	if len(diff.added) != 0 || len(diff.removed) != 0 {
		t.Errorf("unexpected added/removed: %v / %v", ids(diff.added), ids(diff.removed))
	}
}

func TestTranslateCapabilities(t *testing.T) {
	caps := translateCapabilities(capVideoCapture | capStreaming)
	if !slices.Contains(caps, "Video Capture") {
		t.Errorf("missing Video Capture in %v", caps)
	}
	if !slices.Contains(caps, "Streaming I/O") {
		t.Errorf("missing Streaming I/O in %v", caps)
	}
	if slices.Contains(caps, "Memory-to-Memory") {
		t.Errorf("unexpected Memory-to-Memory in %v", caps)
	}

	if got := translateCapabilities(0); len(got) != 0 {
		t.Errorf("expected no capabilities for zero flags, got %v", got)
	}
}
