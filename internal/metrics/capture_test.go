package metrics

import (
	"sync"
	"testing"
)

func TestCaptureMetricsCache(t *testing.T) {
	deviceID := "test-device-1"

	// Clean state
	DeleteCaptureMetrics(deviceID)

	// Initially should return nil
	if m := GetCaptureMetrics(deviceID); m != nil {
		t.Error("expected nil for non-existent device")
	}

	IncFramesCaptured(deviceID)
	IncFramesCaptured(deviceID)
	IncCaptureError(deviceID, "UNSUPPORTED_FORMAT")
	IncWaitRetry(deviceID)
	SetRequestsInFlight(deviceID, 4)

	m := GetCaptureMetrics(deviceID)
	if m == nil {
		t.Fatal("expected non-nil metrics")
	}
	if m.Frames != 2 {
		t.Errorf("Frames = %v, want 2", m.Frames)
	}
	if m.Errors != 1 {
		t.Errorf("Errors = %v, want 1", m.Errors)
	}
	if m.WaitRetries != 1 {
		t.Errorf("WaitRetries = %v, want 1", m.WaitRetries)
	}
	if m.InFlight != 4 {
		t.Errorf("InFlight = %v, want 4", m.InFlight)
	}

	// Verify returned copy is independent
	m.Frames = 999
	m2 := GetCaptureMetrics(deviceID)
	if m2.Frames != 2 {
		t.Errorf("cache was modified, Frames = %v, want 2", m2.Frames)
	}

	// Clean up
	DeleteCaptureMetrics(deviceID)
	if deleted := GetCaptureMetrics(deviceID); deleted != nil {
		t.Error("expected nil after delete")
	}
}

func TestCaptureMetricsConcurrency(t *testing.T) {
	deviceID := "concurrent-device"
	DeleteCaptureMetrics(deviceID)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			IncFramesCaptured(deviceID)
			SetRequestsInFlight(deviceID, val)
			ObserveReadDuration(deviceID, float64(val)/1000)
			_ = GetCaptureMetrics(deviceID)
		}(i)
	}
	wg.Wait()

	m := GetCaptureMetrics(deviceID)
	if m == nil {
		t.Fatal("expected non-nil metrics after concurrent access")
	}
	if m.Frames != 100 {
		t.Errorf("Frames = %v, want 100", m.Frames)
	}

	DeleteCaptureMetrics(deviceID)
}
