package acquire

import "testing"

func TestOpenHandleNoDevices(t *testing.T) {
	mgr := &fakeManager{cams: map[string]*fakeCamera{}}

	_, err := OpenHandle(mgr, "cam0", testLogger())
	if CodeOf(err) != ErrCodeNoDevicesPresent {
		t.Fatalf("expected %s, got %v", ErrCodeNoDevicesPresent, err)
	}
}

func TestOpenHandleUnknownID(t *testing.T) {
	mgr := newFakeManager(newFakeCamera(t))

	_, err := OpenHandle(mgr, "does-not-exist", testLogger())
	if CodeOf(err) != ErrCodeDeviceNotFound {
		t.Fatalf("expected %s, got %v", ErrCodeDeviceNotFound, err)
	}
}

func TestOpenHandleAcquires(t *testing.T) {
	cam := newFakeCamera(t)
	mgr := newFakeManager(cam)

	h, err := OpenHandle(mgr, "cam0", testLogger())
	if err != nil {
		t.Fatalf("OpenHandle: %v", err)
	}
	if !cam.acquired {
		t.Error("camera was not acquired")
	}
	if err := h.Release(); err != nil {
		t.Errorf("Release: %v", err)
	}
	if cam.releases != 1 {
		t.Errorf("releases = %d, want 1", cam.releases)
	}
}

func TestNegotiateDefaultStream(t *testing.T) {
	tests := []struct {
		name     string
		formats  []uint32
		validate ValidateStatus
		wantCode string
	}{
		{
			name:    "supported format first advertised",
			formats: []uint32{PixFmtNV12},
		},
		{
			name:    "supported format behind unsupported ones",
			formats: []uint32{0x47504A4D, 0x56595559, PixFmtNV12},
		},
		{
			name:     "no supported format",
			formats:  []uint32{0x47504A4D, 0x56595559},
			wantCode: ErrCodeUnsupportedFormat,
		},
		{
			name:     "driver adjusts configuration",
			formats:  []uint32{PixFmtNV12},
			validate: ValidateAdjusted,
			wantCode: ErrCodeConfigurationRejected,
		},
		{
			name:     "driver rejects configuration",
			formats:  []uint32{PixFmtNV12},
			validate: ValidateInvalid,
			wantCode: ErrCodeConfigurationRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newFakeCamera(t)
			cam.formats = tt.formats
			cam.validate = tt.validate

			h, err := OpenHandle(newFakeManager(cam), "cam0", testLogger())
			if err != nil {
				t.Fatalf("OpenHandle: %v", err)
			}
			defer h.Release()

			cfg, err := h.NegotiateDefaultStream()
			if tt.wantCode != "" {
				if CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NegotiateDefaultStream: %v", err)
			}
			if cfg.Width != 640 || cfg.Height != 480 {
				t.Errorf("config = %dx%d, want 640x480", cfg.Width, cfg.Height)
			}
			if cfg.PixelFormat != PixFmtNV12 {
				t.Errorf("pixel format = %s, want NV12", FourCCString(cfg.PixelFormat))
			}
		})
	}
}

func TestStartStopIdempotent(t *testing.T) {
	cam := newFakeCamera(t)
	h, err := OpenHandle(newFakeManager(cam), "cam0", testLogger())
	if err != nil {
		t.Fatalf("OpenHandle: %v", err)
	}
	defer h.Release()

	if err := h.StartStream(); err != nil {
		t.Fatalf("StartStream: %v", err)
	}
	if err := h.StartStream(); err != nil {
		t.Fatalf("second StartStream: %v", err)
	}
	if !cam.started {
		t.Error("stream not started")
	}

	if err := h.StopStream(); err != nil {
		t.Fatalf("StopStream: %v", err)
	}
	if err := h.StopStream(); err != nil {
		t.Fatalf("second StopStream: %v", err)
	}
	if cam.stops != 1 {
		t.Errorf("stops = %d, want 1", cam.stops)
	}
}

func TestReleaseStopsRunningStream(t *testing.T) {
	cam := newFakeCamera(t)
	h, err := OpenHandle(newFakeManager(cam), "cam0", testLogger())
	if err != nil {
		t.Fatalf("OpenHandle: %v", err)
	}
	if err := h.StartStream(); err != nil {
		t.Fatalf("StartStream: %v", err)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if cam.stops != 1 {
		t.Errorf("stops = %d, want 1", cam.stops)
	}
	if cam.releases != 1 {
		t.Errorf("releases = %d, want 1", cam.releases)
	}

	// Releasing again must be a no-op.
	if err := h.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if cam.releases != 1 {
		t.Errorf("releases after second Release = %d, want 1", cam.releases)
	}
}
