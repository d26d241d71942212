package acquire

import (
	"testing"
	"time"
)

func newTestReader(t *testing.T, cam *fakeCamera, opts ...Option) *Reader {
	t.Helper()
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	r, err := NewReader(newFakeManager(cam), "cam0", opts...)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	t.Cleanup(func() { r.Release() })
	return r
}

func TestReaderSetup(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)

	if r.Width() != 640 || r.Height() != 480 {
		t.Errorf("size = %dx%d, want 640x480", r.Width(), r.Height())
	}
	if r.FrameSize() != 640*480 {
		t.Errorf("frame size = %d, want %d", r.FrameSize(), 640*480)
	}
	if !cam.acquired {
		t.Error("camera not acquired")
	}
	if cam.started {
		t.Error("stream started before Record")
	}
}

func TestReaderSetupFailureReleasesCamera(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*fakeCamera)
		wantCode string
	}{
		{
			name:     "allocation yields zero buffers",
			mutate:   func(c *fakeCamera) { c.bufCount = 0 },
			wantCode: ErrCodeAllocationFailed,
		},
		{
			name:     "mapping fails midway",
			mutate:   func(c *fakeCamera) { c.mapFailAt = 1 },
			wantCode: ErrCodeMappingFailed,
		},
		{
			name:     "no supported format",
			mutate:   func(c *fakeCamera) { c.formats = []uint32{0x56595559} },
			wantCode: ErrCodeUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newFakeCamera(t)
			tt.mutate(cam)

			_, err := NewReader(newFakeManager(cam), "cam0", WithLogger(testLogger()))
			if CodeOf(err) != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if cam.releases != 1 {
				t.Errorf("releases = %d, want 1", cam.releases)
			}
		})
	}
}

func TestReaderRecordIdempotent(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)

	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Record(); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if r.ring.Total() != 4 {
		t.Errorf("requests built = %d, want 4", r.ring.Total())
	}
	if len(cam.queued) != 4 {
		t.Errorf("queued = %d, want 4", len(cam.queued))
	}
}

func TestReaderReadSingleFrame(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	cam.complete(1)
	frame, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(frame) != 640*480 {
		t.Fatalf("frame length = %d, want %d", len(frame), 640*480)
	}
	for i, b := range frame {
		if b != 1 {
			t.Fatalf("frame[%d] = %d, want 1", i, b)
		}
	}
	if r.ring.InFlight() != 4 {
		t.Errorf("in flight after read = %d, want 4", r.ring.InFlight())
	}
}

func TestReaderReadReturnsOldestOfMany(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	cam.complete(3)
	frame, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if frame[0] != 1 {
		t.Errorf("frame payload = %d, want the oldest completion (1)", frame[0])
	}
	// All three drained requests must be back in circulation.
	if len(cam.queued) != 4 {
		t.Errorf("queued after read = %d, want 4", len(cam.queued))
	}
	if r.ring.InFlight() != 4 {
		t.Errorf("in flight after read = %d, want 4", r.ring.InFlight())
	}
}

func TestReaderRequestCountInvariant(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	for i := 0; i < 5; i++ {
		cam.complete(1)
		if _, err := r.Read(); err != nil {
			t.Fatalf("Read %d: %v", i, err)
		}
	}
	if r.ring.Total() != 4 {
		t.Errorf("requests built over 5 reads = %d, want 4", r.ring.Total())
	}
	if r.ring.InFlight() != 4 {
		t.Errorf("in flight = %d, want 4", r.ring.InFlight())
	}
}

func TestReaderRejectsMultiBufferRequest(t *testing.T) {
	cam := newFakeCamera(t)
	cam.planesPerReq = 2
	r := newTestReader(t, cam)
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	cam.complete(1)
	_, err := r.Read()
	if CodeOf(err) != ErrCodeUnsupportedBufferLayout {
		t.Fatalf("expected %s, got %v", ErrCodeUnsupportedBufferLayout, err)
	}
}

func TestReaderTimeoutRetriesUntilFrame(t *testing.T) {
	cam := newFakeCamera(t)
	retries := 0
	r := newTestReader(t, cam,
		WithWaitTimeout(20*time.Millisecond),
		WithWaitRetryHook(func() {
			retries++
			if retries == 1 {
				cam.complete(1)
			}
		}))

	frame, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(frame) != 640*480 {
		t.Errorf("frame length = %d, want %d", len(frame), 640*480)
	}
	if retries != 1 {
		t.Errorf("retries = %d, want 1", retries)
	}
}

func TestReaderReadCopyDoesNotAlias(t *testing.T) {
	cam := newFakeCamera(t)
	r := newTestReader(t, cam)
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}

	cam.complete(1)
	frame, err := r.ReadCopy()
	if err != nil {
		t.Fatalf("ReadCopy: %v", err)
	}

	// Overwrite the mapped buffer the way the device would on the next
	// fill; the copy must keep its payload.
	for i := range cam.planes[0] {
		cam.planes[0][i] = 0xFF
	}
	if frame[0] != 1 {
		t.Errorf("copied frame changed to %d after buffer overwrite", frame[0])
	}
}

func TestReaderRelease(t *testing.T) {
	cam := newFakeCamera(t)
	r, err := NewReader(newFakeManager(cam), "cam0", WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.Record(); err != nil {
		t.Fatalf("Record: %v", err)
	}
	cam.complete(1)
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if err := r.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if cam.started {
		t.Error("stream still running after release")
	}
	if !cam.freed {
		t.Error("buffers not freed")
	}
	if cam.releases != 1 {
		t.Errorf("releases = %d, want 1", cam.releases)
	}

	if err := r.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := r.Read(); err == nil {
		t.Error("Read after release succeeded")
	}
}
