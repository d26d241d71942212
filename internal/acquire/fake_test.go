package acquire

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/sys/unix"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeManager struct {
	ids     []string
	cams    map[string]*fakeCamera
	listErr error
}

func (m *fakeManager) Cameras() ([]string, error) {
	return m.ids, m.listErr
}

func (m *fakeManager) Get(id string) (Camera, error) {
	cam, ok := m.cams[id]
	if !ok {
		return nil, fmt.Errorf("no camera with ID %s", id)
	}
	return cam, nil
}

func newFakeManager(cam *fakeCamera) *fakeManager {
	return &fakeManager{
		ids:  []string{"cam0"},
		cams: map[string]*fakeCamera{"cam0": cam},
	}
}

type fakeRequest struct {
	index  int
	count  int
	reused int
}

func (q *fakeRequest) BufferIndex() int { return q.index }
func (q *fakeRequest) BufferCount() int { return q.count }
func (q *fakeRequest) Reuse() error {
	q.reused++
	return nil
}

// fakeCamera drives the acquisition core without hardware. Completions
// are staged with complete(), which signals the event pipe the same way
// a driver marks its descriptor readable.
type fakeCamera struct {
	width, height uint32
	formats       []uint32
	validate      ValidateStatus
	bufCount      int
	bufSize       int
	mapFailAt     int
	createFailAt  int
	planesPerReq  int

	planes  map[int][]byte
	queued  []*fakeRequest
	pending []*fakeRequest
	evR     int
	evW     int
	fillSeq byte

	acquired bool
	started  bool
	stops    int
	releases int
	unmapped []int
	freed    bool
}

func newFakeCamera(t *testing.T) *fakeCamera {
	t.Helper()
	fds := make([]int, 2)
	if err := unix.Pipe(fds); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return &fakeCamera{
		width:        640,
		height:       480,
		formats:      []uint32{PixFmtNV12},
		bufCount:     4,
		bufSize:      640 * 480 * 3 / 2,
		mapFailAt:    -1,
		createFailAt: -1,
		planesPerReq: 1,
		planes:       make(map[int][]byte),
		evR:          fds[0],
		evW:          fds[1],
	}
}

// complete marks the n oldest queued requests as filled, stamping each
// buffer with a distinct byte value, and signals the event descriptor.
func (c *fakeCamera) complete(n int) {
	for i := 0; i < n && len(c.queued) > 0; i++ {
		req := c.queued[0]
		c.queued = c.queued[1:]
		c.fillSeq++
		plane := c.planes[req.index]
		for j := range plane {
			plane[j] = c.fillSeq
		}
		c.pending = append(c.pending, req)
	}
	_, _ = unix.Write(c.evW, []byte{1})
}

func (c *fakeCamera) Acquire() error {
	c.acquired = true
	return nil
}

func (c *fakeCamera) Release() error {
	c.releases++
	return nil
}

func (c *fakeCamera) GenerateConfiguration(role StreamRole) (*StreamConfig, error) {
	return &StreamConfig{
		Width:   c.width,
		Height:  c.height,
		Formats: append([]uint32(nil), c.formats...),
	}, nil
}

func (c *fakeCamera) Validate(cfg *StreamConfig) (ValidateStatus, error) {
	return c.validate, nil
}

func (c *fakeCamera) Configure(cfg *StreamConfig) error {
	return nil
}

func (c *fakeCamera) AllocateBuffers() (int, error) {
	return c.bufCount, nil
}

func (c *fakeCamera) MapBuffer(index int) ([]byte, error) {
	if index == c.mapFailAt {
		return nil, fmt.Errorf("mmap failed for buffer %d", index)
	}
	data := make([]byte, c.bufSize)
	c.planes[index] = data
	return data, nil
}

func (c *fakeCamera) UnmapBuffer(index int) error {
	c.unmapped = append(c.unmapped, index)
	delete(c.planes, index)
	return nil
}

func (c *fakeCamera) FreeBuffers() error {
	c.freed = true
	return nil
}

func (c *fakeCamera) CreateRequest(index int) (Request, error) {
	if index == c.createFailAt {
		return nil, fmt.Errorf("out of request slots")
	}
	return &fakeRequest{index: index, count: c.planesPerReq}, nil
}

func (c *fakeCamera) QueueRequest(req Request) error {
	c.queued = append(c.queued, req.(*fakeRequest))
	return nil
}

func (c *fakeCamera) ReadyRequests() ([]Request, error) {
	buf := make([]byte, 16)
	for {
		n, err := unix.Read(c.evR, buf)
		if n <= 0 || err != nil {
			break
		}
	}
	out := make([]Request, len(c.pending))
	for i, req := range c.pending {
		out[i] = req
	}
	c.pending = nil
	return out, nil
}

func (c *fakeCamera) Start() error {
	c.started = true
	return nil
}

func (c *fakeCamera) Stop() error {
	c.started = false
	c.stops++
	return nil
}

func (c *fakeCamera) EventFd() int {
	return c.evR
}
