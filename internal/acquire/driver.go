package acquire

// StreamRole identifies the intended use of a stream when asking the
// driver for a default configuration.
type StreamRole int

// Stream roles.
const (
	RoleViewfinder StreamRole = iota
	RoleVideoRecording
	RoleStillCapture
)

// ValidateStatus reports how the driver treated a proposed stream
// configuration. Validation always yields some working configuration;
// anything other than ValidateUnchanged means the driver substituted
// values the caller did not ask for.
type ValidateStatus int

// Validation outcomes.
const (
	ValidateUnchanged ValidateStatus = iota
	ValidateAdjusted
	ValidateInvalid
)

// StreamConfig is the mutable stream configuration under negotiation.
// Formats lists the pixel formats the driver advertises for the stream,
// in driver-reported order. Once validated and applied the configuration
// must not be mutated.
type StreamConfig struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32 // fourcc
	Formats     []uint32
}

// Manager enumerates the cameras visible to the process. It is injected
// into the acquisition core rather than accessed as ambient global state
// so tests can substitute doubles.
type Manager interface {
	// Cameras returns the stable IDs of all cameras on the system.
	Cameras() ([]string, error)

	// Get resolves a camera by stable ID.
	Get(id string) (Camera, error)
}

// Camera is one physical camera exposed by the platform's camera stack.
// All methods are driven by a single goroutine; implementations need not
// be safe for concurrent use.
type Camera interface {
	// Acquire exclusively locks the camera for this handle's lifetime.
	Acquire() error

	// Release undoes Acquire. Safe to call after a partial setup.
	Release() error

	// GenerateConfiguration returns a driver-suggested configuration
	// for the given stream role.
	GenerateConfiguration(role StreamRole) (*StreamConfig, error)

	// Validate checks a configuration, rewriting it in place to the
	// nearest working one when needed.
	Validate(cfg *StreamConfig) (ValidateStatus, error)

	// Configure applies a validated configuration to the camera.
	Configure(cfg *StreamConfig) error

	// AllocateBuffers allocates backing memory for the configured
	// stream and returns the driver-determined buffer count.
	AllocateBuffers() (int, error)

	// MapBuffer maps buffer index into the process address space.
	MapBuffer(index int) ([]byte, error)

	// UnmapBuffer releases the mapping for buffer index.
	UnmapBuffer(index int) error

	// FreeBuffers releases the backing allocation.
	FreeBuffers() error

	// CreateRequest builds a fill request bound to buffer index.
	CreateRequest(index int) (Request, error)

	// QueueRequest submits a request to be filled with the next frame.
	QueueRequest(req Request) error

	// ReadyRequests returns all requests the device has completed since
	// the last call. Never blocks; may return an empty set.
	ReadyRequests() ([]Request, error)

	// Start begins capture. Stop halts it; Stop is safe to call twice.
	Start() error
	Stop() error

	// EventFd returns the completion-notification descriptor. It
	// becomes readable when at least one request has completed.
	EventFd() int
}

// Request pairs one frame buffer with the stream for a single fill
// cycle. Requests are recycled for the life of the stream, never
// destroyed until teardown.
type Request interface {
	// BufferIndex is the dense pool index of the attached buffer.
	BufferIndex() int

	// BufferCount is the number of buffers attached to the request.
	// This core supports exactly one.
	BufferCount() int

	// Reuse resets the request so it can be queued again.
	Reuse() error
}
