package acquire

import (
	"fmt"
	"log/slog"
)

// BufferPool owns the frame buffers allocated for one stream: the
// driver-side allocation and the process-side mappings, indexed by the
// dense pool index the driver assigns.
type BufferPool struct {
	cam      Camera
	mappings map[int][]byte
	count    int
	logger   *slog.Logger
}

// NewBufferPool creates an empty pool bound to cam.
func NewBufferPool(cam Camera, logger *slog.Logger) *BufferPool {
	return &BufferPool{
		cam:      cam,
		mappings: make(map[int][]byte),
		logger:   logger,
	}
}

// Allocate asks the driver for backing memory. The driver decides the
// buffer count; a count below one means the allocation did not happen.
func (p *BufferPool) Allocate() (int, error) {
	count, err := p.cam.AllocateBuffers()
	if err != nil {
		return 0, NewAcquireError(ErrCodeAllocationFailed, "buffer allocation failed", err)
	}
	if count < 1 {
		return 0, NewAcquireError(ErrCodeAllocationFailed,
			fmt.Sprintf("driver allocated %d buffers", count), nil)
	}
	p.count = count
	return count, nil
}

// MapAll maps every allocated buffer into the process address space.
// On any mapping failure the buffers already mapped are unmapped before
// the error is returned, leaving the pool empty.
func (p *BufferPool) MapAll() error {
	for i := 0; i < p.count; i++ {
		data, err := p.cam.MapBuffer(i)
		if err != nil {
			for j := range p.mappings {
				if uerr := p.cam.UnmapBuffer(j); uerr != nil {
					p.logger.Warn("Failed to unmap buffer during rollback", "index", j, "error", uerr)
				}
			}
			p.mappings = make(map[int][]byte)
			return NewAcquireError(ErrCodeMappingFailed,
				fmt.Sprintf("failed to map buffer %d", i), err)
		}
		p.mappings[i] = data
	}
	return nil
}

// Plane returns the mapped memory for buffer index.
func (p *BufferPool) Plane(index int) ([]byte, bool) {
	data, ok := p.mappings[index]
	return data, ok
}

// Count returns the number of allocated buffers.
func (p *BufferPool) Count() int {
	return p.count
}

// MappedCount returns the number of currently mapped buffers.
func (p *BufferPool) MappedCount() int {
	return len(p.mappings)
}

// Release unmaps every mapping and frees the driver allocation. Safe to
// call multiple times and after partial setup.
func (p *BufferPool) Release() error {
	var firstErr error
	for i := range p.mappings {
		if err := p.cam.UnmapBuffer(i); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to unmap buffer %d: %w", i, err)
		}
	}
	p.mappings = make(map[int][]byte)
	if p.count > 0 {
		if err := p.cam.FreeBuffers(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to free buffers: %w", err)
		}
		p.count = 0
	}
	return firstErr
}
