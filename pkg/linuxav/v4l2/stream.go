//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

// RequestBuffers asks the driver to allocate count mmap-able frame
// buffers. The driver is free to grant a different number; the granted
// count is returned. Passing zero releases a previous allocation.
func (d *Device) RequestBuffers(count uint32) (uint32, error) {
	rb := v4l2Requestbuffers{
		count:  count,
		typ:    v4l2BufTypeVideoCapture,
		memory: v4l2MemoryMmap,
	}
	if err := ioctl(d.fd, vidiocReqbufs, unsafe.Pointer(&rb)); err != nil {
		return 0, fmt.Errorf("failed to request buffers: %w", err)
	}
	return rb.count, nil
}

// QueryBuffer returns the mmap offset and length of an allocated buffer.
func (d *Device) QueryBuffer(index uint32) (offset int64, length int, err error) {
	qb := v4l2Buffer{
		index:  index,
		typ:    v4l2BufTypeVideoCapture,
		memory: v4l2MemoryMmap,
	}
	if err := ioctl(d.fd, vidiocQuerybuf, unsafe.Pointer(&qb)); err != nil {
		return 0, 0, fmt.Errorf("failed to query buffer %d: %w", index, err)
	}
	return int64(qb.offset), int(qb.length), nil
}

// Mmap maps a buffer's backing memory into the process address space.
func (d *Device) Mmap(offset int64, length int) ([]byte, error) {
	b, err := syscall.Mmap(d.fd, offset, length, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap buffer: %w", err)
	}
	return b, nil
}

// Munmap unmaps a buffer mapping created by Mmap.
func (d *Device) Munmap(b []byte) error {
	return syscall.Munmap(b)
}

// Queue hands a buffer to the driver to be filled with the next frame.
func (d *Device) Queue(index uint32) error {
	qb := v4l2Buffer{
		index:  index,
		typ:    v4l2BufTypeVideoCapture,
		memory: v4l2MemoryMmap,
	}
	if err := ioctl(d.fd, vidiocQbuf, unsafe.Pointer(&qb)); err != nil {
		return fmt.Errorf("failed to queue buffer %d: %w", index, err)
	}
	return nil
}

// Dequeue collects one filled buffer. In non-blocking mode the call
// returns syscall.EAGAIN when no completed buffer is pending, which
// callers use to drain all completions without blocking.
func (d *Device) Dequeue() (index uint32, bytesused uint32, err error) {
	dq := v4l2Buffer{
		typ:    v4l2BufTypeVideoCapture,
		memory: v4l2MemoryMmap,
	}
	if err := ioctl(d.fd, vidiocDqbuf, unsafe.Pointer(&dq)); err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return 0, 0, syscall.EAGAIN
		}
		return 0, 0, fmt.Errorf("failed to dequeue buffer: %w", err)
	}
	return dq.index, dq.bytesused, nil
}

// StreamOn starts capture on the device.
func (d *Device) StreamOn() error {
	typ := uint32(v4l2BufTypeVideoCapture)
	if err := ioctl(d.fd, vidiocStreamon, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	return nil
}

// StreamOff stops capture and dequeues every in-flight buffer.
func (d *Device) StreamOff() error {
	typ := uint32(v4l2BufTypeVideoCapture)
	if err := ioctl(d.fd, vidiocStreamoff, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	return nil
}
