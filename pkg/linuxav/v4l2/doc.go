//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2)
// streaming I/O API: device enumeration, format negotiation, buffer
// allocation with memory mapping, and the queue/dequeue frame cycle.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
//
// # Streaming
//
// The capture cycle follows the standard mmap streaming I/O protocol:
//
//	dev, _ := v4l2.Open("/dev/video0")
//	defer dev.Close()
//
//	pix, _ := dev.Format()
//	pix.PixelFormat = v4l2.PixFmtNV12
//	dev.SetFormat(&pix)
//
//	n, _ := dev.RequestBuffers(4)
//	for i := uint32(0); i < n; i++ {
//	    off, length, _ := dev.QueryBuffer(i)
//	    buf, _ := dev.Mmap(off, length)
//	    dev.Queue(i)
//	}
//	dev.StreamOn()
//
// Filled buffers are collected with Dequeue, which returns
// syscall.EAGAIN when no completed buffer is pending.
package v4l2
