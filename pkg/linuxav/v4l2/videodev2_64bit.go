//go:build linux && (amd64 || arm64)

package v4l2

import "unsafe"

// Compile-time struct size assertions.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [104]byte = [unsafe.Sizeof(v4l2Capability{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2Fmtdesc{})]byte{}
	_ [208]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2Requestbuffers{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(v4l2Timecode{})]byte{}
)

// IOCTL constants for 64-bit architectures.
const (
	vidiocQuerycap  = 0x80685600
	vidiocEnumFmt   = 0xc0405602
	vidiocGFmt      = 0xc0d05604
	vidiocSFmt      = 0xc0d05605
	vidiocReqbufs   = 0xc0145608
	vidiocQuerybuf  = 0xc0585609
	vidiocQbuf      = 0xc058560f
	vidiocDqbuf     = 0xc0585611
	vidiocStreamon  = 0x40045612
	vidiocStreamoff = 0x40045613
	vidiocTryFmt    = 0xc0d05640
)

// v4l2Capability has size 104 bytes.
type v4l2Capability struct {
	driver       [16]byte  // offset 0
	card         [32]byte  // offset 16
	busInfo      [32]byte  // offset 48
	version      uint32    // offset 80
	capabilities uint32    // offset 84
	deviceCaps   uint32    // offset 88
	reserved     [3]uint32 // offset 92
}

// v4l2Fmtdesc has size 64 bytes.
type v4l2Fmtdesc struct {
	index       uint32    // offset 0
	typ         uint32    // offset 4
	flags       uint32    // offset 8
	description [32]byte  // offset 12
	pixelformat uint32    // offset 44
	mbusCode    uint32    // offset 48
	reserved    [3]uint32 // offset 52
}

// v4l2PixFormat has size 48 bytes (start of the fmt union).
type v4l2PixFormat struct {
	width        uint32 // offset 0
	height       uint32 // offset 4
	pixelformat  uint32 // offset 8
	field        uint32 // offset 12
	bytesperline uint32 // offset 16
	sizeimage    uint32 // offset 20
	colorspace   uint32 // offset 24
	priv         uint32 // offset 28
	flags        uint32 // offset 32
	ycbcrEnc     uint32 // offset 36
	quantization uint32 // offset 40
	xferFunc     uint32 // offset 44
}

// v4l2Format has size 208 bytes; the union is 8-byte aligned on 64-bit.
type v4l2Format struct {
	typ uint32        // offset 0
	_   [4]byte       // padding to union alignment
	pix v4l2PixFormat // offset 8 (union with other format types)
	_   [152]byte     // remainder of the 200-byte union
}

// v4l2Requestbuffers has size 20 bytes.
type v4l2Requestbuffers struct {
	count        uint32   // offset 0
	typ          uint32   // offset 4
	memory       uint32   // offset 8
	capabilities uint32   // offset 12
	flags        uint8    // offset 16
	reserved     [3]uint8 // offset 17
}

// v4l2Timecode has size 16 bytes.
type v4l2Timecode struct {
	typ      uint32   // offset 0
	flags    uint32   // offset 4
	frames   uint8    // offset 8
	seconds  uint8    // offset 9
	minutes  uint8    // offset 10
	hours    uint8    // offset 11
	userbits [4]uint8 // offset 12
}

// v4l2Buffer has size 88 bytes; timeval is two 64-bit longs.
type v4l2Buffer struct {
	index     uint32       // offset 0
	typ       uint32       // offset 4
	bytesused uint32       // offset 8
	flags     uint32       // offset 12
	field     uint32       // offset 16
	_         [4]byte      // padding to timeval alignment
	timestamp [16]byte     // offset 24 - struct timeval
	timecode  v4l2Timecode // offset 40
	sequence  uint32       // offset 56
	memory    uint32       // offset 60
	offset    uint32       // offset 64 - union m (offset for MMAP memory)
	_         [4]byte      // high half of the 8-byte union
	length    uint32       // offset 72
	reserved2 uint32       // offset 76
	requestFd int32        // offset 80
	_         [4]byte      // padding to 88
}
