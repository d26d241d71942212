package acquire

// Pixel format fourcc codes understood by this package.
const (
	PixFmtNV12 = 0x3231564E // 'NV12' - 4:2:0 luma plane followed by interleaved chroma
)

// FormatPolicy describes how frames of one pixel format are decoded:
// how many memory planes the buffer carries, how many bytes of payload
// each pixel contributes to the returned frame, and how the payload is
// cut out of plane 0.
type FormatPolicy struct {
	PixelFormat   uint32
	Name          string
	Planes        int
	BytesPerPixel int
	Extract       func(plane []byte, width, height uint32) []byte
}

// supportedFormats maps fourcc codes to their decode policy. Lookup
// happens once, at negotiation time; formats absent from the table are
// rejected rather than decoded with a fallback.
//
// NV12 is handled by slicing out the luma plane and treating it as an
// 8-bit grayscale image, one byte per pixel. Proper chroma handling for
// planar formats is not supported by this core.
var supportedFormats = map[uint32]FormatPolicy{
	PixFmtNV12: {
		PixelFormat:   PixFmtNV12,
		Name:          "NV12",
		Planes:        1,
		BytesPerPixel: 1,
		Extract:       extractLuma,
	},
}

// LookupFormat returns the decode policy for a fourcc code.
func LookupFormat(fourcc uint32) (FormatPolicy, bool) {
	p, ok := supportedFormats[fourcc]
	return p, ok
}

// SelectFormat picks the first format in advertised (driver-reported
// order) that has an entry in the supported table. Selection is
// deterministic regardless of table iteration order because the
// advertised list drives the scan.
func SelectFormat(advertised []uint32) (FormatPolicy, bool) {
	for _, fourcc := range advertised {
		if p, ok := supportedFormats[fourcc]; ok {
			return p, true
		}
	}
	return FormatPolicy{}, false
}

// extractLuma returns the leading width*height bytes of the plane: the
// 8-bit luma image that precedes the chroma data in 4:2:0 planar
// layouts.
func extractLuma(plane []byte, width, height uint32) []byte {
	n := int(width) * int(height)
	if n > len(plane) {
		n = len(plane)
	}
	return plane[:n]
}

// FourCCString converts a fourcc code to its four-character form.
func FourCCString(format uint32) string {
	b := make([]byte, 4)
	b[0] = byte(format & 0xFF)
	b[1] = byte((format >> 8) & 0xFF)
	b[2] = byte((format >> 16) & 0xFF)
	b[3] = byte((format >> 24) & 0xFF)
	return string(b)
}
