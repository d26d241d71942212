//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

// Formats returns all pixel formats the device advertises, in driver order.
func (d *Device) Formats() ([]FormatInfo, error) {
	var formats []FormatInfo

	for i := uint32(0); ; i++ {
		fmtdesc := v4l2Fmtdesc{
			index: i,
			typ:   v4l2BufTypeVideoCapture,
		}

		if ioctlErr := ioctl(d.fd, vidiocEnumFmt, unsafe.Pointer(&fmtdesc)); ioctlErr != nil {
			if errors.Is(ioctlErr, syscall.EINVAL) {
				break // End of enumeration
			}
			return nil, fmt.Errorf("failed to enumerate format %d: %w", i, ioctlErr)
		}

		formats = append(formats, FormatInfo{
			PixelFormat: fmtdesc.pixelformat,
			FormatName:  cstr(fmtdesc.description[:]),
			Emulated:    fmtdesc.flags&v4l2FmtFlagEmulated != 0,
		})
	}

	return formats, nil
}

// Format returns the device's current capture format. Drivers initialize
// this to a sane default, so it serves as the driver-suggested
// configuration before any negotiation.
func (d *Device) Format() (PixFormat, error) {
	f := v4l2Format{typ: v4l2BufTypeVideoCapture}
	if err := ioctl(d.fd, vidiocGFmt, unsafe.Pointer(&f)); err != nil {
		return PixFormat{}, fmt.Errorf("failed to get format: %w", err)
	}
	return pixFromKernel(&f.pix), nil
}

// TryFormat asks the driver to validate the format without applying it.
// The driver rewrites fields it cannot satisfy; pix is updated in place
// with the adjusted values. Adjusted reports whether anything changed.
func (d *Device) TryFormat(pix *PixFormat) (adjusted bool, err error) {
	f := v4l2Format{typ: v4l2BufTypeVideoCapture}
	pixToKernel(pix, &f.pix)

	if err := ioctl(d.fd, vidiocTryFmt, unsafe.Pointer(&f)); err != nil {
		return false, fmt.Errorf("failed to try format: %w", err)
	}

	adjusted = f.pix.width != pix.Width ||
		f.pix.height != pix.Height ||
		f.pix.pixelformat != pix.PixelFormat
	*pix = pixFromKernel(&f.pix)
	return adjusted, nil
}

// SetFormat applies the format to the device. The driver may still adjust
// fields; pix is updated in place with the values actually in effect.
func (d *Device) SetFormat(pix *PixFormat) error {
	f := v4l2Format{typ: v4l2BufTypeVideoCapture}
	pixToKernel(pix, &f.pix)

	if err := ioctl(d.fd, vidiocSFmt, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("failed to set format: %w", err)
	}

	*pix = pixFromKernel(&f.pix)
	return nil
}

func pixFromKernel(k *v4l2PixFormat) PixFormat {
	return PixFormat{
		Width:        k.width,
		Height:       k.height,
		PixelFormat:  k.pixelformat,
		BytesPerLine: k.bytesperline,
		SizeImage:    k.sizeimage,
	}
}

func pixToKernel(p *PixFormat, k *v4l2PixFormat) {
	k.width = p.Width
	k.height = p.Height
	k.pixelformat = p.PixelFormat
	k.field = v4l2FieldNone
	k.bytesperline = p.BytesPerLine
	k.sizeimage = p.SizeImage
}
