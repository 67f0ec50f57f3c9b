package mapping

// Ioctl request codes for the evdev and hidraw character device
// interfaces, built the same way the rawgadget package builds its
// raw-gadget request codes: via goioctl's IOC helpers rather than
// hand-rolled bit arithmetic.

import (
	ioctl "github.com/daedaluz/goioctl"
	"unsafe"
)

var (
	ctlEvKeyVersion = ioctl.IOR('E', 0x01, unsafe.Sizeof(int32(0)))
	ctlEvGetID      = ioctl.IOR('E', 0x02, unsafe.Sizeof(ID{}))

	ctlHidRawGetDescSize = ioctl.IOR('H', 0x01, unsafe.Sizeof(int32(0)))
	ctlHidRawGetRawInfo  = ioctl.IOR('H', 0x03, unsafe.Sizeof(hidrawDevinfo{}))
)

const (
	hidrawDescSizeMax = 4096
	evAbs             = 0x03
	evKey             = 0x01
)

// evIocgName returns the request code to read a device's name string
// into a buffer of the given length.
func evIocgName(length uintptr) uintptr {
	return ioctl.IOR('E', 0x06, length)
}

// evIocgBit returns the request code to read the capability bitmap for
// the given event type into a buffer of the given length.
func evIocgBit(evType int, length uintptr) uintptr {
	return ioctl.IOR('E', uintptr(0x20+evType), length)
}

// evIocgAbs returns the request code to read the AbsInfo record for one
// absolute axis code.
func evIocgAbs(code int) uintptr {
	return ioctl.IOR('E', uintptr(0x40+code), unsafe.Sizeof(AbsInfo{}))
}

// hidIocgRdesc is the request code to read the raw HID report descriptor
// into a fixed-size struct hidraw_report_descriptor buffer.
var hidIocgRdesc = ioctl.IOR('H', 0x02, unsafe.Sizeof(hidrawReportDescriptor{}))

// hidrawDevinfo mirrors struct hidraw_devinfo.
type hidrawDevinfo struct {
	Bustype uint32
	Vendor  int16
	Product int16
}

// hidrawReportDescriptor mirrors struct hidraw_report_descriptor, which
// carries a fixed 4096-byte buffer regardless of the descriptor's actual
// size.
type hidrawReportDescriptor struct {
	Size  uint32
	Value [hidrawDescSizeMax]byte
}
