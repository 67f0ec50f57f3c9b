package rawgadget

// Ioctl request codes for /dev/raw-gadget, built with the
// goioctl.IOW/IOR/IOWR/IO helpers (the same helpers the mapping package
// uses for its evdev and hidraw request codes).

import (
	ioctl "github.com/daedaluz/goioctl"
	"unsafe"
)

var (
	ctlInit       = ioctl.IOW('U', 0, unsafe.Sizeof(rawInit{}))
	ctlRun        = ioctl.IO('U', 1)
	ctlEventFetch = ioctl.IOR('U', 2, unsafe.Sizeof(rawEventHeader{}))
	ctlEP0Write   = ioctl.IOW('U', 3, unsafe.Sizeof(rawEPIOHeader{}))
	ctlEP0Read    = ioctl.IOWR('U', 4, unsafe.Sizeof(rawEPIOHeader{}))
	// struct usb_endpoint_descriptor is 9 bytes packed in the kernel
	// header (it carries the two trailing audio-class fields bRefresh
	// and bSynchAddress); Go's Sizeof would round the struct up to the
	// next alignment boundary, so the size is given explicitly to keep
	// this ioctl number matching the kernel's.
	ctlEPEnable  = ioctl.IOW('U', 5, 9)
	ctlEPDisable = ioctl.IOW('U', 6, unsafe.Sizeof(uint32(0)))
	ctlEPWrite   = ioctl.IOW('U', 7, unsafe.Sizeof(rawEPIOHeader{}))
	ctlEPRead    = ioctl.IOWR('U', 8, unsafe.Sizeof(rawEPIOHeader{}))
	ctlConfigure = ioctl.IO('U', 9)
	ctlVBusDraw  = ioctl.IOW('U', 10, unsafe.Sizeof(uint32(0)))
	ctlEPsInfo   = ioctl.IOR('U', 11, unsafe.Sizeof(rawEPsInfo{}))
	ctlEP0Stall  = ioctl.IO('U', 12)
)

// rawInit mirrors struct usb_raw_init.
type rawInit struct {
	DriverName [128]byte
	DeviceName [128]byte
	Speed      uint8
}

// Event type codes, matching enum usb_raw_event_type.
const (
	EventInvalid    = 0
	EventConnect    = 1
	EventControl    = 2
	EventSuspend    = 3
	EventResume     = 4
	EventReset      = 5
	EventDisconnect = 6
)

// rawEventHeader mirrors the fixed-size prefix of struct usb_raw_event;
// Data is handled as a separately-sized trailing buffer by EventFetch.
type rawEventHeader struct {
	Type   uint32
	Length uint32
}

// ControlRequest mirrors struct usb_ctrlrequest, the eight-byte SETUP
// packet delivered with a USB_RAW_EVENT_CONTROL event.
type ControlRequest struct {
	BRequestType uint8
	BRequest     uint8
	WValue       uint16
	WIndex       uint16
	WLength      uint16
}

// rawEPIOHeader mirrors the fixed-size prefix of struct usb_raw_ep_io.
type rawEPIOHeader struct {
	EP     uint16
	Flags  uint16
	Length uint32
}

// rawEndpointDescriptor mirrors struct usb_endpoint_descriptor as
// passed to USB_RAW_IOCTL_EP_ENABLE, including the two audio-class
// fields (BRefresh, BSynchAddress) that trailing padding would
// otherwise hide from the ioctl size.
type rawEndpointDescriptor struct {
	BLength          uint8
	BDescriptorType  uint8
	BEndpointAddress uint8
	BmAttributes     uint8
	WMaxPacketSize   uint16
	BInterval        uint8
	BRefresh         uint8
	BSynchAddress    uint8
}

type rawEPCaps struct {
	Bits uint32 // type_control:1 type_iso:1 type_bulk:1 type_int:1 dir_in:1 dir_out:1
}

type rawEPLimits struct {
	MaxPacketLimit uint16
	MaxStreams     uint16
	Reserved       uint32
}

const rawEPNameMax = 16
const rawEPsNumMax = 30

type rawEPInfo struct {
	Name   [rawEPNameMax]byte
	Addr   uint32
	Caps   rawEPCaps
	Limits rawEPLimits
}

type rawEPsInfo struct {
	Eps [rawEPsNumMax]rawEPInfo
}

// EndpointInfo is the public, decoded view of one UDC endpoint reported
// by EPsInfo.
type EndpointInfo struct {
	Name    string
	Address uint32
}
