// Package rawgadget wraps /dev/raw-gadget, the Linux kernel interface
// that lets a userspace process drive a USB Device Controller directly:
// fetch control events, answer EP0 transfers, and enable/write/disable
// non-control endpoints.
package rawgadget

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devicePath = "/dev/raw-gadget"

// Device is an open /dev/raw-gadget session bound to one UDC.
type Device struct {
	fd int
}

// Event is the decoded result of a USB_RAW_IOCTL_EVENT_FETCH call. Ctrl
// is only meaningful when Type == EventControl.
type Event struct {
	Type uint32
	Ctrl ControlRequest
}

// Open opens /dev/raw-gadget. The returned Device must be initialized
// with Init before any other operation is valid.
func Open() (*Device, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("rawgadget.Open: %w", err)
	}
	return &Device{fd: fd}, nil
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return int(r), errno
	}
	return int(r), nil
}

// Init binds the session to a UDC (driver) and the gadget instance name
// it should back (device), at the given USB_SPEED_* value.
func (d *Device) Init(speed uint8, driver, device string) error {
	var arg rawInit
	copy(arg.DriverName[:], driver)
	copy(arg.DeviceName[:], device)
	arg.Speed = speed
	if _, err := d.ioctl(ctlInit, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("rawgadget.Init: %w", err)
	}
	return nil
}

// Run tells the UDC driver to start accepting bus traffic.
func (d *Device) Run() error {
	if _, err := d.ioctl(ctlRun, nil); err != nil {
		return fmt.Errorf("rawgadget.Run: %w", err)
	}
	return nil
}

// EventFetch blocks until the next bus event (CONNECT, CONTROL, RESET,
// etc.) arrives and returns it decoded.
func (d *Device) EventFetch() (Event, error) {
	var raw struct {
		Hdr  rawEventHeader
		Ctrl ControlRequest
	}
	raw.Hdr.Length = uint32(unsafe.Sizeof(raw.Ctrl))
	if _, err := d.ioctl(ctlEventFetch, unsafe.Pointer(&raw)); err != nil {
		return Event{}, fmt.Errorf("rawgadget.EventFetch: %w", err)
	}
	return Event{Type: raw.Hdr.Type, Ctrl: raw.Ctrl}, nil
}

// ep0Transfer issues EP0_READ or EP0_WRITE, clamping data to length
// bytes so callers can reuse a single scratch buffer across requests of
// varying size.
func (d *Device) ep0Transfer(req uintptr, data []byte, length int) (int, error) {
	type io struct {
		Hdr  rawEPIOHeader
		Data [256]byte
	}
	var buf io
	buf.Hdr.EP = 0
	if length > len(buf.Data) {
		length = len(buf.Data)
	}
	buf.Hdr.Length = uint32(length)
	copy(buf.Data[:length], data)

	n, err := d.ioctl(req, unsafe.Pointer(&buf))
	if err != nil {
		return n, err
	}
	if req == ctlEP0Read {
		copy(data, buf.Data[:length])
	}
	return n, nil
}

// EP0Write sends data as the IN data stage of the current control
// transfer.
func (d *Device) EP0Write(data []byte) (int, error) {
	n, err := d.ep0Transfer(ctlEP0Write, data, len(data))
	if err != nil {
		return n, fmt.Errorf("rawgadget.EP0Write: %w", err)
	}
	return n, nil
}

// EP0Read reads the OUT data stage of the current control transfer into
// buf, reading at most len(buf) bytes.
func (d *Device) EP0Read(buf []byte) (int, error) {
	n, err := d.ep0Transfer(ctlEP0Read, buf, len(buf))
	if err != nil {
		return n, fmt.Errorf("rawgadget.EP0Read: %w", err)
	}
	return n, nil
}

// EP0Stall stalls the control endpoint, signaling the host that the
// current request is not supported.
func (d *Device) EP0Stall() error {
	if _, err := d.ioctl(ctlEP0Stall, nil); err != nil {
		return fmt.Errorf("rawgadget.EP0Stall: %w", err)
	}
	return nil
}

// EndpointDescriptor is the minimal descriptor EPEnable needs: address,
// transfer type, max packet size and polling interval.
type EndpointDescriptor struct {
	Address       uint8
	Attributes    uint8
	MaxPacketSize uint16
	Interval      uint8
}

// EPEnable enables a non-control endpoint and returns the raw-gadget
// endpoint handle later calls address it by.
func (d *Device) EPEnable(desc EndpointDescriptor) (int, error) {
	// BRefresh/BSynchAddress stay zero: they're the audio-class trailer
	// the kernel's ioctl still reads past the standard 7-byte descriptor.
	arg := rawEndpointDescriptor{
		BLength:          7,
		BDescriptorType:  0x05, // USB_DT_ENDPOINT
		BEndpointAddress: desc.Address,
		BmAttributes:     desc.Attributes,
		WMaxPacketSize:   desc.MaxPacketSize,
		BInterval:        desc.Interval,
	}
	n, err := d.ioctl(ctlEPEnable, unsafe.Pointer(&arg))
	if err != nil {
		return 0, fmt.Errorf("rawgadget.EPEnable: %w", err)
	}
	return n, nil
}

// EPDisable disables a previously enabled endpoint.
func (d *Device) EPDisable(ep int) error {
	arg := uint32(ep)
	if _, err := d.ioctl(ctlEPDisable, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("rawgadget.EPDisable: %w", err)
	}
	return nil
}

// EPWrite writes a report to ep. Unlike every other transport call it
// returns the raw errno unwrapped, ESHUTDOWN included, so callers can
// test it with IsShutdown: the HID report generator uses this to detect
// the host disconnecting/resetting and unwind cleanly instead of failing
// loudly, mirroring usb_raw_ep_write_may_fail in the program this
// transport layer was modeled on.
func (d *Device) EPWrite(ep int, data []byte) (int, error) {
	type io struct {
		Hdr  rawEPIOHeader
		Data [256]byte
	}
	var buf io
	buf.Hdr.EP = uint16(ep)
	buf.Hdr.Length = uint32(len(data))
	n := copy(buf.Data[:], data)
	buf.Hdr.Length = uint32(n)

	return d.ioctl(ctlEPWrite, unsafe.Pointer(&buf))
}

// IsShutdown reports whether err is the ESHUTDOWN condition EPWrite
// returns when the host has reset or disconnected from the gadget.
func IsShutdown(err error) bool {
	errno, ok := err.(unix.Errno)
	return ok && errno == unix.ESHUTDOWN
}

// Configure tells the UDC the SET_CONFIGURATION status stage has
// completed and the gadget is now configured.
func (d *Device) Configure() error {
	if _, err := d.ioctl(ctlConfigure, nil); err != nil {
		return fmt.Errorf("rawgadget.Configure: %w", err)
	}
	return nil
}

// VBusDraw reports the gadget's power draw in 2mA units, as recorded in
// the configuration descriptor's bMaxPower field.
func (d *Device) VBusDraw(power uint32) error {
	arg := power
	if _, err := d.ioctl(ctlVBusDraw, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("rawgadget.VBusDraw: %w", err)
	}
	return nil
}

// EPsInfo enumerates the UDC's available endpoints.
func (d *Device) EPsInfo() ([]EndpointInfo, error) {
	var raw rawEPsInfo
	if _, err := d.ioctl(ctlEPsInfo, unsafe.Pointer(&raw)); err != nil {
		return nil, fmt.Errorf("rawgadget.EPsInfo: %w", err)
	}
	out := make([]EndpointInfo, 0, rawEPsNumMax)
	for _, ep := range raw.Eps {
		if ep.Addr == 0 {
			continue
		}
		name := string(ep.Name[:])
		for i, b := range ep.Name {
			if b == 0 {
				name = string(ep.Name[:i])
				break
			}
		}
		out = append(out, EndpointInfo{Name: name, Address: ep.Addr})
	}
	return out, nil
}

// Close releases the raw-gadget session.
func (d *Device) Close() error {
	return unix.Close(d.fd)
}
