// Package control drives endpoint zero: it answers standard and HID
// class control requests, serializes the composite descriptor set on
// demand, and starts the HID report generator once the host issues
// SET_CONFIGURATION.
package control

// bmRequestType bit layout (USB 2.0 spec table 9-2). typeMask isolates
// the Standard/Class/Vendor/Reserved field; dirMask isolates the
// Host-to-Device/Device-to-Host direction bit. The values mirror the
// RequestType bitfield the teacher's own usb package defined for its
// host-side control transfers (constants.go/device.go); this package
// reuses the same bit layout on the device side of the same requests.
const (
	typeMask = 0x60
	typeStd  = 0x00
	typeCls  = 0x20

	dirMask = 0x80
	dirIn   = 0x80
)

// Standard request codes (USB 2.0 spec table 9-4), the device-side
// counterpart of the teacher's ReqGetDescriptor/ReqSetConfiguration/...
// constants in stddevice.go.
const (
	reqGetStatus        = 0x00
	reqClearFeature     = 0x01
	reqSetFeature       = 0x03
	reqSetAddress       = 0x05
	reqGetDescriptor    = 0x06
	reqSetDescriptor    = 0x07
	reqGetConfiguration = 0x08
	reqSetConfiguration = 0x09
	reqGetInterface     = 0x0A
	reqSetInterface     = 0x0B
)

// HID class request codes (HID 1.11 spec section 7.2).
const (
	reqHIDGetReport   = 0x01
	reqHIDGetIdle     = 0x02
	reqHIDGetProtocol = 0x03
	reqHIDSetReport   = 0x09
	reqHIDSetIdle     = 0x0A
	reqHIDSetProtocol = 0x0B
)
