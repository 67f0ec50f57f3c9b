package gadget

// HIDReport0 and HIDReport1 are byte-identical HID report descriptors,
// one per emulated joystick interface, differentiated only by their
// Report ID. Each describes a Generic Desktop Joystick application
// collection with eight signed 16-bit axes (X, Y, Z, Rx, Ry, Rz, Slider,
// Dial) followed by a 128-bit button field.
var HIDReport0 = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x04, // Usage (Joystick)
	0xA1, 0x01, // Collection (Application)
	0x85, 0x01, //   Report ID (1)
	0x16, 0x00, 0x80, //   Logical Minimum (-32768)
	0x26, 0xFF, 0x7F, //   Logical Maximum (32767)
	0x75, 0x10, //   Report Size (16)
	0x95, 0x08, //   Report Count (8)
	0x09, 0x30, //   Usage (X)
	0x09, 0x31, //   Usage (Y)
	0x09, 0x32, //   Usage (Z)
	0x09, 0x33, //   Usage (Rx)
	0x09, 0x34, //   Usage (Ry)
	0x09, 0x35, //   Usage (Rz)
	0x09, 0x36, //   Usage (Slider)
	0x09, 0x37, //   Usage (Dial)
	0x81, 0x02, //   Input (Data,Var,Abs)
	0x05, 0x09, //   Usage Page (Button)
	0x19, 0x01, //   Usage Minimum (Button 1)
	0x29, 0x80, //   Usage Maximum (Button 128)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x80, //   Report Count (128)
	0x81, 0x02, //   Input (Data,Var,Abs)
	0xC0, // End Collection
}

var HIDReport1 = []byte{
	0x05, 0x01,
	0x09, 0x04,
	0xA1, 0x01,
	0x85, 0x02, // Report ID (2)
	0x16, 0x00, 0x80,
	0x26, 0xFF, 0x7F,
	0x75, 0x10,
	0x95, 0x08,
	0x09, 0x30,
	0x09, 0x31,
	0x09, 0x32,
	0x09, 0x33,
	0x09, 0x34,
	0x09, 0x35,
	0x09, 0x36,
	0x09, 0x37,
	0x81, 0x02,
	0x05, 0x09,
	0x19, 0x01,
	0x29, 0x80,
	0x15, 0x00,
	0x25, 0x01,
	0x75, 0x01,
	0x95, 0x80,
	0x81, 0x02,
	0xC0,
}
