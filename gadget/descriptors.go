// Package gadget holds the composite USB descriptor set exposed by the
// emulated joystick device: the device, qualifier and configuration
// descriptors, the two interfaces and their interrupt-IN endpoints, and
// the byte-exact HID report descriptors each interface advertises.
package gadget

// USB standard descriptor type codes (ch9.h), reused across the device,
// qualifier, config, interface and endpoint descriptors below.
const (
	TypeDevice           = 0x01
	TypeConfig           = 0x02
	TypeString           = 0x03
	TypeInterface        = 0x04
	TypeEndpoint         = 0x05
	TypeDeviceQualifier  = 0x06
	TypeOtherSpeedConfig = 0x07
	TypeHID              = 0x21
	TypeHIDReport        = 0x22
	EndpointXferInt      = 0x03
	ConfigAttOne         = 0x80
	ConfigAttSelfPowered = 0x40
	DirIn                = 0x80
)

// Device identity. VID/PID are the well-known "Linux Foundation" test
// values used by raw-gadget example gadgets; bcdDevice 0100H marks this
// as revision 1.0 of the composite joystick.
const (
	BcdUSB     = 0x0200
	USBVendor  = 0x1d6b
	USBProduct = 0x0101
	BcdDevice  = 0x0100

	MaxPacketControl = 64
	SpeedHigh        = 3
)

// String descriptor indices.
const (
	StringIDLang         = 0
	StringIDManufacturer = 1
	StringIDProduct      = 2
	StringIDSerial       = 3
	StringIDConfig       = 4
	StringIDInterface0   = 5
	StringIDInterface1   = 6
)

// Endpoint numbers for the two interrupt-IN report pipes.
const (
	EPNumIntIn0 = 1
	EPNumIntIn1 = 2
)

type DeviceDescriptor struct {
	BLength            uint8
	BDescriptorType    uint8
	BcdUSB             uint16
	BDeviceClass       uint8
	BDeviceSubClass    uint8
	BDeviceProtocol    uint8
	BMaxPacketSize0    uint8
	IdVendor           uint16
	IdProduct          uint16
	BcdDevice          uint16
	IManufacturer      uint8
	IProduct           uint8
	ISerialNumber      uint8
	BNumConfigurations uint8
}

type QualifierDescriptor struct {
	BLength            uint8
	BDescriptorType    uint8
	BcdUSB             uint16
	BDeviceClass       uint8
	BDeviceSubClass    uint8
	BDeviceProtocol    uint8
	BMaxPacketSize0    uint8
	BNumConfigurations uint8
	BReserved          uint8
}

// ConfigDescriptor is the composite configuration header. WTotalLength
// is filled in by BuildConfiguration once the full descriptor set has
// been laid out.
type ConfigDescriptor struct {
	BLength             uint8
	BDescriptorType     uint8
	WTotalLength        uint16
	BNumInterfaces      uint8
	BConfigurationValue uint8
	IConfiguration      uint8
	BmAttributes        uint8
	BMaxPower           uint8
}

type InterfaceDescriptor struct {
	BLength            uint8
	BDescriptorType    uint8
	BInterfaceNumber   uint8
	BAlternateSetting  uint8
	BNumEndpoints      uint8
	BInterfaceClass    uint8
	BInterfaceSubClass uint8
	BInterfaceProtocol uint8
	IInterface         uint8
}

type EndpointDescriptor struct {
	BLength          uint8
	BDescriptorType  uint8
	BEndpointAddress uint8
	BmAttributes     uint8
	WMaxPacketSize   uint16
	BInterval        uint8
}

// HIDDescriptor describes a single embedded class descriptor (the HID
// report descriptor), matching struct hid_descriptor for the
// bNumDescriptors == 1 case this gadget always uses.
type HIDDescriptor struct {
	BLength                 uint8
	BDescriptorType         uint8
	BcdHID                  uint16
	BCountryCode            uint8
	BNumDescriptors         uint8
	BReportDescriptorType   uint8
	WReportDescriptorLength uint16
}

var Device = DeviceDescriptor{
	BLength:            18,
	BDescriptorType:    TypeDevice,
	BcdUSB:             BcdUSB,
	BMaxPacketSize0:    MaxPacketControl,
	IdVendor:           USBVendor,
	IdProduct:          USBProduct,
	BcdDevice:          BcdDevice,
	IManufacturer:      StringIDManufacturer,
	IProduct:           StringIDProduct,
	ISerialNumber:      StringIDSerial,
	BNumConfigurations: 1,
}

var Qualifier = QualifierDescriptor{
	BLength:            10,
	BDescriptorType:    TypeDeviceQualifier,
	BcdUSB:             BcdUSB,
	BMaxPacketSize0:    MaxPacketControl,
	BNumConfigurations: 1,
}

var Config = ConfigDescriptor{
	BLength:             9,
	BDescriptorType:     TypeConfig,
	BNumInterfaces:      2,
	BConfigurationValue: 1,
	IConfiguration:      StringIDConfig,
	BmAttributes:        ConfigAttOne | ConfigAttSelfPowered,
	BMaxPower:           0x32,
}

var Interface0 = InterfaceDescriptor{
	BLength:          9,
	BDescriptorType:  TypeInterface,
	BInterfaceNumber: 0,
	BNumEndpoints:    1,
	BInterfaceClass:  0x03, // USB_CLASS_HID
	IInterface:       StringIDInterface0,
}

var Interface1 = InterfaceDescriptor{
	BLength:          9,
	BDescriptorType:  TypeInterface,
	BInterfaceNumber: 1,
	BNumEndpoints:    1,
	BInterfaceClass:  0x03,
	IInterface:       StringIDInterface1,
}

var Endpoint0 = EndpointDescriptor{
	BLength:          7,
	BDescriptorType:  TypeEndpoint,
	BEndpointAddress: DirIn | EPNumIntIn0,
	BmAttributes:     EndpointXferInt,
	WMaxPacketSize:   33,
	BInterval:        1,
}

var Endpoint1 = EndpointDescriptor{
	BLength:          7,
	BDescriptorType:  TypeEndpoint,
	BEndpointAddress: DirIn | EPNumIntIn1,
	BmAttributes:     EndpointXferInt,
	WMaxPacketSize:   33,
	BInterval:        1,
}

var HID0 = HIDDescriptor{
	BLength:                 9,
	BDescriptorType:         TypeHID,
	BcdHID:                  0x0110,
	BNumDescriptors:         1,
	BReportDescriptorType:   TypeHIDReport,
	WReportDescriptorLength: uint16(len(HIDReport0)),
}

var HID1 = HIDDescriptor{
	BLength:                 9,
	BDescriptorType:         TypeHID,
	BcdHID:                  0x0110,
	BNumDescriptors:         1,
	BReportDescriptorType:   TypeHIDReport,
	WReportDescriptorLength: uint16(len(HIDReport1)),
}
