package gadget

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BuildConfiguration serializes the composite configuration descriptor
// set — config header, then interface 0 + its HID descriptor + its
// endpoint, then the same triplet for interface 1 — and back-patches
// WTotalLength once the full length is known. When otherSpeed is true
// the config header's descriptor type is flipped to
// TypeOtherSpeedConfig, matching the GET_DESCRIPTOR(OTHER_SPEED_CONFIG)
// response required of high-speed devices.
func BuildConfiguration(otherSpeed bool) ([]byte, error) {
	buf := &bytes.Buffer{}

	parts := []interface{}{
		Config,
		Interface0, HID0, Endpoint0,
		Interface1, HID1, Endpoint1,
	}
	for _, p := range parts {
		if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("gadget.BuildConfiguration: %w", err)
		}
	}

	data := buf.Bytes()
	totalLength := len(data)
	binary.LittleEndian.PutUint16(data[2:4], uint16(totalLength))
	if otherSpeed {
		data[1] = TypeOtherSpeedConfig
	}
	return data, nil
}

// Strings holds the fixed set of string descriptors this gadget
// advertises, indexed by the StringID* constants.
var Strings = map[int]string{
	StringIDManufacturer: "MyManufacturer",
	StringIDProduct:      "Composite Joystick",
	StringIDSerial:       "0001",
	StringIDInterface0:   "Composite Joystick 0",
	StringIDInterface1:   "Composite Joystick 1",
}

// BuildStringDescriptor returns the USB string descriptor payload for
// index. Index 0 is the special language-ID descriptor (English, US);
// any index not present in Strings returns the empty two-byte
// descriptor the original gadget falls back to for unrecognized
// indices, rather than stalling.
func BuildStringDescriptor(index int) []byte {
	if index == StringIDLang {
		return []byte{4, TypeString, 0x09, 0x04}
	}
	s, ok := Strings[index]
	if !ok {
		return []byte{2, TypeString}
	}
	out := make([]byte, 2+2*len(s))
	out[0] = byte(len(out))
	out[1] = TypeString
	for i, r := range []byte(s) {
		out[2+2*i] = r
		out[2+2*i+1] = 0
	}
	return out
}

// ReportDescriptorFor returns the byte-exact HID report descriptor for
// the given interface index (0 or 1).
func ReportDescriptorFor(ifaceIndex int) []byte {
	if ifaceIndex == 0 {
		return HIDReport0
	}
	return HIDReport1
}

// ReportIDFor returns the HID report ID (1 or 2) this gadget's interrupt
// report generator stamps into byte 0 of the interface's reports,
// matching the Report ID item baked into HIDReport0/HIDReport1.
func ReportIDFor(ifaceIndex int) byte {
	if ifaceIndex == 0 {
		return HIDReport0[7]
	}
	return HIDReport1[7]
}

// Serialize little-endian-encodes a single fixed-layout descriptor
// struct (DeviceDescriptor, QualifierDescriptor, ...) the same way
// BuildConfiguration encodes the composite set, for EP0 handlers that
// answer GET_DESCRIPTOR requests for a single descriptor rather than the
// full configuration block.
func Serialize(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("gadget.Serialize: %w", err)
	}
	return buf.Bytes(), nil
}
