package control

import (
	"testing"

	"github.com/McTechFly/proxy-usb-hid/gadget"
	"github.com/McTechFly/proxy-usb-hid/rawgadget"
)

func TestGetDescriptorDevice(t *testing.T) {
	ctrl := rawgadget.ControlRequest{
		BRequestType: dirIn | typeStd,
		BRequest:     reqGetDescriptor,
		WValue:       uint16(gadget.TypeDevice) << 8,
		WLength:      18,
	}
	data, handled, err := getDescriptor(ctrl)
	if err != nil {
		t.Fatalf("getDescriptor: %v", err)
	}
	if !handled {
		t.Fatalf("expected device descriptor request to be handled")
	}
	if len(data) != 18 {
		t.Fatalf("len(data) = %d, want 18", len(data))
	}
	if data[1] != gadget.TypeDevice {
		t.Fatalf("bDescriptorType = 0x%02x, want TypeDevice", data[1])
	}
}

func TestGetDescriptorReportByIndex(t *testing.T) {
	tests := []struct {
		name       string
		wIndex     uint16
		wantReport []byte
	}{
		{"interface 0", 0, gadget.HIDReport0},
		{"interface 1", 1, gadget.HIDReport1},
		{"interface other defaults to 1", 7, gadget.HIDReport1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := rawgadget.ControlRequest{
				BRequestType: dirIn | typeStd,
				BRequest:     reqGetDescriptor,
				WValue:       uint16(gadget.TypeHIDReport) << 8,
				WIndex:       tt.wIndex,
				WLength:      uint16(len(tt.wantReport)),
			}
			data, handled, err := getDescriptor(ctrl)
			if err != nil {
				t.Fatalf("getDescriptor: %v", err)
			}
			if !handled {
				t.Fatalf("expected HID report descriptor request to be handled")
			}
			if string(data) != string(tt.wantReport) {
				t.Fatalf("got report descriptor mismatch for %s", tt.name)
			}
		})
	}
}

func TestGetDescriptorStringLangID(t *testing.T) {
	ctrl := rawgadget.ControlRequest{
		BRequestType: dirIn | typeStd,
		BRequest:     reqGetDescriptor,
		WValue:       uint16(gadget.TypeString) << 8,
		WLength:      4,
	}
	data, handled, err := getDescriptor(ctrl)
	if err != nil {
		t.Fatalf("getDescriptor: %v", err)
	}
	if !handled {
		t.Fatalf("expected string descriptor request to be handled")
	}
	want := []byte{4, gadget.TypeString, 0x09, 0x04}
	if len(data) != len(want) {
		t.Fatalf("len(data) = %d, want %d", len(data), len(want))
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, data[i], want[i])
		}
	}
}

func TestGetDescriptorUnknownTypeUnhandled(t *testing.T) {
	ctrl := rawgadget.ControlRequest{
		BRequestType: dirIn | typeStd,
		BRequest:     reqGetDescriptor,
		WValue:       uint16(0x99) << 8,
	}
	_, handled, err := getDescriptor(ctrl)
	if err != nil {
		t.Fatalf("getDescriptor: %v", err)
	}
	if handled {
		t.Fatalf("expected unknown descriptor type to be unhandled (caller stalls EP0)")
	}
}

func TestHandleClassDispatch(t *testing.T) {
	s := &Server{}
	tests := []struct {
		name        string
		request     uint8
		wantHandled bool
	}{
		{"set report", reqHIDSetReport, true},
		{"set idle", reqHIDSetIdle, true},
		{"set protocol", reqHIDSetProtocol, true},
		{"get report unsupported", reqHIDGetReport, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := rawgadget.ControlRequest{BRequestType: typeCls, BRequest: tt.request}
			_, handled, err := s.handleClass(ctrl)
			if err != nil {
				t.Fatalf("handleClass: %v", err)
			}
			if handled != tt.wantHandled {
				t.Fatalf("handled = %v, want %v", handled, tt.wantHandled)
			}
		})
	}
}
