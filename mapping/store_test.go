package mapping

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRoundTripPreservesAxisAndButtonFields(t *testing.T) {
	dev := &InputDevice{
		Path: "/dev/input/event3",
		Name: "Test Pad",
		ID:   ID{Bustype: 3, Vendor: 0x045e, Product: 0x028e, Version: 1},
	}
	for code := range dev.AxisMap {
		dev.AxisMap[code].MappedAxis = -1
		dev.AxisMap[code].VirtualAxis = -1
	}
	for code := range dev.ButtonMap {
		dev.ButtonMap[code].MappedButton = -1
	}
	dev.HasAxis[0] = true
	dev.AxisMap[0] = AxisMapping{MappedAxis: 0, DeadZone: 1500, Invert: true, VirtualJoystick: 1, VirtualAxis: 3}
	dev.HasButton[0x120] = true
	dev.ButtonMap[0x120] = ButtonMapping{MappedButton: 7, VirtualJoystick: 0}

	rec := deviceToRecord(dev)
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var rec2 deviceRecord
	if err := json.Unmarshal(data, &rec2); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	got := recordToDevice(rec2)

	if got.ID != dev.ID {
		t.Fatalf("ID = %+v, want %+v", got.ID, dev.ID)
	}
	if !got.HasAxis[0] {
		t.Fatalf("axis 0 not marked present after round-trip")
	}
	if got.AxisMap[0] != dev.AxisMap[0] {
		t.Fatalf("AxisMap[0] = %+v, want %+v", got.AxisMap[0], dev.AxisMap[0])
	}
	if !got.HasButton[0x120] {
		t.Fatalf("button 0x120 not marked present after round-trip")
	}
	if got.ButtonMap[0x120] != dev.ButtonMap[0x120] {
		t.Fatalf("ButtonMap[0x120] = %+v, want %+v", got.ButtonMap[0x120], dev.ButtonMap[0x120])
	}
}

func TestLoadDefaultsMissingFields(t *testing.T) {
	raw := `{
		"global_axis_index": 1,
		"global_button_index": 1,
		"devices": [{
			"path": "/dev/input/event0",
			"name": "Old Pad",
			"bustype": 3,
			"vendor": 1,
			"product": 2,
			"version": 1,
			"axes": [{"code": 0, "mapped_axis": 9, "dead_zone": 99999, "invert": false}],
			"buttons": {"288": {"mapped_button": 2, "virtual_joystick": 1}}
		}]
	}`

	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	file, devices, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if file.GlobalAxisIndex != 1 || file.GlobalButtonIndex != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", file.GlobalAxisIndex, file.GlobalButtonIndex)
	}
	if len(devices) != 1 {
		t.Fatalf("len(devices) = %d, want 1", len(devices))
	}
	dev := devices[0]

	// dead_zone clamped to [0, 32767].
	if dev.AxisMap[0].DeadZone != 32767 {
		t.Fatalf("DeadZone = %d, want 32767 (clamped)", dev.AxisMap[0].DeadZone)
	}
	// virtual_axis absent -> mapped_axis % 8.
	if dev.AxisMap[0].VirtualAxis != 9%8 {
		t.Fatalf("VirtualAxis = %d, want %d", dev.AxisMap[0].VirtualAxis, 9%8)
	}
	// virtual_joystick absent -> 0.
	if dev.AxisMap[0].VirtualJoystick != 0 {
		t.Fatalf("VirtualJoystick = %d, want 0", dev.AxisMap[0].VirtualJoystick)
	}
}

func TestMergeKeepsKnownDeviceAddsNewWithDefaults(t *testing.T) {
	saved := &InputDevice{ID: ID{Bustype: 3, Vendor: 1, Product: 2, Version: 1}}
	saved.HasAxis[0] = true
	saved.AxisMap[0] = AxisMapping{MappedAxis: 0, DeadZone: 500, VirtualJoystick: 1, VirtualAxis: 2}

	knownDetected := &InputDevice{ID: ID{Bustype: 3, Vendor: 1, Product: 2, Version: 1}}
	knownDetected.HasAxis[0] = true
	knownDetected.AxisMap[0] = AxisMapping{MappedAxis: 0, DeadZone: 0, VirtualJoystick: 0, VirtualAxis: 0}

	newDevice := &InputDevice{ID: ID{Bustype: 3, Vendor: 9, Product: 9, Version: 1}}
	newDevice.HasAxis[1] = true
	newDevice.AxisMap[1] = AxisMapping{MappedAxis: 1, DeadZone: 0, VirtualJoystick: 0, VirtualAxis: 1}

	merged := Merge([]*InputDevice{knownDetected, newDevice}, []*InputDevice{saved})

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].AxisMap[0] != saved.AxisMap[0] {
		t.Fatalf("known device did not inherit saved mapping: got %+v, want %+v", merged[0].AxisMap[0], saved.AxisMap[0])
	}
	if merged[1].AxisMap[1].VirtualAxis != 1 {
		t.Fatalf("new device should keep its default assignment, got %+v", merged[1].AxisMap[1])
	}
}

func TestMergeRestoresButtonNotYetRediscovered(t *testing.T) {
	saved := &InputDevice{ID: ID{Bustype: 3, Vendor: 1, Product: 2, Version: 1}}
	saved.HasButton[0x120] = true
	saved.ButtonMap[0x120] = ButtonMapping{MappedButton: 7, VirtualJoystick: 1}

	detected := &InputDevice{ID: ID{Bustype: 3, Vendor: 1, Product: 2, Version: 1}}
	detected.ButtonMap[0x120].MappedButton = -1

	merged := Merge([]*InputDevice{detected}, []*InputDevice{saved})

	if !merged[0].HasButton[0x120] {
		t.Fatalf("button 0x120 not restored as present after merge")
	}
	if merged[0].ButtonMap[0x120] != saved.ButtonMap[0x120] {
		t.Fatalf("ButtonMap[0x120] = %+v, want %+v", merged[0].ButtonMap[0x120], saved.ButtonMap[0x120])
	}
}
