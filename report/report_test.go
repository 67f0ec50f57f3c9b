package report

import (
	"testing"

	"github.com/McTechFly/proxy-usb-hid/mapping"
)

func newTestDevice() *mapping.InputDevice {
	return &mapping.InputDevice{}
}

func TestHandleAbsRescaleInvertDeadZone(t *testing.T) {
	dev := newTestDevice()
	code := 0
	dev.HasAxis[code] = true
	dev.AbsInfo[code] = mapping.AbsInfo{Minimum: -127, Maximum: 127}
	dev.AxisMap[code] = mapping.AxisMapping{
		DeadZone:        1000,
		Invert:          false,
		VirtualJoystick: 1,
		VirtualAxis:     3,
	}

	g := &Generator{}
	tests := []struct {
		value int32
		want  int16
	}{
		{-127, -32768},
		{0, 0},       // within dead zone -> forced to 0
		{64, 16512},  // rescaled per ((v-min)*65535)/range-32768, outside dead zone
		{127, 32767}, // exact max
	}
	for _, tt := range tests {
		g.handleAbs(dev, code, tt.value)
		got := g.state[1].axes[3]
		if got != tt.want {
			t.Fatalf("value=%d: axis = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestHandleAbsUnassignedVirtualAxisIgnored(t *testing.T) {
	dev := newTestDevice()
	code := 1
	dev.HasAxis[code] = true
	dev.AbsInfo[code] = mapping.AbsInfo{Minimum: 0, Maximum: 255}
	dev.AxisMap[code] = mapping.AxisMapping{VirtualJoystick: 0, VirtualAxis: -1}

	g := &Generator{}
	g.handleAbs(dev, code, 200)
	for j := range g.state {
		for a := 0; a < 8; a++ {
			if g.state[j].axes[a] != 0 {
				t.Fatalf("unassigned axis wrote state: joystick=%d axis=%d value=%d", j, a, g.state[j].axes[a])
			}
		}
	}
	if g.state[0].dirty || g.state[1].dirty {
		t.Fatalf("unassigned axis should not mark state dirty")
	}
}

func TestHandleAbsZeroRangeYieldsZero(t *testing.T) {
	dev := newTestDevice()
	code := 2
	dev.HasAxis[code] = true
	dev.AbsInfo[code] = mapping.AbsInfo{Minimum: 10, Maximum: 10}
	dev.AxisMap[code] = mapping.AxisMapping{VirtualJoystick: 0, VirtualAxis: 0}

	g := &Generator{}
	g.handleAbs(dev, code, 10)
	if g.state[0].axes[0] != 0 {
		t.Fatalf("zero-range axis = %d, want 0", g.state[0].axes[0])
	}
}

func TestHandleAbsInvertSaturates(t *testing.T) {
	dev := newTestDevice()
	code := 3
	dev.HasAxis[code] = true
	dev.AbsInfo[code] = mapping.AbsInfo{Minimum: -32768, Maximum: 32767}
	dev.AxisMap[code] = mapping.AxisMapping{Invert: true, VirtualJoystick: 0, VirtualAxis: 0}

	g := &Generator{}
	g.handleAbs(dev, code, -32768)
	if g.state[0].axes[0] != 32767 {
		t.Fatalf("inverted min axis = %d, want 32767 (saturated, not -32768 wraparound)", g.state[0].axes[0])
	}
}

func TestHandleKeyPressReleaseSetsAndClearsBit(t *testing.T) {
	dev := newTestDevice()
	const physicalCode = 0x120
	dev.HasButton[physicalCode] = true
	dev.ButtonMap[physicalCode] = mapping.ButtonMapping{MappedButton: 7, VirtualJoystick: 0}

	g := &Generator{}

	g.handleKey(dev, physicalCode, 1)
	if g.state[0].buttons[0]&(1<<7) == 0 {
		t.Fatalf("button 7 not set after press")
	}
	if !g.state[0].dirty {
		t.Fatalf("press did not mark state dirty")
	}
	g.state[0].dirty = false

	g.handleKey(dev, physicalCode, 0)
	if g.state[0].buttons[0]&(1<<7) != 0 {
		t.Fatalf("button 7 not cleared after release")
	}
	if !g.state[0].dirty {
		t.Fatalf("release did not mark state dirty")
	}
}

func TestHandleKeyAutoRepeatIgnored(t *testing.T) {
	dev := newTestDevice()
	const physicalCode = 0x121
	dev.HasButton[physicalCode] = true
	dev.ButtonMap[physicalCode] = mapping.ButtonMapping{MappedButton: 0, VirtualJoystick: 0}

	g := &Generator{}
	g.handleKey(dev, physicalCode, 1)
	g.state[0].dirty = false

	g.handleKey(dev, physicalCode, 2) // auto-repeat
	if g.state[0].dirty {
		t.Fatalf("auto-repeat (value==2) should not change dirty state")
	}
}

func TestHandleKeyUnmappedIgnored(t *testing.T) {
	dev := newTestDevice()
	const physicalCode = 0x122
	dev.HasButton[physicalCode] = true
	dev.ButtonMap[physicalCode] = mapping.ButtonMapping{MappedButton: -1, VirtualJoystick: 0}

	g := &Generator{}
	g.handleKey(dev, physicalCode, 1)
	if g.state[0].dirty {
		t.Fatalf("unmapped button press should not mark state dirty")
	}
}

func TestHandleKeyLateDiscoveryRecordsPresence(t *testing.T) {
	dev := newTestDevice()
	const physicalCode = 0x123
	dev.ButtonMap[physicalCode] = mapping.ButtonMapping{MappedButton: -1, VirtualJoystick: 0}

	g := &Generator{}
	g.handleKey(dev, physicalCode, 1)
	if !dev.HasButton[physicalCode] {
		t.Fatalf("button not recorded as present after first event")
	}
}
