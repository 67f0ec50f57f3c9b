// Package report runs the concurrent HID report generator: it
// multiplexes readiness over every mapped input device, remaps evdev
// axis/button events onto the two virtual joysticks' state, and writes
// diff-driven 33-byte interrupt reports to the gadget's two HID
// endpoints.
package report

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"golang.org/x/sys/unix"

	"github.com/McTechFly/proxy-usb-hid/gadget"
	"github.com/McTechFly/proxy-usb-hid/mapping"
	"github.com/McTechFly/proxy-usb-hid/rawgadget"
)

// Linux input event type codes (linux/input-event-codes.h). Only the
// two types this gadget remaps are named.
const (
	evKey = 0x01
	evAbs = 0x03
)

// inputEventSize is sizeof(struct input_event) on a 64-bit kernel: two
// 8-byte timeval fields, then type/code/value. The generator reads
// exactly this many bytes per ready fd and ignores anything else the
// kernel's event record layout might add, per spec.
const inputEventSize = 24

// pollTimeoutMillis bounds how long Run blocks in poll(2) between
// context-cancellation checks; it is not a rate limit.
const pollTimeoutMillis = 250

// joystickState is one virtual joystick's report payload, kept between
// iterations so only changed fields trigger a retransmission.
type joystickState struct {
	reportID byte
	axes     [8]int16
	buttons  [16]byte
	dirty    bool
}

// Generator is the per-attach HID report pipeline. One Generator is
// created per SET_CONFIGURATION and runs until its context is
// cancelled or the host resets/disconnects.
type Generator struct {
	dev       *rawgadget.Device
	devices   []*mapping.InputDevice
	epHandles [mapping.VirtualJoysticks]int
	state     [mapping.VirtualJoysticks]joystickState
}

// New builds a Generator that writes to the two interrupt endpoints
// identified by epHandles (the raw-gadget handles EPEnable returned),
// remapping events from devices.
func New(dev *rawgadget.Device, devices []*mapping.InputDevice, epHandles [mapping.VirtualJoysticks]int) *Generator {
	g := &Generator{dev: dev, devices: devices, epHandles: epHandles}
	for j := range g.state {
		g.state[j].reportID = gadget.ReportIDFor(j)
	}
	return g
}

// Run drives the readiness/remap/transmit loop until ctx is cancelled,
// the host resets the gadget (ESHUTDOWN on write), or a non-recoverable
// transport error occurs.
func (g *Generator) Run(ctx context.Context) error {
	pollFds := make([]unix.PollFd, len(g.devices))
	for i, dev := range g.devices {
		pollFds[i] = unix.PollFd{Fd: int32(dev.Fd()), Events: unix.POLLIN}
	}

	buf := make([]byte, inputEventSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := unix.Poll(pollFds, pollTimeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("report.Run: poll: %w", err)
		}
		if n > 0 {
			for i := range pollFds {
				if pollFds[i].Revents&unix.POLLIN == 0 {
					continue
				}
				pollFds[i].Revents = 0
				nr, err := unix.Read(int(pollFds[i].Fd), buf)
				if err != nil || nr < inputEventSize {
					continue
				}
				g.handleEvent(g.devices[i], buf)
			}
			if err := g.flush(); err != nil {
				if rawgadget.IsShutdown(err) {
					return nil
				}
				return fmt.Errorf("report.Run: %w", err)
			}
		}

		time.Sleep(time.Millisecond)
	}
}

func (g *Generator) handleEvent(dev *mapping.InputDevice, buf []byte) {
	typ := binary.LittleEndian.Uint16(buf[16:18])
	code := int(binary.LittleEndian.Uint16(buf[18:20]))
	value := int32(binary.LittleEndian.Uint32(buf[20:24]))

	switch typ {
	case evAbs:
		g.handleAbs(dev, code, value)
	case evKey:
		g.handleKey(dev, code, value)
	}
}

// handleAbs rescales one EV_ABS sample into a signed 16-bit value,
// applies invert/dead-zone, and updates the target virtual joystick's
// axis slot if the code is present, mapped, and the value changed.
func (g *Generator) handleAbs(dev *mapping.InputDevice, code int, value int32) {
	if code < 0 || code >= len(dev.HasAxis) || !dev.HasAxis[code] {
		return
	}
	m := dev.AxisMap[code]
	if m.VirtualJoystick < 0 || m.VirtualJoystick >= mapping.VirtualJoysticks {
		return
	}
	if m.VirtualAxis < 0 || m.VirtualAxis >= 8 {
		return
	}

	info := dev.AbsInfo[code]
	v := value
	if v < info.Minimum {
		v = info.Minimum
	}
	if v > info.Maximum {
		v = info.Maximum
	}

	rng := info.Maximum - info.Minimum
	var signed int32
	if rng != 0 {
		signed = int32((int64(v-info.Minimum)*65535)/int64(rng)) - 32768
		if signed > math.MaxInt16 {
			signed = math.MaxInt16
		}
		if signed < math.MinInt16 {
			signed = math.MinInt16
		}
	}

	if m.Invert {
		if signed == math.MinInt16 {
			signed = math.MaxInt16
		} else {
			signed = -signed
		}
	}

	if m.DeadZone > 0 && abs32(signed) < int32(m.DeadZone) {
		signed = 0
	}

	out := int16(signed)
	st := &g.state[m.VirtualJoystick]
	if st.axes[m.VirtualAxis] != out {
		st.axes[m.VirtualAxis] = out
		st.dirty = true
	}
}

// handleKey records a button press/release. Auto-repeat (value == 2) is
// ignored. A button not previously recorded as present is recorded now
// (late discovery): the kernel's capability bitmap query at discovery
// time can miss buttons a device only reports once actually pressed.
func (g *Generator) handleKey(dev *mapping.InputDevice, code int, value int32) {
	if value == 2 {
		return
	}
	if code < 0 || code >= len(dev.HasButton) {
		return
	}
	if !dev.HasButton[code] {
		dev.HasButton[code] = true
	}

	m := dev.ButtonMap[code]
	if m.MappedButton < 0 || m.MappedButton > 127 {
		return
	}
	if m.VirtualJoystick < 0 || m.VirtualJoystick >= mapping.VirtualJoysticks {
		return
	}

	byteIdx := m.MappedButton / 8
	bit := byte(1) << uint(m.MappedButton%8)

	st := &g.state[m.VirtualJoystick]
	was := st.buttons[byteIdx]&bit != 0
	is := value != 0
	if was == is {
		return
	}
	if is {
		st.buttons[byteIdx] |= bit
	} else {
		st.buttons[byteIdx] &^= bit
	}
	st.dirty = true
}

// flush transmits a 33-byte interrupt report for every virtual joystick
// whose state changed since the last iteration.
func (g *Generator) flush() error {
	for j := range g.state {
		st := &g.state[j]
		if !st.dirty {
			continue
		}
		buf := make([]byte, 33)
		buf[0] = st.reportID
		for a := 0; a < 8; a++ {
			binary.LittleEndian.PutUint16(buf[1+2*a:], uint16(st.axes[a]))
		}
		copy(buf[17:33], st.buttons[:])

		if _, err := g.dev.EPWrite(g.epHandles[j], buf); err != nil {
			return err
		}
		st.dirty = false
	}
	return nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
