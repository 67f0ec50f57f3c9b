// Package mapping discovers Linux evdev input devices, correlates them
// with their hidraw siblings to recover button usage ranges, and persists
// the physical-to-virtual axis/button mapping used to drive the composite
// joystick HID reports.
package mapping

const (
	// absCnt mirrors ABS_CNT from linux/input-event-codes.h.
	absCnt = 0x40
	// keyCnt mirrors KEY_CNT (KEY_MAX+1) from linux/input-event-codes.h.
	keyCnt = 0x2ff + 1

	// MaxButtons is the number of button slots available on a single
	// virtual joystick's HID report.
	MaxButtons = 128

	// VirtualJoysticks is the number of composite HID interfaces exposed
	// by the gadget; virtual joystick indices are in [0, VirtualJoysticks).
	VirtualJoysticks = 2
)

// ID identifies an input device by its bus, vendor, product and version,
// matching the kernel's struct input_id (and struct hidraw_devinfo, which
// shares the same triplet under different field names).
type ID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// AbsInfo mirrors struct input_absinfo: the calibration envelope the
// kernel reports for one absolute axis.
type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// AxisMapping describes how one physical axis code is rescaled and
// routed onto a virtual joystick's report.
type AxisMapping struct {
	// MappedAxis is the process-global axis index assigned at discovery
	// time; it has no effect on report generation but is preserved for
	// parity with the persisted mapping file.
	MappedAxis int
	// DeadZone is the symmetric zero band around center, clamped to
	// [0, 32767].
	DeadZone int
	// Invert negates the rescaled value before dead-zone thresholding.
	Invert bool
	// VirtualJoystick selects which of the two HID interfaces (0 or 1)
	// receives this axis.
	VirtualJoystick int
	// VirtualAxis selects the report slot (0-7) this axis writes into.
	VirtualAxis int
}

// ButtonMapping describes how one physical button code is routed onto a
// virtual joystick's button field.
type ButtonMapping struct {
	// MappedButton is the report bit index (0-127) this button writes
	// to, or -1 if the button is unmapped.
	MappedButton    int
	VirtualJoystick int
}

// InputDevice is a physical evdev source together with its discovered
// capabilities and the mapping applied to route its axes and buttons
// onto the emulated joysticks.
type InputDevice struct {
	Path string
	Name string
	ID   ID

	fd int

	HasAxis   [absCnt]bool
	AbsInfo   [absCnt]AbsInfo
	AxisMap   [absCnt]AxisMapping
	HasButton [keyCnt]bool
	ButtonMap [keyCnt]ButtonMapping

	NumAxes    int
	NumButtons int
}

// File is the on-disk mapping file format: the global axis/button
// counters plus one record per known input device.
type File struct {
	GlobalAxisIndex   int            `json:"global_axis_index"`
	GlobalButtonIndex int            `json:"global_button_index"`
	Devices           []deviceRecord `json:"devices"`
}

type axisRecord struct {
	Code       int  `json:"code"`
	MappedAxis int  `json:"mapped_axis"`
	DeadZone   int  `json:"dead_zone"`
	Invert     bool `json:"invert"`
	// VirtualJoystick and VirtualAxis are pointers so that a mapping
	// file hand-edited to omit them is distinguishable from one that
	// explicitly sets them to zero: an absent VirtualJoystick defaults
	// to 0, an absent VirtualAxis defaults to MappedAxis%8.
	VirtualJoystick *int `json:"virtual_joystick,omitempty"`
	VirtualAxis     *int `json:"virtual_axis,omitempty"`
}

type buttonRecord struct {
	MappedButton    int `json:"mapped_button"`
	VirtualJoystick int `json:"virtual_joystick"`
}

type deviceRecord struct {
	Path       string                  `json:"path"`
	Name       string                  `json:"name"`
	Bustype    uint16                  `json:"bustype"`
	Vendor     uint16                  `json:"vendor"`
	Product    uint16                  `json:"product"`
	Version    uint16                  `json:"version"`
	NumAxes    int                     `json:"num_axes"`
	NumButtons int                     `json:"num_buttons"`
	Axes       []axisRecord            `json:"axes"`
	Buttons    map[string]buttonRecord `json:"buttons"`
}

// Fd returns the open, non-blocking file descriptor backing this device.
// It is exported for the report generator's readiness multiplexing.
func (d *InputDevice) Fd() int {
	return d.fd
}
