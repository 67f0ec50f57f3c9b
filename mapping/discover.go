package mapping

import (
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// skipNameSubstring marks input devices this daemon never treats as
// joystick sources, regardless of what capabilities they report.
const skipNameSubstring = "vc4-hdmi"

// discoverCounters threads the process-wide axis/button indices through a
// discovery pass, mirroring global_axis_index/global_button_index in the
// mapping store this was ported from.
type discoverCounters struct {
	axis   int
	button int
}

// Discover opens every /dev/input/eventN node, reads its name and
// identity, and fills in its axis/button capability bitmaps. Devices
// whose name contains "vc4-hdmi" are skipped entirely. Freshly assigned
// axis indices come from counters, which callers share across a single
// discovery pass so that axis numbering is stable regardless of merge
// order.
func Discover(counters *discoverCounters) ([]*InputDevice, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("mapping.Discover: %w", err)
	}

	devices := make([]*InputDevice, 0, len(paths))
	for _, path := range paths {
		dev, err := discoverOne(path, counters)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("mapping: skipping device")
			continue
		}
		if dev == nil {
			continue
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func discoverOne(path string, counters *discoverCounters) (*InputDevice, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping.discoverOne: open %s: %w", path, err)
	}

	dev := &InputDevice{Path: path, fd: fd}
	for code := range dev.AxisMap {
		dev.AxisMap[code].MappedAxis = -1
		dev.AxisMap[code].VirtualAxis = -1
	}
	for code := range dev.ButtonMap {
		dev.ButtonMap[code].MappedButton = -1
	}

	name := make([]byte, 256)
	if err := ioctlFd(fd, evIocgName(uintptr(len(name))), unsafe.Pointer(&name[0])); err != nil {
		dev.Name = "Unknown"
	} else {
		dev.Name = unix.ByteSliceToString(name)
	}

	if strings.Contains(dev.Name, skipNameSubstring) {
		unix.Close(fd)
		return nil, nil
	}

	var id ID
	if err := ioctlFd(fd, ctlEvGetID, unsafe.Pointer(&id)); err == nil {
		dev.ID = id
	}

	readAxisCapabilities(dev, counters)
	readButtonCapabilities(dev)

	if path, ok := findHidrawFor(dev.ID); ok {
		if codes, err := parseHidrawButtons(path); err == nil {
			for _, code := range codes {
				if code >= 0 && code < keyCnt {
					dev.HasButton[code] = true
				}
			}
		}
	}

	return dev, nil
}

func readAxisCapabilities(dev *InputDevice, counters *discoverCounters) {
	bitmask := make([]byte, absCnt/8+1)
	if err := ioctlFd(dev.fd, evIocgBit(evAbs, uintptr(len(bitmask))), unsafe.Pointer(&bitmask[0])); err != nil {
		return
	}
	for code := 0; code < absCnt; code++ {
		if bitmask[code/8]&(1<<uint(code%8)) == 0 {
			continue
		}
		var info AbsInfo
		if err := ioctlFd(dev.fd, evIocgAbs(code), unsafe.Pointer(&info)); err != nil {
			continue
		}
		dev.HasAxis[code] = true
		dev.AbsInfo[code] = info
		dev.AxisMap[code].MappedAxis = counters.axis
		counters.axis++
		dev.NumAxes++
		if dev.NumAxes <= 8 {
			dev.AxisMap[code].VirtualAxis = dev.NumAxes - 1
		} else {
			dev.AxisMap[code].VirtualAxis = (dev.NumAxes - 1) % 8
		}
	}
}

func readButtonCapabilities(dev *InputDevice) {
	bitmask := make([]byte, (keyCnt+7)/8)
	if err := ioctlFd(dev.fd, evIocgBit(evKey, uintptr(len(bitmask))), unsafe.Pointer(&bitmask[0])); err != nil {
		return
	}
	for code := 0; code < keyCnt; code++ {
		if bitmask[code/8]&(1<<uint(code%8)) == 0 {
			continue
		}
		dev.HasButton[code] = true
		dev.NumButtons++
	}
}
