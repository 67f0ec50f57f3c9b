package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ResolvePath returns the mapping file path this daemon actually uses:
// mapping.json next to the running executable. (An earlier revision of
// the program this was ported from computed a second,
// never-read-or-written "mapping/mapping.json" path alongside this one;
// only the executable-sibling path was ever exercised, so that is the
// only one this package implements.)
func ResolvePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("mapping.ResolvePath: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "mapping.json"), nil
}

// Load reads a mapping file, returning the persisted devices (without
// opening their fds) and the global axis/button counters.
func Load(path string) (*File, []*InputDevice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping.Load: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("mapping.Load: %w", err)
	}

	devices := make([]*InputDevice, len(file.Devices))
	for i, rec := range file.Devices {
		devices[i] = recordToDevice(rec)
	}
	return &file, devices, nil
}

// Save persists devices and the current global counters to path as
// indented JSON.
func Save(path string, devices []*InputDevice, counters discoverCounters) error {
	file := File{
		GlobalAxisIndex:   counters.axis,
		GlobalButtonIndex: counters.button,
		Devices:           make([]deviceRecord, len(devices)),
	}
	for i, dev := range devices {
		file.Devices[i] = deviceToRecord(dev)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("mapping.Save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("mapping.Save: %w", err)
	}
	return nil
}

func deviceToRecord(dev *InputDevice) deviceRecord {
	rec := deviceRecord{
		Path:       dev.Path,
		Name:       dev.Name,
		Bustype:    dev.ID.Bustype,
		Vendor:     dev.ID.Vendor,
		Product:    dev.ID.Product,
		Version:    dev.ID.Version,
		NumAxes:    dev.NumAxes,
		NumButtons: dev.NumButtons,
		Buttons:    make(map[string]buttonRecord),
	}
	for code := 0; code < absCnt; code++ {
		if !dev.HasAxis[code] {
			continue
		}
		m := dev.AxisMap[code]
		vj, va := m.VirtualJoystick, m.VirtualAxis
		rec.Axes = append(rec.Axes, axisRecord{
			Code:            code,
			MappedAxis:      m.MappedAxis,
			DeadZone:        m.DeadZone,
			Invert:          m.Invert,
			VirtualJoystick: &vj,
			VirtualAxis:     &va,
		})
	}
	for code := 0; code < keyCnt; code++ {
		if !dev.HasButton[code] {
			continue
		}
		m := dev.ButtonMap[code]
		rec.Buttons[strconv.Itoa(code)] = buttonRecord{
			MappedButton:    m.MappedButton,
			VirtualJoystick: m.VirtualJoystick,
		}
	}
	return rec
}

func recordToDevice(rec deviceRecord) *InputDevice {
	dev := &InputDevice{
		Path: rec.Path,
		Name: rec.Name,
		ID: ID{
			Bustype: rec.Bustype,
			Vendor:  rec.Vendor,
			Product: rec.Product,
			Version: rec.Version,
		},
		NumAxes:    rec.NumAxes,
		NumButtons: rec.NumButtons,
	}
	for code := range dev.AxisMap {
		dev.AxisMap[code].MappedAxis = -1
		dev.AxisMap[code].VirtualAxis = -1
	}
	for code := range dev.ButtonMap {
		dev.ButtonMap[code].MappedButton = -1
	}

	for _, ax := range rec.Axes {
		if ax.Code < 0 || ax.Code >= absCnt {
			continue
		}
		dev.HasAxis[ax.Code] = true
		dz := ax.DeadZone
		if dz < 0 {
			dz = 0
		}
		if dz > 32767 {
			dz = 32767
		}
		virtualJoystick := 0
		if ax.VirtualJoystick != nil {
			virtualJoystick = *ax.VirtualJoystick
		}
		virtualAxis := ax.MappedAxis % 8
		if ax.VirtualAxis != nil {
			virtualAxis = *ax.VirtualAxis
		}
		dev.AxisMap[ax.Code] = AxisMapping{
			MappedAxis:      ax.MappedAxis,
			DeadZone:        dz,
			Invert:          ax.Invert,
			VirtualJoystick: virtualJoystick,
			VirtualAxis:     virtualAxis,
		}
	}
	for codeStr, btn := range rec.Buttons {
		code, err := strconv.Atoi(codeStr)
		if err != nil || code < 0 || code >= keyCnt {
			continue
		}
		dev.HasButton[code] = true
		dev.ButtonMap[code] = ButtonMapping{
			MappedButton:    btn.MappedButton,
			VirtualJoystick: btn.VirtualJoystick,
		}
	}
	return dev
}

// sameIdentity reports whether two devices share the bus/vendor/product/
// version 4-tuple used to correlate a freshly detected device with one
// recorded in a prior mapping file.
func sameIdentity(a, b ID) bool {
	return a.Bustype == b.Bustype && a.Vendor == b.Vendor &&
		a.Product == b.Product && a.Version == b.Version
}

// Merge overlays saved mapping state onto freshly detected devices,
// matched by identity. Detected devices with no matching saved record
// keep the defaults Discover assigned them (a newly plugged-in
// controller). Saved records with no matching detected device are
// dropped, since there is nothing left to apply them to.
//
// Button mappings are overlaid whenever the saved record has one,
// regardless of whether this device re-reports that button capability
// at this startup: buttons are discovered late by design (the report
// generator sets HasButton on first press, since a capability query at
// discovery time can miss one), so gating the overlay on current
// detection would silently drop a saved mapping the first time a
// button hasn't been pressed yet this session.
func Merge(detected, saved []*InputDevice) []*InputDevice {
	for _, dev := range detected {
		for _, old := range saved {
			if !sameIdentity(dev.ID, old.ID) {
				continue
			}
			for code := range dev.AxisMap {
				if dev.HasAxis[code] && old.HasAxis[code] {
					dev.AxisMap[code] = old.AxisMap[code]
				}
			}
			for code := range dev.ButtonMap {
				if old.HasButton[code] {
					dev.ButtonMap[code] = old.ButtonMap[code]
					dev.HasButton[code] = true
				}
			}
			dev.NumAxes = old.NumAxes
			dev.NumButtons = old.NumButtons
			break
		}
	}
	return detected
}

// InitPhysicalDevices is the daemon's startup sequence: resolve the
// mapping file path, discover the currently attached evdev devices,
// merge in any saved mapping for devices still present, and rewrite the
// mapping file with the merged result.
func InitPhysicalDevices() ([]*InputDevice, error) {
	path, err := ResolvePath()
	if err != nil {
		return nil, err
	}

	counters := discoverCounters{}
	var saved []*InputDevice
	if file, devices, err := Load(path); err == nil {
		counters.axis = file.GlobalAxisIndex
		counters.button = file.GlobalButtonIndex
		saved = devices
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("mapping: load failed, falling back to fresh mapping")
	}

	detected, err := Discover(&counters)
	if err != nil {
		return nil, err
	}

	merged := Merge(detected, saved)

	if len(merged) > 0 {
		if err := Save(path, merged, counters); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
