package mapping

import (
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// findHidrawFor globs /dev/hidraw* looking for the sibling node whose
// (bustype, vendor, product) identity matches an evdev device's. hidraw
// devices don't carry the version field evdev does, so the match is on
// the three fields hidraw_devinfo actually has.
func findHidrawFor(id ID) (string, bool) {
	paths, err := filepath.Glob("/dev/hidraw*")
	if err != nil {
		return "", false
	}
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			continue
		}
		var info hidrawDevinfo
		err = ioctlFd(fd, ctlHidRawGetRawInfo, unsafe.Pointer(&info))
		unix.Close(fd)
		if err != nil {
			continue
		}
		if info.Bustype == uint32(id.Bustype) &&
			uint16(info.Vendor) == id.Vendor &&
			uint16(info.Product) == id.Product {
			return path, true
		}
	}
	return "", false
}

// parseHidrawButtons reads a hidraw node's raw HID report descriptor and
// scans its bytes for the first Usage Page (Button) / Usage Minimum /
// Usage Maximum triplet, from which the kernel's button event codes are
// derived as 0x120 + (usage - 1) (BTN_MISC-relative numbering, matching
// how the kernel's hid-input driver assigns EV_KEY codes to HID button
// usages).
func parseHidrawButtons(path string) ([]int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	var size int32
	if err := ioctlFd(fd, ctlHidRawGetDescSize, unsafe.Pointer(&size)); err != nil {
		return nil, err
	}

	var rdesc hidrawReportDescriptor
	rdesc.Size = uint32(size)
	if err := ioctlFd(fd, hidIocgRdesc, unsafe.Pointer(&rdesc)); err != nil {
		return nil, err
	}
	desc := rdesc.Value[:size]

	usagePageFound := false
	usageMin, usageMax := -1, -1
	for i := 0; i < len(desc)-1; i++ {
		switch {
		case desc[i] == 0x05 && desc[i+1] == 0x09:
			usagePageFound = true
			i++
		case usagePageFound && desc[i] == 0x19 && i+1 < len(desc):
			usageMin = int(desc[i+1])
			i++
		case usagePageFound && desc[i] == 0x29 && i+1 < len(desc):
			usageMax = int(desc[i+1])
			i++
			goto found
		}
	}
found:
	if !usagePageFound || usageMin < 0 || usageMax < 0 || usageMin > usageMax {
		return nil, errNoButtonUsageRange
	}

	codes := make([]int, 0, usageMax-usageMin+1)
	for u := usageMin; u <= usageMax && len(codes) < MaxButtons; u++ {
		codes = append(codes, 0x120+(u-1))
	}
	return codes, nil
}
