package mapping

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctlFd issues a raw ioctl against fd, writing the kernel's reply
// directly into the memory arg points at. Every caller in this package
// passes the address of a fixed-layout Go struct or byte slice backing
// array, so no intermediate serialization step is needed.
func ioctlFd(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
