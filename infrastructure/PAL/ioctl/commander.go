//go:build linux || darwin

package ioctl

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

type Commander interface {
	// Ioctl issues request against fd with req as the argument.
	Ioctl(fd int, request uint, req *IfReq) error
	// IoctlInt issues request passing value by value, as TUNSETPERSIST and friends expect.
	IoctlInt(fd int, request uint, value int) error
}

type UnixCommander struct {
}

func NewUnixCommander() Commander {
	return &UnixCommander{}
}

func (c UnixCommander) Ioctl(fd int, request uint, req *IfReq) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(request), uintptr(unsafe.Pointer(&req.raw[0])))
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}

func (c UnixCommander) IoctlInt(fd int, request uint, value int) error {
	if err := unix.IoctlSetInt(fd, request, value); err != nil {
		return os.NewSyscallError("ioctl", err)
	}
	return nil
}
