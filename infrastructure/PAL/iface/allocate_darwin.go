package iface

import (
	"errors"
	"fmt"
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/PAL/ioctl"
	"multitun/infrastructure/PAL/platform"
	"multitun/infrastructure/network/framing"
	"multitun/infrastructure/settings"
	"os"

	"golang.org/x/sys/unix"
)

const (
	utunControlName = "com.apple.net.utun_control"
	sysProtoControl = 2 // SYSPROTO_CONTROL
	utunOptIfName   = 2 // UTUN_OPT_IFNAME
)

// DarwinBackend negotiates a utun adapter over a kernel control socket.
type DarwinBackend struct {
	commander ioctl.Commander
	logger    logging.Logger
	connect   func(unit uint32) (*os.File, string, error)
}

func NewDarwinBackend(commander ioctl.Commander, logger logging.Logger) apptun.Backend {
	return &DarwinBackend{
		commander: commander,
		logger:    logger,
		connect:   connectUnit,
	}
}

func (b *DarwinBackend) Allocate(cfg settings.Tun) (apptun.Adapter, error) {
	if queues := cfg.QueueCount(); queues > 1 && !platform.Capabilities().MultiQueue() {
		return nil, fmt.Errorf("%d queues requested: %w", queues, ErrMultiQueueUnsupported)
	}
	units, err := candidateUnits(cfg.Name)
	if err != nil {
		return nil, err
	}

	var (
		f    *os.File
		name string
	)
	// Any failed unit is skipped; only exhausting the range is an error.
	for _, unit := range units {
		f, name, err = b.connect(unit)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EBUSY) {
			b.logger.Printf("utun%d: %v", unit, err)
		}
	}
	if f == nil {
		if cfg.Name != "" {
			return nil, fmt.Errorf("%s: %w", cfg.Name, err)
		}
		return nil, ErrNoAvailableUnit
	}

	control, err := openControl()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return newInterface(name, []*os.File{f}, control, b.commander, framing.NewFamilyHeader(), b.logger), nil
}

// connectUnit connects a fresh control socket to utun unit and returns it as
// a pollable file along with the name the kernel reports.
func connectUnit(unit uint32) (*os.File, string, error) {
	fd, err := unix.Socket(unix.AF_SYSTEM, unix.SOCK_DGRAM, sysProtoControl)
	if err != nil {
		return nil, "", os.NewSyscallError("socket", err)
	}
	fail := func(call string, err error) (*os.File, string, error) {
		_ = unix.Close(fd)
		return nil, "", os.NewSyscallError(call, err)
	}

	var info unix.CtlInfo
	copy(info.Name[:], utunControlName)
	if err := unix.IoctlCtlInfo(fd, &info); err != nil {
		return fail("ioctl", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrCtl{ID: info.Id, Unit: scUnit(unit)}); err != nil {
		return fail("connect", err)
	}
	name, err := unix.GetsockoptString(fd, sysProtoControl, utunOptIfName)
	if err != nil {
		return fail("getsockopt", err)
	}
	// utun sockets come up blocking.
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("fcntl", err)
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), name), name, nil
}
