package iface

import (
	"fmt"
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/PAL/ioctl"
	"multitun/infrastructure/network/framing"
	"multitun/infrastructure/settings"
	"os"

	"golang.org/x/sys/unix"
)

const tunDevicePath = "/dev/net/tun"

// LinuxBackend opens the TUN clone device once per queue. With more than one
// queue every open attaches to the same interface through IFF_MULTI_QUEUE.
type LinuxBackend struct {
	devicePath string
	commander  ioctl.Commander
	logger     logging.Logger
}

func NewLinuxBackend(commander ioctl.Commander, logger logging.Logger) apptun.Backend {
	return &LinuxBackend{
		devicePath: tunDevicePath,
		commander:  commander,
		logger:     logger,
	}
}

func (b *LinuxBackend) Allocate(cfg settings.Tun) (apptun.Adapter, error) {
	queues := cfg.QueueCount()
	flags := uint16(unix.IFF_TUN | unix.IFF_NO_PI)
	if queues > 1 {
		flags |= unix.IFF_MULTI_QUEUE
	}

	name := cfg.Name
	files := make([]*os.File, 0, queues)
	for q := 0; q < queues; q++ {
		f, assigned, err := b.attach(name, flags)
		if err != nil {
			closeFiles(files)
			return nil, fmt.Errorf("queue %d: %w", q, err)
		}
		// Later queues must attach to the name the kernel picked for the first.
		name = assigned
		files = append(files, f)
	}

	control, err := openControl()
	if err != nil {
		closeFiles(files)
		return nil, err
	}
	return newInterface(name, files, control, b.commander, framing.NewPassthrough(), b.logger), nil
}

func (b *LinuxBackend) attach(name string, flags uint16) (*os.File, string, error) {
	req, err := ioctl.NewIfReq(ioctl.NativeLayout, name)
	if err != nil {
		return nil, "", err
	}
	fd, err := unix.Open(b.devicePath, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", b.devicePath, os.NewSyscallError("open", err))
	}
	req.SetUint16(flags)
	if err := b.commander.Ioctl(fd, unix.TUNSETIFF, req); err != nil {
		_ = unix.Close(fd)
		return nil, "", fmt.Errorf("TUNSETIFF %q: %w", name, err)
	}
	assigned := req.Name()
	if assigned == "" {
		assigned = name
	}
	return os.NewFile(uintptr(fd), b.devicePath), assigned, nil
}
