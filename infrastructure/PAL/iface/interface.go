//go:build linux || darwin

// Package iface allocates virtual point-to-point adapters and configures
// them through an AF_INET control socket.
package iface

import (
	"errors"
	"fmt"
	"io/fs"
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/PAL/ioctl"
	"multitun/infrastructure/settings"
	"net/netip"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

var (
	// ErrNoAvailableUnit means every adapter unit in the search range is taken.
	ErrNoAvailableUnit = fmt.Errorf("no available adapter unit: %w", fs.ErrNotExist)
	// ErrMultiQueueUnsupported is returned when more than one queue is
	// requested from a device model that has a single data socket per adapter.
	ErrMultiQueueUnsupported = errors.New("multiple queues are not supported on this platform")
)

var _ apptun.Adapter = (*Interface)(nil)

// Interface is one allocated adapter. Data-path files are handed out through
// Files and owned by the caller; the control socket belongs to the Interface.
type Interface struct {
	name      string
	files     []*os.File
	control   int
	commander ioctl.Commander
	layout    ioctl.Layout
	requests  ioctl.Requests
	framer    apptun.Framer
	logger    logging.Logger

	closeOnce sync.Once
	closeErr  error
}

func newInterface(
	name string,
	files []*os.File,
	control int,
	commander ioctl.Commander,
	framer apptun.Framer,
	logger logging.Logger,
) *Interface {
	return &Interface{
		name:      name,
		files:     files,
		control:   control,
		commander: commander,
		layout:    ioctl.NativeLayout,
		requests:  ioctl.NativeRequests,
		framer:    framer,
		logger:    logger,
	}
}

func (i *Interface) Name() string          { return i.name }
func (i *Interface) Files() []*os.File     { return i.files }
func (i *Interface) Framer() apptun.Framer { return i.framer }

// Configure applies cfg in order MTU, address, netmask, destination,
// broadcast, up, then ownership. Steps that already succeeded stay applied
// when a later one fails.
func (i *Interface) Configure(cfg settings.Tun) error {
	if cfg.MTU > 0 {
		if _, err := i.SetMTU(cfg.MTU); err != nil {
			return err
		}
	}
	if cfg.Address.IsValid() {
		if _, err := i.SetAddress(cfg.Address); err != nil {
			return err
		}
	}
	if cfg.Netmask.IsValid() {
		if _, err := i.SetNetmask(cfg.Netmask); err != nil {
			return err
		}
	}
	if cfg.Destination.IsValid() {
		if _, err := i.SetDestination(cfg.Destination); err != nil {
			return err
		}
	}
	if cfg.Broadcast.IsValid() {
		if _, err := i.SetBroadcast(cfg.Broadcast); err != nil {
			return err
		}
	}
	if cfg.Up {
		if _, err := i.SetFlags(unix.IFF_UP | unix.IFF_RUNNING); err != nil {
			return err
		}
	}
	return i.applyOwnership(cfg)
}

func (i *Interface) MTU() (int, error) {
	req, err := i.get(i.requests.GetMTU, "mtu")
	if err != nil {
		return 0, err
	}
	return int(req.Int32()), nil
}

func (i *Interface) SetMTU(mtu int) (int, error) {
	req, err := ioctl.NewIfReq(i.layout, i.name)
	if err != nil {
		return 0, err
	}
	req.SetInt32(int32(mtu))
	if err := i.commander.Ioctl(i.control, i.requests.SetMTU, req); err != nil {
		return 0, fmt.Errorf("set mtu of %s: %w", i.name, err)
	}
	return mtu, nil
}

func (i *Interface) Address() (netip.Addr, error) {
	return i.getAddr(i.requests.GetAddr, "address")
}

func (i *Interface) SetAddress(addr netip.Addr) (netip.Addr, error) {
	return i.setAddr(i.requests.SetAddr, "address", addr)
}

func (i *Interface) Destination() (netip.Addr, error) {
	return i.getAddr(i.requests.GetDstAddr, "destination")
}

func (i *Interface) SetDestination(addr netip.Addr) (netip.Addr, error) {
	return i.setAddr(i.requests.SetDstAddr, "destination", addr)
}

func (i *Interface) Netmask() (netip.Addr, error) {
	return i.getAddr(i.requests.GetNetmask, "netmask")
}

func (i *Interface) SetNetmask(mask netip.Addr) (netip.Addr, error) {
	return i.setAddr(i.requests.SetNetmask, "netmask", mask)
}

func (i *Interface) Flags() (int16, error) {
	req, err := i.get(i.requests.GetFlags, "flags")
	if err != nil {
		return 0, err
	}
	return req.Int16(), nil
}

// SetFlags never clears a bit: flags are ORed into the current value and the
// combined value is written back and returned.
func (i *Interface) SetFlags(flags int16) (int16, error) {
	current, err := i.Flags()
	if err != nil {
		return 0, err
	}
	combined := current | flags
	req, err := ioctl.NewIfReq(i.layout, i.name)
	if err != nil {
		return 0, err
	}
	req.SetInt16(combined)
	if err := i.commander.Ioctl(i.control, i.requests.SetFlags, req); err != nil {
		return 0, fmt.Errorf("set flags of %s: %w", i.name, err)
	}
	return combined, nil
}

// Close releases the control socket once. Data-path files are not touched.
func (i *Interface) Close() error {
	i.closeOnce.Do(func() {
		if err := unix.Close(i.control); err != nil {
			i.closeErr = os.NewSyscallError("close", err)
		}
	})
	return i.closeErr
}

func (i *Interface) get(request uint, what string) (*ioctl.IfReq, error) {
	req, err := ioctl.NewIfReq(i.layout, i.name)
	if err != nil {
		return nil, err
	}
	if err := i.commander.Ioctl(i.control, request, req); err != nil {
		return nil, fmt.Errorf("get %s of %s: %w", what, i.name, err)
	}
	return req, nil
}

func (i *Interface) getAddr(request uint, what string) (netip.Addr, error) {
	req, err := i.get(request, what)
	if err != nil {
		return netip.Addr{}, err
	}
	return req.Inet4Addr(), nil
}

func (i *Interface) setAddr(request uint, what string, addr netip.Addr) (netip.Addr, error) {
	req, err := ioctl.NewIfReq(i.layout, i.name)
	if err != nil {
		return netip.Addr{}, err
	}
	if err := req.SetInet4Addr(addr); err != nil {
		return netip.Addr{}, fmt.Errorf("set %s of %s: %w", what, i.name, err)
	}
	if err := i.commander.Ioctl(i.control, request, req); err != nil {
		return netip.Addr{}, fmt.Errorf("set %s of %s: %w", what, i.name, err)
	}
	return addr.Unmap(), nil
}

// openControl opens the AF_INET datagram socket used for SIOC* requests.
func openControl() (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
