//go:build linux || darwin

// Package tuntest provides an in-memory adapter backend for tests of code
// built on queue handles. Every queue is one end of a non-blocking datagram
// socketpair; the test drives the other end.
package tuntest

import (
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/network/framing"
	"multitun/infrastructure/settings"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sys/unix"
)

// Adapter keeps configuration in memory.
type Adapter struct {
	// Peers are the raw descriptors of the opposite ends, one per queue.
	Peers []int
	// ConfigureErr, when set, fails Configure.
	ConfigureErr error

	mu         sync.Mutex
	files      []*os.File
	name       string
	mtu        int
	addr       netip.Addr
	dst        netip.Addr
	mask       netip.Addr
	brd        netip.Addr
	flags      int16
	configured int
	closes     atomic.Int32
}

var _ apptun.Adapter = (*Adapter)(nil)

func (a *Adapter) Name() string          { return a.name }
func (a *Adapter) Framer() apptun.Framer { return framing.NewPassthrough() }

// Files returns the queue ends handed to the code under test.
func (a *Adapter) Files() []*os.File { return a.files }

// Configured reports how many times Configure ran.
func (a *Adapter) Configured() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configured
}

// Closes reports how many times Close ran.
func (a *Adapter) Closes() int { return int(a.closes.Load()) }

func (a *Adapter) Configure(cfg settings.Tun) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configured++
	if a.ConfigureErr != nil {
		return a.ConfigureErr
	}
	a.mtu = cfg.MTU
	a.addr, a.dst, a.mask, a.brd = cfg.Address, cfg.Destination, cfg.Netmask, cfg.Broadcast
	if cfg.Up {
		a.flags |= unix.IFF_UP | unix.IFF_RUNNING
	}
	return nil
}

func (a *Adapter) MTU() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mtu, nil
}

func (a *Adapter) SetMTU(mtu int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mtu = mtu
	return mtu, nil
}

func (a *Adapter) Address() (netip.Addr, error)     { return a.load(&a.addr), nil }
func (a *Adapter) Destination() (netip.Addr, error) { return a.load(&a.dst), nil }
func (a *Adapter) Netmask() (netip.Addr, error)     { return a.load(&a.mask), nil }
func (a *Adapter) Broadcast() (netip.Addr, error)   { return a.load(&a.brd), nil }

func (a *Adapter) SetAddress(v netip.Addr) (netip.Addr, error)     { return a.store(&a.addr, v), nil }
func (a *Adapter) SetDestination(v netip.Addr) (netip.Addr, error) { return a.store(&a.dst, v), nil }
func (a *Adapter) SetNetmask(v netip.Addr) (netip.Addr, error)     { return a.store(&a.mask, v), nil }
func (a *Adapter) SetBroadcast(v netip.Addr) (netip.Addr, error)   { return a.store(&a.brd, v), nil }

func (a *Adapter) Flags() (int16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags, nil
}

func (a *Adapter) SetFlags(flags int16) (int16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flags |= flags
	return a.flags, nil
}

func (a *Adapter) Close() error {
	a.closes.Add(1)
	return nil
}

func (a *Adapter) load(field *netip.Addr) netip.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *field
}

func (a *Adapter) store(field *netip.Addr, v netip.Addr) netip.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	*field = v
	return v
}

// Backend allocates its single Adapter, creating cfg.QueueCount() socketpairs.
type Backend struct {
	Adapter *Adapter
	// AllocateErr, when set, fails Allocate.
	AllocateErr error

	t testing.TB
}

var _ apptun.Backend = (*Backend)(nil)

// NewBackend returns a backend for an adapter called name. Peer ends are
// closed when t finishes.
func NewBackend(t testing.TB, name string) *Backend {
	return &Backend{Adapter: &Adapter{name: name}, t: t}
}

func (b *Backend) Allocate(cfg settings.Tun) (apptun.Adapter, error) {
	if b.AllocateErr != nil {
		return nil, b.AllocateErr
	}
	for range cfg.QueueCount() {
		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
		if err != nil {
			b.t.Fatalf("socketpair: %v", err)
		}
		for _, fd := range fds {
			unix.CloseOnExec(fd)
			if err := unix.SetNonblock(fd, true); err != nil {
				b.t.Fatalf("set nonblock: %v", err)
			}
		}
		peer := fds[1]
		b.t.Cleanup(func() { _ = unix.Close(peer) })
		b.Adapter.files = append(b.Adapter.files, os.NewFile(uintptr(fds[0]), "queue"))
		b.Adapter.Peers = append(b.Adapter.Peers, peer)
	}
	return b.Adapter, nil
}
