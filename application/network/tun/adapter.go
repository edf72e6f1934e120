package tun

import (
	"multitun/infrastructure/settings"
	"net/netip"
	"os"
)

// Adapter is one allocated virtual interface. Every file returned by Files
// is a non-blocking data-path handle to the same adapter; configuration
// accessors act on the adapter as a whole through a separate control channel.
//
// Getters read the current kernel value. Setters apply the value and return
// what the kernel confirmed.
type Adapter interface {
	Name() string
	Files() []*os.File
	Framer() Framer

	// Configure applies cfg in order MTU, address, netmask, destination,
	// broadcast, up. It stops at the first failure without undoing earlier steps.
	Configure(cfg settings.Tun) error

	MTU() (int, error)
	SetMTU(mtu int) (int, error)
	Address() (netip.Addr, error)
	SetAddress(addr netip.Addr) (netip.Addr, error)
	Destination() (netip.Addr, error)
	SetDestination(addr netip.Addr) (netip.Addr, error)
	Netmask() (netip.Addr, error)
	SetNetmask(mask netip.Addr) (netip.Addr, error)
	Broadcast() (netip.Addr, error)
	SetBroadcast(addr netip.Addr) (netip.Addr, error)
	// Flags returns the interface flags.
	Flags() (int16, error)
	// SetFlags ORs flags into the current ones and returns the result.
	SetFlags(flags int16) (int16, error)

	// Close releases the control channel. Data-path files are closed by their owners.
	Close() error
}

// Backend allocates adapters for one kernel device model.
type Backend interface {
	// Allocate opens cfg.QueueCount() handles to a single adapter.
	Allocate(cfg settings.Tun) (Adapter, error)
}
