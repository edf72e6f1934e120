package iface

import "net/netip"

// Broadcast is computed from address and netmask; a utun adapter has no
// kernel broadcast address.
func (i *Interface) Broadcast() (netip.Addr, error) {
	addr, addrErr := i.Address()
	mask, maskErr := i.Netmask()
	if addrErr != nil || maskErr != nil {
		return allOnes, nil
	}
	return computeBroadcast(addr, mask), nil
}

// SetBroadcast accepts addr without applying it.
func (i *Interface) SetBroadcast(addr netip.Addr) (netip.Addr, error) {
	return addr, nil
}
