package iface

import "net/netip"

var allOnes = netip.AddrFrom4([4]byte{255, 255, 255, 255})

// computeBroadcast derives addr | ^mask. Without both an IPv4 address and an
// IPv4 mask the limited broadcast address is returned.
func computeBroadcast(addr, mask netip.Addr) netip.Addr {
	addr, mask = addr.Unmap(), mask.Unmap()
	if !addr.Is4() || !mask.Is4() {
		return allOnes
	}
	a, m := addr.As4(), mask.As4()
	var out [4]byte
	for k := range out {
		out[k] = a[k] | ^m[k]
	}
	return netip.AddrFrom4(out)
}
