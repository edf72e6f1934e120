package iface

import "net/netip"

func (i *Interface) Broadcast() (netip.Addr, error) {
	return i.getAddr(i.requests.GetBrdAddr, "broadcast")
}

func (i *Interface) SetBroadcast(addr netip.Addr) (netip.Addr, error) {
	return i.setAddr(i.requests.SetBrdAddr, "broadcast", addr)
}
