package linkinfo

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// Lookup asks rtnetlink for the link called name.
func Lookup(name string) (Info, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get link by name %s: %w", name, err)
	}
	attrs := link.Attrs()
	info := Info{
		Index:     attrs.Index,
		Kind:      link.Type(),
		MTU:       attrs.MTU,
		Up:        attrs.Flags&net.FlagUp != 0,
		OperState: attrs.OperState.String(),
	}
	if tuntap, ok := link.(*netlink.Tuntap); ok {
		info.Persist = !tuntap.NonPersist
	}
	return info, nil
}
