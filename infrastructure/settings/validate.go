package settings

import (
	"errors"
	"fmt"
	"net/netip"
)

var ErrInvalidTun = errors.New("invalid tun settings")

// Validate rejects values no backend could apply. Zero values mean "unset"
// and always pass.
func (t Tun) Validate() error {
	if len(t.Name) > maxNameLen {
		return fmt.Errorf("%w: name %q longer than %d bytes", ErrInvalidTun, t.Name, maxNameLen)
	}
	if t.MTU != 0 && (t.MTU < MinimumIPv4MTU || t.MTU > MaximumMTU) {
		return fmt.Errorf("%w: mtu %d outside [%d, %d]", ErrInvalidTun, t.MTU, MinimumIPv4MTU, MaximumMTU)
	}
	if t.Queues < 0 || t.Queues > MaxQueues {
		return fmt.Errorf("%w: %d queues outside [1, %d]", ErrInvalidTun, t.Queues, MaxQueues)
	}
	for _, field := range []struct {
		name string
		addr netip.Addr
	}{
		{"address", t.Address},
		{"destination", t.Destination},
		{"broadcast", t.Broadcast},
		{"netmask", t.Netmask},
	} {
		if field.addr.IsValid() && !field.addr.Unmap().Is4() {
			return fmt.Errorf("%w: %s %s is not IPv4", ErrInvalidTun, field.name, field.addr)
		}
	}
	if t.Owner != nil && *t.Owner < 0 {
		return fmt.Errorf("%w: owner %d", ErrInvalidTun, *t.Owner)
	}
	if t.Group != nil && *t.Group < 0 {
		return fmt.Errorf("%w: group %d", ErrInvalidTun, *t.Group)
	}
	return nil
}
