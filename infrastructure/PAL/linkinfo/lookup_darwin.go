package linkinfo

import (
	"fmt"
	"net"
	"strings"
)

// Lookup reads the link called name from the routing socket. darwin reports
// neither an operational state nor persistence for utun.
func Lookup(name string) (Info, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get link by name %s: %w", name, err)
	}
	kind := "device"
	if strings.HasPrefix(ifi.Name, "utun") {
		kind = "utun"
	}
	return Info{
		Index: ifi.Index,
		Kind:  kind,
		MTU:   ifi.MTU,
		Up:    ifi.Flags&net.FlagUp != 0,
	}, nil
}
