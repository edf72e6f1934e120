// Package linkinfo reads what the kernel reports about a network link, as
// opposed to the values configured through interface ioctls.
package linkinfo

import (
	"fmt"
	"strings"
)

// Info is a snapshot of one link.
type Info struct {
	Index int
	// Kind is the link type the kernel reports, "tuntap" for a TUN device.
	Kind string
	MTU  int
	Up   bool
	// OperState is empty where the platform does not report one.
	OperState string
	// Persist is set for TUN devices that outlive their last open handle.
	Persist bool
}

func (i Info) String() string {
	parts := []string{
		fmt.Sprintf("index %d", i.Index),
		fmt.Sprintf("kind %s", i.Kind),
		fmt.Sprintf("mtu %d", i.MTU),
	}
	if i.OperState != "" {
		parts = append(parts, "state "+i.OperState)
	}
	if i.Up {
		parts = append(parts, "up")
	}
	if i.Persist {
		parts = append(parts, "persistent")
	}
	return strings.Join(parts, ", ")
}
