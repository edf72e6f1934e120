package tun

import (
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/PAL/iface"
	"multitun/infrastructure/PAL/ioctl"
)

// DefaultBackend allocates adapters through the TUN clone device.
func DefaultBackend(logger logging.Logger) apptun.Backend {
	return iface.NewLinuxBackend(ioctl.NewUnixCommander(), logger)
}
