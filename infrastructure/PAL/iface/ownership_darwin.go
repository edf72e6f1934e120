package iface

import (
	"multitun/infrastructure/PAL/platform"
	"multitun/infrastructure/settings"
)

// applyOwnership accepts owner, group and persistence requests without
// acting on them; utun has neither knob.
func (i *Interface) applyOwnership(cfg settings.Tun) error {
	caps := platform.Capabilities()
	if cfg.Owner != nil && !caps.Ownership() {
		i.logger.Printf("%s: owner %d ignored, not supported by utun", i.name, *cfg.Owner)
	}
	if cfg.Group != nil && !caps.Ownership() {
		i.logger.Printf("%s: group %d ignored, not supported by utun", i.name, *cfg.Group)
	}
	if cfg.Persist && !caps.Persistence() {
		i.logger.Printf("%s: persist ignored, utun lives as long as its socket", i.name)
	}
	return nil
}
