package iface

import (
	"fmt"
	"multitun/infrastructure/settings"

	"golang.org/x/sys/unix"
)

// applyOwnership sets owner, group and persistence on the first queue. The
// settings belong to the interface, so one handle is enough.
func (i *Interface) applyOwnership(cfg settings.Tun) error {
	if cfg.Owner == nil && cfg.Group == nil && !cfg.Persist {
		return nil
	}
	if len(i.files) == 0 {
		return fmt.Errorf("%s has no queue to apply ownership on", i.name)
	}
	conn, err := i.files[0].SyscallConn()
	if err != nil {
		return fmt.Errorf("raw conn of %s: %w", i.name, err)
	}

	var opErr error
	ctlErr := conn.Control(func(fd uintptr) {
		if cfg.Owner != nil {
			if err := i.commander.IoctlInt(int(fd), unix.TUNSETOWNER, *cfg.Owner); err != nil {
				opErr = fmt.Errorf("set owner of %s: %w", i.name, err)
				return
			}
		}
		if cfg.Group != nil {
			if err := i.commander.IoctlInt(int(fd), unix.TUNSETGROUP, *cfg.Group); err != nil {
				opErr = fmt.Errorf("set group of %s: %w", i.name, err)
				return
			}
		}
		if cfg.Persist {
			if err := i.commander.IoctlInt(int(fd), unix.TUNSETPERSIST, 1); err != nil {
				opErr = fmt.Errorf("set persist on %s: %w", i.name, err)
			}
		}
	})
	if ctlErr != nil {
		return fmt.Errorf("raw conn of %s: %w", i.name, ctlErr)
	}
	return opErr
}
