package elevation

import (
	"os"

	"golang.org/x/sys/unix"
)

// capNetAdmin is CAP_NET_ADMIN from linux/capability.h.
const capNetAdmin = 12

type ProcessElevationImpl struct {
}

func NewProcessElevation() ProcessElevation {
	return &ProcessElevationImpl{}
}

// IsElevated is true for root and for processes holding CAP_NET_ADMIN.
func (p *ProcessElevationImpl) IsElevated() bool {
	return os.Geteuid() == 0 || hasNetAdmin()
}

func (p *ProcessElevationImpl) Hint() string {
	return "run as root or grant CAP_NET_ADMIN (setcap cap_net_admin+ep <binary>)"
}

func hasNetAdmin() bool {
	hdr := unix.CapUserHeader{Version: unix.LINUX_CAPABILITY_VERSION_3}
	var data [2]unix.CapUserData
	if err := unix.Capget(&hdr, &data[0]); err != nil {
		return false
	}
	return data[0].Effective&(1<<capNetAdmin) != 0
}
