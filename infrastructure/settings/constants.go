package settings

const (
	DefaultEthernetMTU = 1500
	MinimumIPv4MTU     = 576
	MaximumMTU         = 65535
	// MaxQueues is the kernel limit on queues attached to one TUN interface.
	MaxQueues = 256
	// maxNameLen leaves room for the NUL terminator of IFNAMSIZ.
	maxNameLen = 15
)
