package signal

import "os"

// Provider lists the signals that end the process on the current platform.
type Provider interface {
	ShutdownSignals() []os.Signal
}
