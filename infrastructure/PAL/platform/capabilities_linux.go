package platform

type linuxCaps struct{}

func (linuxCaps) MultiQueue() bool   { return true }
func (linuxCaps) Ownership() bool    { return true }
func (linuxCaps) Persistence() bool  { return true }
func (linuxCaps) FramingHeader() int { return 0 }

// Capabilities returns the platform capabilities for linux.
func Capabilities() Caps { return linuxCaps{} }
