package platform

type darwinCaps struct{}

func (darwinCaps) MultiQueue() bool   { return false }
func (darwinCaps) Ownership() bool    { return false }
func (darwinCaps) Persistence() bool  { return false }
func (darwinCaps) FramingHeader() int { return 4 }

// Capabilities returns the platform capabilities for darwin.
func Capabilities() Caps { return darwinCaps{} }
