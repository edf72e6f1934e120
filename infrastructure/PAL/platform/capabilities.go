package platform

// Caps describes which adapter knobs the current platform honours.
type Caps interface {
	// MultiQueue reports whether several data-path handles can attach to one adapter.
	MultiQueue() bool
	// Ownership reports whether an owning user/group can be assigned to the adapter.
	Ownership() bool
	// Persistence reports whether the adapter can be made to outlive its handles.
	Persistence() bool
	// FramingHeader is the number of bytes the device prepends to every packet.
	FramingHeader() int
}
