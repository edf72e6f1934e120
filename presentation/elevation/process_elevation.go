package elevation

// ProcessElevation reports whether the process may create and configure
// TUN interfaces.
type ProcessElevation interface {
	IsElevated() bool
	// Hint tells the user how to obtain the missing privileges.
	Hint() string
}
