package signals

import "os"

// Notifier is the os/signal subscription seam.
type Notifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// Handler cancels the application context on a shutdown signal.
type Handler interface {
	Handle()
}
