package shutdown

import (
	"multitun/presentation/signals"
	"os"
	"os/signal"
)

var _ signals.Notifier = Notifier{}

// Notifier subscribes through os/signal.
type Notifier struct{}

func NewNotifier() signals.Notifier { return Notifier{} }

func (Notifier) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (Notifier) Stop(c chan<- os.Signal)                     { signal.Stop(c) }
