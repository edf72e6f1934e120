package shutdown

import (
	"context"
	"multitun/application/logging"
	palSignal "multitun/infrastructure/PAL/signal"
	"multitun/presentation/signals"
	"os"
	"sync"
)

type Handler struct {
	// appCtx is the probe context. The handler stops listening once it is done.
	appCtx       context.Context
	appCtxCancel context.CancelFunc
	// signalChan is buffered: os/signal drops signals on a full channel.
	signalChan     chan os.Signal
	once           sync.Once
	signalProvider palSignal.Provider
	notifier       signals.Notifier
	logger         logging.Logger
}

func NewHandler(
	appCtx context.Context,
	appCtxCancel context.CancelFunc,
	signalProvider palSignal.Provider,
	notifier signals.Notifier,
	logger logging.Logger,
) signals.Handler {
	return &Handler{
		appCtx:         appCtx,
		appCtxCancel:   appCtxCancel,
		signalChan:     make(chan os.Signal, 1),
		signalProvider: signalProvider,
		notifier:       notifier,
		logger:         logger,
	}
}

// Handle subscribes once and returns; the wait happens in the background.
func (h *Handler) Handle() {
	h.once.Do(func() {
		h.notifier.Notify(h.signalChan, h.signalProvider.ShutdownSignals()...)
		go h.wait()
	})
}

func (h *Handler) wait() {
	defer h.notifier.Stop(h.signalChan)
	select {
	case sig := <-h.signalChan:
		h.logger.Printf("%v received, closing queues", sig)
		h.appCtxCancel()
	case <-h.appCtx.Done():
	}
}
