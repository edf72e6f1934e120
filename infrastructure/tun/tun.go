//go:build linux || darwin

// Package tun hands out one queue handle per data-path file of a configured
// virtual adapter. All handles of one allocation share the adapter; the last
// one to close releases its control channel.
package tun

import (
	"context"
	"errors"
	"fmt"
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/settings"
	"multitun/infrastructure/tun/readiness"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
)

// sharedAdapter counts the queue handles still referencing an adapter.
type sharedAdapter struct {
	adapter apptun.Adapter
	refs    atomic.Int32
}

func (s *sharedAdapter) release() error {
	if s.refs.Add(-1) == 0 {
		return s.adapter.Close()
	}
	return nil
}

// Tun is one queue of a virtual adapter. Configuration accessors report
// adapter-wide state and return the same values from every queue.
type Tun struct {
	shared *sharedAdapter
	queue  int
	io     *readiness.IO

	closeOnce sync.Once
	closeErr  error
}

// New allocates and configures an adapter with the platform backend.
func New(cfg settings.Tun, logger logging.Logger) ([]*Tun, error) {
	return NewWithBackend(DefaultBackend(logger), cfg)
}

// NewWithBackend allocates cfg.QueueCount() data-path files from backend,
// configures the adapter once and wraps every file in its own queue handle.
// Nothing stays open on failure.
func NewWithBackend(backend apptun.Backend, cfg settings.Tun) ([]*Tun, error) {
	adapter, err := backend.Allocate(cfg)
	if err != nil {
		return nil, fmt.Errorf("allocate tun: %w", err)
	}
	files := adapter.Files()
	if len(files) == 0 {
		_ = adapter.Close()
		return nil, fmt.Errorf("allocate tun: %s has no queues", adapter.Name())
	}
	if err := adapter.Configure(cfg); err != nil {
		closeFiles(files)
		_ = adapter.Close()
		return nil, fmt.Errorf("configure %s: %w", adapter.Name(), err)
	}

	shared := &sharedAdapter{adapter: adapter}
	queues := make([]*Tun, 0, len(files))
	for k, f := range files {
		unit, err := readiness.New(f, adapter.Framer())
		if err != nil {
			for _, q := range queues {
				_ = q.io.Close()
			}
			closeFiles(files[k:])
			_ = adapter.Close()
			return nil, fmt.Errorf("queue %d of %s: %w", k, adapter.Name(), err)
		}
		queues = append(queues, &Tun{shared: shared, queue: k, io: unit})
	}
	shared.refs.Store(int32(len(queues)))
	return queues, nil
}

func (t *Tun) Name() string { return t.shared.adapter.Name() }

// Queue is the index of this handle within its allocation.
func (t *Tun) Queue() int { return t.queue }

func (t *Tun) MTU() (int, error)                   { return t.shared.adapter.MTU() }
func (t *Tun) Address() (netip.Addr, error)        { return t.shared.adapter.Address() }
func (t *Tun) Destination() (netip.Addr, error)    { return t.shared.adapter.Destination() }
func (t *Tun) Broadcast() (netip.Addr, error)      { return t.shared.adapter.Broadcast() }
func (t *Tun) Netmask() (netip.Addr, error)        { return t.shared.adapter.Netmask() }
func (t *Tun) Flags() (int16, error)               { return t.shared.adapter.Flags() }
func (t *Tun) SetFlags(flags int16) (int16, error) { return t.shared.adapter.SetFlags(flags) }

// Fd returns the queue's raw descriptor without switching it to blocking mode.
func (t *Tun) Fd() int { return t.io.Fd() }

// File returns the queue's data-path file. It stays owned by the Tun.
func (t *Tun) File() *os.File { return t.io.File() }

// HeaderSize is the framing overhead the device adds to every packet.
func (t *Tun) HeaderSize() int { return t.shared.adapter.Framer().HeaderSize() }

func (t *Tun) Recv(ctx context.Context, p []byte) (int, error) {
	return t.io.Recv(ctx, p)
}

func (t *Tun) Send(ctx context.Context, p []byte) (int, error) {
	return t.io.Send(ctx, p)
}

func (t *Tun) SendVectored(ctx context.Context, bufs [][]byte) (int, error) {
	return t.io.SendVectored(ctx, bufs)
}

func (t *Tun) SendAll(ctx context.Context, p []byte) error {
	return t.io.SendAll(ctx, p)
}

func (t *Tun) TryRecv(p []byte) (int, error)              { return t.io.TryRecv(p) }
func (t *Tun) TrySend(p []byte) (int, error)              { return t.io.TrySend(p) }
func (t *Tun) TrySendVectored(bufs [][]byte) (int, error) { return t.io.TrySendVectored(bufs) }
func (t *Tun) Flush() error                               { return t.io.Flush() }

// Close closes this queue's file and drops its reference to the adapter.
// Further calls return the first result.
func (t *Tun) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = errors.Join(t.io.Close(), t.shared.release())
	})
	return t.closeErr
}

// CloseAll closes every queue and joins their errors.
func CloseAll(queues []*Tun) error {
	var errs []error
	for _, q := range queues {
		errs = append(errs, q.Close())
	}
	return errors.Join(errs...)
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
