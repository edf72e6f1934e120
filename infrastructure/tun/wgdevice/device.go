//go:build linux || darwin

// Package wgdevice exposes one queue handle as a wireguard-go tun.Device so
// the queue can back a userspace WireGuard device.
package wgdevice

import (
	"context"
	"errors"
	"io"
	"multitun/infrastructure/tun"
	"os"
	"sync"

	wgtun "golang.zx2c4.com/wireguard/tun"
)

var _ wgtun.Device = (*Device)(nil)

type Device struct {
	queue  *tun.Tun
	ctx    context.Context
	cancel context.CancelFunc
	events chan wgtun.Event

	closeOnce sync.Once
	closeErr  error
}

// New takes ownership of queue; closing the Device closes it.
func New(queue *tun.Tun) *Device {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Device{
		queue:  queue,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan wgtun.Event, 1),
	}
	d.events <- wgtun.EventUp
	return d
}

func (d *Device) File() *os.File             { return d.queue.File() }
func (d *Device) MTU() (int, error)          { return d.queue.MTU() }
func (d *Device) Name() (string, error)      { return d.queue.Name(), nil }
func (d *Device) Events() <-chan wgtun.Event { return d.events }
func (d *Device) BatchSize() int             { return 1 }

// Read receives one packet into bufs[0][offset:]. Frames too short to carry
// a packet are skipped.
func (d *Device) Read(bufs [][]byte, sizes []int, offset int) (int, error) {
	if len(bufs) == 0 || len(sizes) == 0 {
		return 0, nil
	}
	if len(bufs[0]) <= offset {
		return 0, io.ErrShortBuffer
	}
	for {
		n, err := d.queue.Recv(d.ctx, bufs[0][offset:])
		if err != nil {
			return 0, d.mapErr(err)
		}
		if n > 0 {
			sizes[0] = n
			return 1, nil
		}
	}
}

// Write sends every bufs[k][offset:] as one packet and returns how many
// buffers were written.
func (d *Device) Write(bufs [][]byte, offset int) (int, error) {
	for k, buf := range bufs {
		pkt := buf[offset:]
		if len(pkt) == 0 {
			continue
		}
		if err := d.queue.SendAll(d.ctx, pkt); err != nil {
			return k, d.mapErr(err)
		}
	}
	return len(bufs), nil
}

func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		close(d.events)
		d.closeErr = d.queue.Close()
	})
	return d.closeErr
}

// mapErr reports a read or write interrupted by Close as os.ErrClosed,
// which wireguard-go treats as a clean shutdown.
func (d *Device) mapErr(err error) error {
	if errors.Is(err, context.Canceled) && d.ctx.Err() != nil {
		return os.ErrClosed
	}
	return err
}
