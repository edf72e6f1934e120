//go:build linux || darwin

package tun

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxPacketSize fits any IP packet a TUN device can deliver.
const maxPacketSize = 65535

// PacketHandler receives one packet read from queue. pkt is reused for the
// next read on the same queue. Handlers run concurrently, one goroutine per queue.
type PacketHandler func(queue int, pkt []byte) error

// FanIn receives from every queue concurrently until ctx is done or a
// handler or receive fails; the first error stops the other queues and is
// returned.
func FanIn(ctx context.Context, queues []*Tun, handler PacketHandler) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, q := range queues {
		eg.Go(func() error {
			buf := make([]byte, maxPacketSize)
			for {
				n, err := q.Recv(egCtx, buf)
				if err != nil {
					return err
				}
				if n == 0 {
					continue
				}
				if err := handler(q.Queue(), buf[:n]); err != nil {
					return err
				}
			}
		})
	}
	return eg.Wait()
}
