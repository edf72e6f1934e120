// Package trafficstats counts packets received per queue and derives a
// smoothed receive rate for periodic reporting.
package trafficstats

import (
	"context"
	"sync/atomic"
	"time"
)

type Snapshot struct {
	// Packets and Bytes are per queue totals, indexed by queue.
	Packets []uint64
	Bytes   []uint64
	// RXBytesTotal is the sum over all queues.
	RXBytesTotal uint64
	RXRate       uint64 // bytes/sec
}

// PacketsTotal is the sum of Packets.
func (s Snapshot) PacketsTotal() uint64 {
	var total uint64
	for _, p := range s.Packets {
		total += p
	}
	return total
}

type queueCounters struct {
	packets atomic.Uint64
	bytes   atomic.Uint64
}

type Collector struct {
	queues []queueCounters
	rxRate atomic.Uint64

	sampleInterval time.Duration
	emaAlpha       float64

	// accessed only from the single sampler goroutine in Start()
	lastRX  uint64
	rxEMA   float64
	started atomic.Bool
}

func NewCollector(queues int, sampleInterval time.Duration, emaAlpha float64) *Collector {
	if queues < 1 {
		queues = 1
	}
	if sampleInterval <= 0 {
		sampleInterval = time.Second
	}
	emaAlpha = min(max(emaAlpha, 0), 1)
	return &Collector{
		queues:         make([]queueCounters, queues),
		sampleInterval: sampleInterval,
		emaAlpha:       emaAlpha,
	}
}

// Start samples the receive rate every interval and hands each snapshot to
// report, until ctx is done. Only the first call runs.
func (c *Collector) Start(ctx context.Context, report func(Snapshot)) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}

	ticker := time.NewTicker(c.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.updateRate(c.sampleInterval)
			if report != nil {
				report(c.Snapshot())
			}
		}
	}
}

// Record counts one packet of n bytes on queue. It is allocation-free and
// safe for concurrent use; out of range queues are ignored.
func (c *Collector) Record(queue, n int) {
	if queue < 0 || queue >= len(c.queues) || n <= 0 {
		return
	}
	c.queues[queue].packets.Add(1)
	c.queues[queue].bytes.Add(uint64(n))
}

func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Packets: make([]uint64, len(c.queues)),
		Bytes:   make([]uint64, len(c.queues)),
		RXRate:  c.rxRate.Load(),
	}
	for k := range c.queues {
		s.Packets[k] = c.queues[k].packets.Load()
		s.Bytes[k] = c.queues[k].bytes.Load()
		s.RXBytesTotal += s.Bytes[k]
	}
	return s
}

func (c *Collector) totalBytes() uint64 {
	var total uint64
	for k := range c.queues {
		total += c.queues[k].bytes.Load()
	}
	return total
}

func (c *Collector) updateRate(interval time.Duration) {
	seconds := interval.Seconds()
	if seconds <= 0 {
		return
	}

	rxNow := c.totalBytes()
	rxDelta := rxNow - c.lastRX
	c.lastRX = rxNow

	rxPerSec := float64(rxDelta) / seconds
	if c.emaAlpha > 0 {
		if c.rxEMA == 0 {
			c.rxEMA = rxPerSec
		} else {
			c.rxEMA = c.emaAlpha*rxPerSec + (1-c.emaAlpha)*c.rxEMA
		}
		rxPerSec = c.rxEMA
	}
	c.rxRate.Store(uint64(rxPerSec))
}
