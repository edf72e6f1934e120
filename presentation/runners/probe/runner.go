//go:build linux || darwin

// Package probe brings up a multi-queue interface and logs every packet the
// kernel routes into it until the context is cancelled.
package probe

import (
	"context"
	"errors"
	"fmt"
	"multitun/application/logging"
	apptun "multitun/application/network/tun"
	"multitun/infrastructure/PAL/linkinfo"
	"multitun/infrastructure/network/ip"
	"multitun/infrastructure/settings"
	"multitun/infrastructure/telemetry/trafficstats"
	"multitun/infrastructure/tun"
	"time"
)

// statsSmoothing is the EMA weight of the newest rate sample.
const statsSmoothing = 0.3

type Runner struct {
	backend       apptun.Backend
	cfg           settings.Tun
	parser        *ip.HeaderParser
	logger        logging.Logger
	statsInterval time.Duration
	lookup        func(name string) (linkinfo.Info, error)
}

// NewRunner logs traffic totals every statsInterval; zero disables them.
func NewRunner(
	backend apptun.Backend,
	cfg settings.Tun,
	logger logging.Logger,
	statsInterval time.Duration,
) *Runner {
	return &Runner{
		backend:       backend,
		cfg:           cfg,
		parser:        ip.NewHeaderParser(),
		logger:        logger,
		statsInterval: statsInterval,
		lookup:        linkinfo.Lookup,
	}
}

// Run returns nil when ctx is cancelled and the first queue error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	queues, err := tun.NewWithBackend(r.backend, r.cfg)
	if err != nil {
		return err
	}
	name := queues[0].Name()
	defer func() {
		if closeErr := tun.CloseAll(queues); closeErr != nil {
			r.logger.Printf("close %s: %v", name, closeErr)
		}
	}()
	r.logger.Printf("%s", r.describe(queues[0], len(queues)))
	if info, lookupErr := r.lookup(name); lookupErr == nil {
		r.logger.Printf("%s: kernel reports %s", name, info)
	} else {
		r.logger.Printf("%s: link details unavailable: %v", name, lookupErr)
	}

	stats := trafficstats.NewCollector(len(queues), r.statsInterval, statsSmoothing)
	if r.statsInterval > 0 {
		statsCtx, stopStats := context.WithCancel(ctx)
		defer stopStats()
		go stats.Start(statsCtx, func(s trafficstats.Snapshot) {
			r.logger.Printf("%s: %s", name, trafficstats.Format(s))
		})
	}
	defer func() {
		r.logger.Printf("%s: %s", name, trafficstats.Format(stats.Snapshot()))
	}()

	err = tun.FanIn(ctx, queues, func(queue int, pkt []byte) error {
		stats.Record(queue, len(pkt))
		summary, parseErr := r.parser.Summarize(pkt)
		if parseErr != nil {
			r.logger.Printf("%s/%d: %d bytes: %v", name, queue, len(pkt), parseErr)
			return nil
		}
		r.logger.Printf("%s/%d: %s", name, queue, summary)
		return nil
	})
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("receive on %s: %w", name, err)
	}
	return nil
}

func (r *Runner) describe(q *tun.Tun, queues int) string {
	line := fmt.Sprintf("%s up with %d queue(s)", q.Name(), queues)
	if mtu, err := q.MTU(); err == nil {
		line += fmt.Sprintf(", mtu %d", mtu)
	}
	if addr, err := q.Address(); err == nil && addr.IsValid() {
		line += fmt.Sprintf(", address %s", addr)
	}
	if dst, err := q.Destination(); err == nil && dst.IsValid() {
		line += fmt.Sprintf(", peer %s", dst)
	}
	return line
}
