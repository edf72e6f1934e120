//go:build linux || darwin

package probe

import (
	"context"
	"errors"
	"fmt"
	"multitun/infrastructure/PAL/linkinfo"
	"multitun/infrastructure/settings"
	"multitun/infrastructure/tun/tuntest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) find(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func ipv4Packet(src, dst [4]byte) []byte {
	pkt := make([]byte, 28)
	pkt[0] = 0x45
	pkt[3] = 28
	pkt[8] = 64
	pkt[9] = 1
	copy(pkt[12:16], src[:])
	copy(pkt[16:20], dst[:])
	return pkt
}

func TestRunner_LogsPacketsUntilCancelled(t *testing.T) {
	b := tuntest.NewBackend(t, "mt0")
	logger := &recordingLogger{}
	cfg := settings.Tun{
		MTU:     1400,
		Address: netip.MustParseAddr("10.0.0.1"),
		Queues:  2,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewRunner(b, cfg, logger, 10*time.Millisecond).Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	// Peers are complete once the interface has been reported up.
	for !logger.find("mt0 up with 2 queue(s), mtu 1400, address 10.0.0.1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := unix.Write(b.Adapter.Peers[1], ipv4Packet([4]byte{10, 0, 0, 2}, [4]byte{10, 0, 0, 1})); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	if _, err := unix.Write(b.Adapter.Peers[0], []byte{0x00, 0x01}); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	want := "mt0/1: IPv4 10.0.0.2 -> 10.0.0.1 proto 1 len 28"
	for !(logger.find(want) && logger.find("mt0/0: 2 bytes")) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if !logger.find(want) {
		t.Fatalf("missing %q in %v", want, logger.lines)
	}
	if !logger.find("mt0/0: 2 bytes") {
		t.Fatalf("unparsable packet not logged: %v", logger.lines)
	}
	if !logger.find("mt0: rx 2 packets, 30 B") {
		t.Fatalf("missing traffic summary: %v", logger.lines)
	}
	if b.Adapter.Closes() != 1 {
		t.Fatalf("adapter closed %d times", b.Adapter.Closes())
	}
}

func TestRunner_AllocateFailure(t *testing.T) {
	b := tuntest.NewBackend(t, "mt0")
	b.AllocateErr = unix.EPERM
	err := NewRunner(b, settings.Tun{}, &recordingLogger{}, 0).Run(context.Background())
	if !errors.Is(err, unix.EPERM) {
		t.Fatalf("Run = %v, want EPERM", err)
	}
}

func TestRunner_LogsKernelLinkDetails(t *testing.T) {
	b := tuntest.NewBackend(t, "mt0")
	logger := &recordingLogger{}
	r := NewRunner(b, settings.Tun{}, logger, 0)
	r.lookup = func(name string) (linkinfo.Info, error) {
		if name != "mt0" {
			t.Errorf("lookup(%q), want mt0", name)
		}
		return linkinfo.Info{Index: 9, Kind: "tuntap", MTU: 1500, Up: true}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if want := "mt0: kernel reports index 9, kind tuntap, mtu 1500, up"; !logger.find(want) {
		t.Fatalf("missing %q in %v", want, logger.lines)
	}
}

func TestRunner_LinkLookupFailureIsNotFatal(t *testing.T) {
	b := tuntest.NewBackend(t, "mt0")
	logger := &recordingLogger{}
	r := NewRunner(b, settings.Tun{}, logger, 0)
	r.lookup = func(string) (linkinfo.Info, error) {
		return linkinfo.Info{}, unix.ENODEV
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if !logger.find("mt0: link details unavailable") {
		t.Fatalf("lookup failure not logged: %v", logger.lines)
	}
}
