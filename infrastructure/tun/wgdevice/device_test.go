//go:build linux || darwin

package wgdevice

import (
	"errors"
	"io"
	"multitun/infrastructure/settings"
	"multitun/infrastructure/tun"
	"multitun/infrastructure/tun/tuntest"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
	wgtun "golang.zx2c4.com/wireguard/tun"
)

const offset = 16

func newDevice(t *testing.T) (*Device, int) {
	t.Helper()
	b := tuntest.NewBackend(t, "mt0")
	queues, err := tun.NewWithBackend(b, settings.Tun{MTU: 1420})
	if err != nil {
		t.Fatalf("NewWithBackend: %v", err)
	}
	d := New(queues[0])
	t.Cleanup(func() { _ = d.Close() })
	return d, b.Adapter.Peers[0]
}

func TestDevice_EmitsUp(t *testing.T) {
	d, _ := newDevice(t)
	select {
	case ev := <-d.Events():
		if ev != wgtun.EventUp {
			t.Fatalf("event = %v, want EventUp", ev)
		}
	default:
		t.Fatal("no event queued")
	}
}

func TestDevice_Metadata(t *testing.T) {
	d, _ := newDevice(t)
	if name, err := d.Name(); err != nil || name != "mt0" {
		t.Fatalf("Name = %q, %v", name, err)
	}
	if mtu, err := d.MTU(); err != nil || mtu != 1420 {
		t.Fatalf("MTU = %d, %v", mtu, err)
	}
	if d.BatchSize() != 1 || d.File() == nil {
		t.Fatalf("BatchSize = %d, File = %v", d.BatchSize(), d.File())
	}
}

func TestDevice_WriteSkipsOffset(t *testing.T) {
	d, peer := newDevice(t)
	buf := make([]byte, offset+4)
	copy(buf[offset:], "\x45abc")
	n, err := d.Write([][]byte{buf, make([]byte, offset)}, offset)
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	got := make([]byte, 64)
	m, err := unix.Read(peer, got)
	if err != nil || string(got[:m]) != "\x45abc" {
		t.Fatalf("peer got %q, %v", got[:m], err)
	}
	if _, err := unix.Read(peer, got); !errors.Is(err, unix.EAGAIN) {
		t.Fatalf("empty buffer must not be written, got %v", err)
	}
}

func TestDevice_ReadAtOffset(t *testing.T) {
	d, peer := newDevice(t)
	if _, err := unix.Write(peer, []byte("\x45xyz")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	bufs := [][]byte{make([]byte, offset+64)}
	sizes := []int{0}
	n, err := d.Read(bufs, sizes, offset)
	if err != nil || n != 1 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if got := string(bufs[0][offset : offset+sizes[0]]); got != "\x45xyz" {
		t.Fatalf("packet = %q", got)
	}
}

func TestDevice_ReadWithoutRoomAfterOffset(t *testing.T) {
	d, peer := newDevice(t)
	if _, err := unix.Write(peer, []byte("\x45xyz")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	for _, size := range []int{offset, offset - 1} {
		n, err := d.Read([][]byte{make([]byte, size)}, []int{0}, offset)
		if !errors.Is(err, io.ErrShortBuffer) || n != 0 {
			t.Fatalf("Read into %d bytes = %d, %v, want io.ErrShortBuffer", size, n, err)
		}
	}
}

func TestDevice_CloseUnblocksRead(t *testing.T) {
	d, _ := newDevice(t)
	<-d.Events()
	done := make(chan error, 1)
	go func() {
		_, err := d.Read([][]byte{make([]byte, 128)}, []int{0}, offset)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, os.ErrClosed) {
			t.Fatalf("Read after Close = %v, want os.ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read not unblocked by Close")
	}
	if _, ok := <-d.Events(); ok {
		t.Fatal("events channel left open")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
