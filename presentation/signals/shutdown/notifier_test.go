//go:build linux || darwin

package shutdown

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestNotifier_DeliversSubscribedSignal(t *testing.T) {
	n := NewNotifier()
	ch := make(chan os.Signal, 1)
	n.Notify(ch, syscall.SIGUSR1)
	defer n.Stop(ch)

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case sig := <-ch:
		if sig != syscall.SIGUSR1 {
			t.Fatalf("got %v, want SIGUSR1", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SIGUSR1 was not delivered")
	}
}

func TestNotifier_StopUnsubscribes(t *testing.T) {
	n := NewNotifier()
	ch := make(chan os.Signal, 1)
	n.Notify(ch, syscall.SIGUSR2)
	n.Stop(ch)

	// Keep the process alive if the signal were to go unhandled.
	guard := make(chan os.Signal, 1)
	n.Notify(guard, syscall.SIGUSR2)
	defer n.Stop(guard)

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	<-guard
	select {
	case sig := <-ch:
		t.Fatalf("stopped channel received %v", sig)
	default:
	}
}
