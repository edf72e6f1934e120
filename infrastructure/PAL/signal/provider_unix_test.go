//go:build linux || darwin

package signal

import (
	"os"
	"slices"
	"syscall"
	"testing"
)

func TestDefaultProvider_ShutdownSignals(t *testing.T) {
	got := NewDefaultProvider().ShutdownSignals()
	for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP} {
		if !slices.Contains(got, sig) {
			t.Errorf("%v missing from %v", sig, got)
		}
	}
	if slices.Contains(got, os.Signal(syscall.SIGKILL)) {
		t.Errorf("SIGKILL cannot be handled but is listed: %v", got)
	}
	if len(got) != 3 {
		t.Errorf("got %d signals, want 3: %v", len(got), got)
	}
}
