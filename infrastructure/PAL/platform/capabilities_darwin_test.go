package platform

import "testing"

func TestCapabilities_Darwin(t *testing.T) {
	caps := Capabilities()
	if caps.MultiQueue() {
		t.Fatal("expected MultiQueue() == false on darwin")
	}
	if caps.Ownership() || caps.Persistence() {
		t.Fatal("expected no ownership or persistence knobs on darwin")
	}
	if caps.FramingHeader() != 4 {
		t.Fatalf("expected a 4 byte framing header on darwin, got %d", caps.FramingHeader())
	}
}
