package trafficstats

import "testing"

func TestFormatRate(t *testing.T) {
	if got := FormatRate(1200); got != "1.2 KiB/s" {
		t.Fatalf("unexpected rate format: %q", got)
	}
}

func TestFormatTotal(t *testing.T) {
	if got := FormatTotal(3 * 1024 * 1024); got != "3.0 MiB" {
		t.Fatalf("unexpected total format: %q", got)
	}
}

func TestFormat_SmallValuesStayInBaseUnit(t *testing.T) {
	if got := FormatTotal(500); got != "500 B" {
		t.Fatalf("expected base unit, got %q", got)
	}
	if got := FormatRate(100); got != "100 B/s" {
		t.Fatalf("expected base unit, got %q", got)
	}
}

func TestFormat_Snapshot(t *testing.T) {
	s := Snapshot{Packets: []uint64{2, 1}, Bytes: []uint64{1024, 1024}, RXBytesTotal: 2048, RXRate: 512}
	if got := Format(s); got != "rx 3 packets, 2.0 KiB (512 B/s) per queue [2 1]" {
		t.Fatalf("unexpected line: %q", got)
	}
}
