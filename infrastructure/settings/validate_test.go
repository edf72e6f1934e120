package settings

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
)

func TestTun_Validate(t *testing.T) {
	owner := -1
	tests := []struct {
		name    string
		tun     Tun
		wantErr bool
	}{
		{name: "zero value", tun: Tun{}},
		{name: "full", tun: Tun{Name: "tun0", MTU: 1500, Address: netip.MustParseAddr("10.0.0.1"), Queues: 4}},
		{name: "mapped address", tun: Tun{Address: netip.MustParseAddr("::ffff:10.0.0.1")}},
		{name: "name too long", tun: Tun{Name: "abcdefghijklmnop"}, wantErr: true},
		{name: "mtu too small", tun: Tun{MTU: 100}, wantErr: true},
		{name: "mtu too large", tun: Tun{MTU: 70000}, wantErr: true},
		{name: "too many queues", tun: Tun{Queues: MaxQueues + 1}, wantErr: true},
		{name: "negative queues", tun: Tun{Queues: -1}, wantErr: true},
		{name: "ipv6 netmask", tun: Tun{Netmask: netip.MustParseAddr("ffff::")}, wantErr: true},
		{name: "negative owner", tun: Tun{Owner: &owner}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tun.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidTun) {
				t.Fatalf("expected ErrInvalidTun, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReadTun_Validates(t *testing.T) {
	_, err := ReadTun(strings.NewReader(`{"MTU": 10}`))
	if !errors.Is(err, ErrInvalidTun) {
		t.Fatalf("expected ErrInvalidTun, got %v", err)
	}
}
