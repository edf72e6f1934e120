package settings

import (
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"os"
)

// Tun is the validated set of parameters a virtual interface is created with.
// It is consumed once at allocation time and never mutated afterwards.
// Unset addresses are the zero netip.Addr; unset Owner/Group are nil.
type Tun struct {
	Name        string     `json:"Name,omitempty"`
	MTU         int        `json:"MTU,omitzero"`
	Address     netip.Addr `json:"Address,omitzero"`
	Destination netip.Addr `json:"Destination,omitzero"`
	Broadcast   netip.Addr `json:"Broadcast,omitzero"`
	Netmask     netip.Addr `json:"Netmask,omitzero"`
	Up          bool       `json:"Up,omitempty"`
	Persist     bool       `json:"Persist,omitempty"`
	Owner       *int       `json:"Owner,omitempty"`
	Group       *int       `json:"Group,omitempty"`
	Queues      int        `json:"Queues,omitzero"`
}

// QueueCount returns the number of data-path handles to allocate. Defaults to 1.
func (t Tun) QueueCount() int {
	if t.Queues < 1 {
		return 1
	}
	return t.Queues
}

// ReadTun decodes and validates a JSON encoded Tun from r. Unknown fields
// are rejected.
func ReadTun(r io.Reader) (Tun, error) {
	var t Tun
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&t); err != nil {
		return Tun{}, fmt.Errorf("decode tun settings: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tun{}, err
	}
	return t, nil
}

func LoadTun(path string) (Tun, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tun{}, fmt.Errorf("open tun settings: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadTun(f)
}
