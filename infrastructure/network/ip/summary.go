package ip

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

var ErrUnknownVersion = errors.New("unknown IP version")

// Summary is the part of an IP header worth a log line.
type Summary struct {
	Version Version
	Src     netip.Addr
	Dst     netip.Addr
	// Protocol is the IPv4 protocol or the IPv6 next header.
	Protocol int
	// Length is the number of bytes read from the device.
	Length int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s %s -> %s proto %d len %d", s.Version, s.Src, s.Dst, s.Protocol, s.Length)
}

type HeaderParser struct{}

func NewHeaderParser() *HeaderParser { return &HeaderParser{} }

// Summarize parses the fixed header of pkt. The IPv4 total length field is
// not consulted; raw-socket byte order quirks do not apply to TUN frames.
func (HeaderParser) Summarize(pkt []byte) (Summary, error) {
	switch VersionOf(pkt) {
	case V4:
		h, err := ipv4.ParseHeader(pkt)
		if err != nil {
			return Summary{}, fmt.Errorf("invalid IPv4 header: %w", err)
		}
		src, _ := netip.AddrFromSlice(h.Src.To4())
		dst, _ := netip.AddrFromSlice(h.Dst.To4())
		return Summary{Version: V4, Src: src, Dst: dst, Protocol: h.Protocol, Length: len(pkt)}, nil
	case V6:
		h, err := ipv6.ParseHeader(pkt)
		if err != nil {
			return Summary{}, fmt.Errorf("invalid IPv6 header: %w", err)
		}
		src, _ := netip.AddrFromSlice(h.Src)
		dst, _ := netip.AddrFromSlice(h.Dst)
		return Summary{Version: V6, Src: src, Dst: dst, Protocol: h.NextHeader, Length: len(pkt)}, nil
	default:
		if len(pkt) == 0 {
			return Summary{}, fmt.Errorf("empty packet: %w", ErrUnknownVersion)
		}
		return Summary{}, fmt.Errorf("%w: %d", ErrUnknownVersion, pkt[0]>>4)
	}
}
