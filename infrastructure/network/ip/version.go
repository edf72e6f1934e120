package ip

import "strconv"

type Version byte

const (
	Unknown Version = 0
	V4      Version = 4
	V6      Version = 6
)

// VersionOf reads the version nibble of a raw packet. Anything other than
// 4 or 6, including an empty packet, is Unknown.
func VersionOf(pkt []byte) Version {
	if len(pkt) == 0 {
		return Unknown
	}
	switch v := Version(pkt[0] >> 4); v {
	case V4, V6:
		return v
	default:
		return Unknown
	}
}

func (v Version) String() string {
	switch v {
	case V4, V6:
		return "IPv" + strconv.Itoa(int(v))
	default:
		return "unknown"
	}
}
