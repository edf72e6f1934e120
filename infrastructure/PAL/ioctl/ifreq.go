// Package ioctl encodes and decodes the fixed-layout struct ifreq exchanged
// with the kernel by interface ioctl(2) requests. No other package touches
// the raw bytes.
package ioctl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

const (
	NameSize   = 16 // IFNAMSIZ
	maxReqSize = 40
	afInet     = 2
	sockInLen  = 16 // sizeof(struct sockaddr_in)
)

var (
	ErrNameTooLong = errors.New("interface name too long")
	ErrNotIPv4     = errors.New("not an IPv4 address")
)

// Layout describes how a platform shapes struct ifreq.
type Layout struct {
	// Size is sizeof(struct ifreq).
	Size int
	// SockaddrLen marks a BSD sockaddr, which starts with an sa_len byte
	// followed by a one byte family instead of a two byte family.
	SockaddrLen bool
}

var (
	LinuxLayout  = Layout{Size: 40}
	DarwinLayout = Layout{Size: 32, SockaddrLen: true}
)

// IfReq is a zero padded struct ifreq: the interface name followed by the
// ifr_ifru union. Setters clear the union before writing so no stale bytes
// from a previous request reach the kernel.
type IfReq struct {
	layout Layout
	raw    [maxReqSize]byte
}

func NewIfReq(layout Layout, name string) (*IfReq, error) {
	if layout.Size < NameSize+sockInLen || layout.Size > maxReqSize {
		return nil, fmt.Errorf("unsupported ifreq size %d", layout.Size)
	}
	if len(name) >= NameSize {
		return nil, fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	r := &IfReq{layout: layout}
	copy(r.raw[:NameSize], name)
	return r, nil
}

// Name returns the interface name up to the first NUL.
func (r *IfReq) Name() string {
	name := r.raw[:NameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// Bytes exposes the request exactly as the kernel sees it.
func (r *IfReq) Bytes() []byte {
	return r.raw[:r.layout.Size]
}

func (r *IfReq) union() []byte {
	return r.raw[NameSize:r.layout.Size]
}

// Int32 reads ifru_mtu (and the other int sized members).
func (r *IfReq) Int32() int32 {
	return int32(binary.NativeEndian.Uint32(r.union()))
}

func (r *IfReq) SetInt32(v int32) {
	u := r.union()
	clear(u)
	binary.NativeEndian.PutUint32(u, uint32(v))
}

// Int16 reads ifru_flags.
func (r *IfReq) Int16() int16 {
	return int16(binary.NativeEndian.Uint16(r.union()))
}

func (r *IfReq) SetInt16(v int16) {
	r.SetUint16(uint16(v))
}

func (r *IfReq) Uint16() uint16 {
	return binary.NativeEndian.Uint16(r.union())
}

func (r *IfReq) SetUint16(v uint16) {
	u := r.union()
	clear(u)
	binary.NativeEndian.PutUint16(u, v)
}

// Inet4Addr decodes the sockaddr_in held in the union. A family other than
// AF_INET (or AF_UNSPEC, which BSD kernels report for some masks) yields
// 0.0.0.0.
func (r *IfReq) Inet4Addr() netip.Addr {
	u := r.union()
	var family uint16
	if r.layout.SockaddrLen {
		family = uint16(u[1])
	} else {
		family = binary.NativeEndian.Uint16(u[0:2])
	}
	if family != afInet && family != 0 {
		return netip.AddrFrom4([4]byte{})
	}
	return netip.AddrFrom4([4]byte(u[4:8]))
}

func (r *IfReq) SetInet4Addr(addr netip.Addr) error {
	addr = addr.Unmap()
	if !addr.Is4() {
		return fmt.Errorf("%w: %s", ErrNotIPv4, addr)
	}
	u := r.union()
	clear(u)
	if r.layout.SockaddrLen {
		u[0] = sockInLen
		u[1] = afInet
	} else {
		binary.NativeEndian.PutUint16(u[0:2], afInet)
	}
	a := addr.As4()
	copy(u[4:8], a[:])
	return nil
}
