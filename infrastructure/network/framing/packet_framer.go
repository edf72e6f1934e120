//go:build linux || darwin

package framing

import (
	apptun "multitun/application/network/tun"
	"sync"

	"golang.org/x/sys/unix"
)

// Compile-time interface checks.
var (
	_ apptun.Framer = Passthrough{}
	_ apptun.Framer = FamilyHeader{}
)

// Passthrough is the framer for devices that carry bare IP packets
// (Linux TUN opened with IFF_NO_PI).
type Passthrough struct{}

func NewPassthrough() apptun.Framer { return Passthrough{} }

func (Passthrough) HeaderSize() int { return 0 }

func (Passthrough) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (Passthrough) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (Passthrough) WriteVectored(fd int, bufs [][]byte) (int, error) {
	return unix.Writev(fd, bufs)
}

const familyHeaderSize = 4

// inetHeader is AF_INET in network byte order, as utun expects it.
var inetHeader = [familyHeaderSize]byte{0, 0, 0, unix.AF_INET}

var scratch = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 65535+familyHeaderSize)
		return &b
	},
}

func borrow(n int) *[]byte {
	bp := scratch.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

// FamilyHeader is the framer for devices that prefix every packet with a
// 4-byte address family (darwin utun). Reads strip the prefix; writes
// prepend the IPv4 marker and assemble the frame in one contiguous buffer.
type FamilyHeader struct{}

func NewFamilyHeader() apptun.Framer { return FamilyHeader{} }

func (FamilyHeader) HeaderSize() int { return familyHeaderSize }

// Read returns 0 without error when the device hands back less than a header.
func (FamilyHeader) Read(fd int, p []byte) (int, error) {
	bp := borrow(len(p) + familyHeaderSize)
	defer scratch.Put(bp)
	buf := *bp

	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, err
	}
	if n < familyHeaderSize {
		return 0, nil
	}
	return copy(p, buf[familyHeaderSize:n]), nil
}

func (FamilyHeader) Write(fd int, p []byte) (int, error) {
	bp := borrow(familyHeaderSize + len(p))
	defer scratch.Put(bp)
	buf := *bp

	copy(buf, inetHeader[:])
	copy(buf[familyHeaderSize:], p)
	return writeFrame(fd, buf)
}

func (FamilyHeader) WriteVectored(fd int, bufs [][]byte) (int, error) {
	size := familyHeaderSize
	for _, b := range bufs {
		size += len(b)
	}
	bp := borrow(size)
	defer scratch.Put(bp)
	buf := *bp

	off := copy(buf, inetHeader[:])
	for _, b := range bufs {
		off += copy(buf[off:], b)
	}
	return writeFrame(fd, buf)
}

// writeFrame reports payload bytes only; a write that did not get past the
// header counts as zero.
func writeFrame(fd int, frame []byte) (int, error) {
	n, err := unix.Write(fd, frame)
	if err != nil {
		return 0, err
	}
	if n <= familyHeaderSize {
		return 0, nil
	}
	return n - familyHeaderSize, nil
}
