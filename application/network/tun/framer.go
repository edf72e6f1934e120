package tun

// Framer hides per-platform packet framing. Read and Write always deal in
// bare IP packets; any device header is added or stripped internally and
// never counted in the returned length.
type Framer interface {
	// HeaderSize is the number of bytes the device prepends to every packet.
	HeaderSize() int
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	WriteVectored(fd int, bufs [][]byte) (int, error)
}
