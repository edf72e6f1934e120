package ioctl

// Requests holds the platform request codes for the interface control
// plane. Every getter/setter pair reads and writes one IfReq.
type Requests struct {
	GetMTU, SetMTU         uint
	GetAddr, SetAddr       uint
	GetDstAddr, SetDstAddr uint
	GetBrdAddr, SetBrdAddr uint
	GetNetmask, SetNetmask uint
	GetFlags, SetFlags     uint
}
