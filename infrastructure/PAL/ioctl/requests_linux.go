package ioctl

import "golang.org/x/sys/unix"

var NativeLayout = LinuxLayout

var NativeRequests = Requests{
	GetMTU:     unix.SIOCGIFMTU,
	SetMTU:     unix.SIOCSIFMTU,
	GetAddr:    unix.SIOCGIFADDR,
	SetAddr:    unix.SIOCSIFADDR,
	GetDstAddr: unix.SIOCGIFDSTADDR,
	SetDstAddr: unix.SIOCSIFDSTADDR,
	GetBrdAddr: unix.SIOCGIFBRDADDR,
	SetBrdAddr: unix.SIOCSIFBRDADDR,
	GetNetmask: unix.SIOCGIFNETMASK,
	SetNetmask: unix.SIOCSIFNETMASK,
	GetFlags:   unix.SIOCGIFFLAGS,
	SetFlags:   unix.SIOCSIFFLAGS,
}
