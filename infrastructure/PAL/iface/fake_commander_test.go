//go:build linux || darwin

package iface

import (
	"bytes"
	"multitun/infrastructure/PAL/ioctl"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

type ifreqCall struct {
	name    string
	request uint
	flags   uint16
}

type intCall struct {
	request uint
	value   int
}

// fakeCommander keeps one stored union per getter request. A setter stores
// the union it was handed under the matching getter, so set-then-get round
// trips the way the kernel would.
type fakeCommander struct {
	log    bytes.Buffer
	calls  []ifreqCall
	ints   []intCall
	values map[uint][]byte
	failOn uint
}

var (
	getterOf = map[uint]uint{
		ioctl.NativeRequests.SetMTU:     ioctl.NativeRequests.GetMTU,
		ioctl.NativeRequests.SetAddr:    ioctl.NativeRequests.GetAddr,
		ioctl.NativeRequests.SetDstAddr: ioctl.NativeRequests.GetDstAddr,
		ioctl.NativeRequests.SetBrdAddr: ioctl.NativeRequests.GetBrdAddr,
		ioctl.NativeRequests.SetNetmask: ioctl.NativeRequests.GetNetmask,
		ioctl.NativeRequests.SetFlags:   ioctl.NativeRequests.GetFlags,
	}
	stepName = map[uint]string{
		ioctl.NativeRequests.GetMTU:     "get-mtu",
		ioctl.NativeRequests.SetMTU:     "set-mtu",
		ioctl.NativeRequests.GetAddr:    "get-addr",
		ioctl.NativeRequests.SetAddr:    "set-addr",
		ioctl.NativeRequests.GetDstAddr: "get-dst",
		ioctl.NativeRequests.SetDstAddr: "set-dst",
		ioctl.NativeRequests.GetBrdAddr: "get-brd",
		ioctl.NativeRequests.SetBrdAddr: "set-brd",
		ioctl.NativeRequests.GetNetmask: "get-mask",
		ioctl.NativeRequests.SetNetmask: "set-mask",
		ioctl.NativeRequests.GetFlags:   "get-flags",
		ioctl.NativeRequests.SetFlags:   "set-flags",
	}
)

func newFakeCommander() *fakeCommander {
	return &fakeCommander{values: map[uint][]byte{}}
}

func (c *fakeCommander) Ioctl(_ int, request uint, req *ioctl.IfReq) error {
	union := req.Bytes()[ioctl.NameSize:]
	c.calls = append(c.calls, ifreqCall{name: req.Name(), request: request, flags: req.Uint16()})
	if step, ok := stepName[request]; ok {
		c.log.WriteString(step + ";")
	}
	if request == c.failOn {
		return os.NewSyscallError("ioctl", unix.EPERM)
	}
	if get, ok := getterOf[request]; ok {
		c.values[get] = bytes.Clone(union)
		return nil
	}
	if v, ok := c.values[request]; ok {
		copy(union, v)
	}
	return nil
}

func (c *fakeCommander) IoctlInt(_ int, request uint, value int) error {
	c.ints = append(c.ints, intCall{request: request, value: value})
	if request == c.failOn {
		return os.NewSyscallError("ioctl", unix.EPERM)
	}
	return nil
}

// newTestInterface builds an Interface over a socketpair queue and a real,
// otherwise unused, control socket.
func newTestInterface(t *testing.T, commander ioctl.Commander) *Interface {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { _ = unix.Close(fds[1]) })
	queue := os.NewFile(uintptr(fds[0]), "queue")
	t.Cleanup(func() { _ = queue.Close() })

	control, err := openControl()
	if err != nil {
		t.Fatalf("control socket: %v", err)
	}
	i := newInterface("mt0", []*os.File{queue}, control, commander, nil, &recordingLogger{})
	t.Cleanup(func() { _ = i.Close() })
	return i
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, format)
}
