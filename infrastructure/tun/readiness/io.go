//go:build linux || darwin

// Package readiness performs packet I/O on one non-blocking device handle
// through the Go runtime network poller.
//
// Every waiting operation is the same small state machine: attempt the
// syscall, and if the kernel answers EAGAIN park on the poller until the
// handle is reported ready, then attempt again. A wake-up that still ends in
// EAGAIN goes back to parking; the caller only sees the final result.
package readiness

import (
	"context"
	"errors"
	"fmt"
	apptun "multitun/application/network/tun"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned by the Try* operations when the handle is not ready.
	ErrWouldBlock = errors.New("operation would block")
	// ErrWriteZero is returned by SendAll when the device accepts no bytes.
	ErrWriteZero = errors.New("device accepted zero bytes")
	// ErrClosed is returned by operations on a closed queue.
	ErrClosed = os.ErrClosed
)

// aLongTimeAgo is a deadline in the past, used to kick parked waiters.
var aLongTimeAgo = time.Unix(1, 0)

// IO owns one data-path handle. All methods may be called concurrently:
// reads and writes proceed independently, concurrent reads race for the
// same readiness notification and the kernel decides which one gets data.
type IO struct {
	file      *os.File
	conn      syscall.RawConn
	framer    apptun.Framer
	readKick  kick
	writeKick kick
	closed    atomic.Bool
}

// New takes ownership of file, which must be open in non-blocking mode so
// that the runtime poller manages it.
func New(file *os.File, framer apptun.Framer) (*IO, error) {
	conn, err := file.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("raw conn for %s: %w", file.Name(), err)
	}
	if err := file.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("%s is not pollable: %w", file.Name(), err)
	}
	return &IO{
		file:      file,
		conn:      conn,
		framer:    framer,
		readKick:  kick{set: file.SetReadDeadline},
		writeKick: kick{set: file.SetWriteDeadline},
	}, nil
}

// Recv waits until the handle is readable and reads one packet into p.
func (q *IO) Recv(ctx context.Context, p []byte) (int, error) {
	return q.await(ctx, &q.readKick, q.conn.Read, "read", func(fd int) (int, error) {
		return q.framer.Read(fd, p)
	})
}

// Send waits until the handle is writable and writes p as one packet.
func (q *IO) Send(ctx context.Context, p []byte) (int, error) {
	return q.await(ctx, &q.writeKick, q.conn.Write, "write", func(fd int) (int, error) {
		return q.framer.Write(fd, p)
	})
}

// SendVectored writes bufs as one packet.
func (q *IO) SendVectored(ctx context.Context, bufs [][]byte) (int, error) {
	return q.await(ctx, &q.writeKick, q.conn.Write, "writev", func(fd int) (int, error) {
		return q.framer.WriteVectored(fd, bufs)
	})
}

// SendAll sends the unsent remainder of p until all of it is accepted.
// An empty p returns immediately without touching the device.
func (q *IO) SendAll(ctx context.Context, p []byte) error {
	for len(p) > 0 {
		n, err := q.Send(ctx, p)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrWriteZero
		}
		p = p[n:]
	}
	return nil
}

func (q *IO) TryRecv(p []byte) (int, error) {
	return q.try("read", func(fd int) (int, error) {
		return q.framer.Read(fd, p)
	})
}

func (q *IO) TrySend(p []byte) (int, error) {
	return q.try("write", func(fd int) (int, error) {
		return q.framer.Write(fd, p)
	})
}

func (q *IO) TrySendVectored(bufs [][]byte) (int, error) {
	return q.try("writev", func(fd int) (int, error) {
		return q.framer.WriteVectored(fd, bufs)
	})
}

// Flush commits kernel-side buffered data. Handles that cannot be synced
// (TUN devices, sockets) report success.
func (q *IO) Flush() error {
	var opErr error
	if err := q.conn.Control(func(fd uintptr) {
		opErr = unix.Fsync(int(fd))
	}); err != nil {
		return q.closedOr(err)
	}
	switch {
	case opErr == nil,
		errors.Is(opErr, unix.EINVAL),
		errors.Is(opErr, unix.ENOTSUP),
		errors.Is(opErr, unix.EOPNOTSUPP),
		errors.Is(opErr, unix.EROFS):
		return nil
	}
	return os.NewSyscallError("fsync", opErr)
}

// Fd returns the raw descriptor, or -1 once closed. Unlike (*os.File).Fd it
// leaves the handle in non-blocking mode.
func (q *IO) Fd() int {
	fd := -1
	_ = q.conn.Control(func(raw uintptr) {
		fd = int(raw)
	})
	return fd
}

func (q *IO) File() *os.File { return q.file }

// Close closes the handle and wakes every pending operation with ErrClosed.
// It is safe to call multiple times.
func (q *IO) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	return q.file.Close()
}

func (q *IO) await(
	ctx context.Context,
	k *kick,
	park func(func(uintptr) bool) error,
	op string,
	attempt func(fd int) (int, error),
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if ctx.Done() != nil {
		kicked := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			k.arm()
			close(kicked)
		})
		defer func() {
			if !stop() {
				<-kicked
				k.disarm()
			}
		}()
	}

	for {
		var (
			n     int
			opErr error
		)
		err := park(func(fd uintptr) bool {
			n, opErr = ignoringEINTR(func() (int, error) {
				return attempt(int(fd))
			})
			return !errors.Is(opErr, unix.EAGAIN)
		})
		switch {
		case err == nil && opErr == nil:
			return n, nil
		case err == nil:
			return 0, os.NewSyscallError(op, opErr)
		case errors.Is(err, os.ErrDeadlineExceeded):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			// Another call on this direction was cancelled; wait again.
			runtime.Gosched()
		default:
			return 0, q.closedOr(err)
		}
	}
}

func (q *IO) try(op string, attempt func(fd int) (int, error)) (int, error) {
	var (
		n     int
		opErr error
	)
	if err := q.conn.Control(func(fd uintptr) {
		n, opErr = ignoringEINTR(func() (int, error) {
			return attempt(int(fd))
		})
	}); err != nil {
		return 0, q.closedOr(err)
	}
	if errors.Is(opErr, unix.EAGAIN) {
		return 0, ErrWouldBlock
	}
	if opErr != nil {
		return 0, os.NewSyscallError(op, opErr)
	}
	return n, nil
}

func (q *IO) closedOr(err error) error {
	if q.closed.Load() {
		return ErrClosed
	}
	return err
}

func ignoringEINTR(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if !errors.Is(err, unix.EINTR) {
			return n, err
		}
	}
}

// kick wakes the parked waiters of one direction on behalf of cancelled
// calls. The deadline stays in the past while any cancellation is pending.
type kick struct {
	mu      sync.Mutex
	pending int
	set     func(time.Time) error
}

func (k *kick) arm() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending++
	_ = k.set(aLongTimeAgo)
}

func (k *kick) disarm() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending--
	if k.pending == 0 {
		_ = k.set(time.Time{})
	}
}
