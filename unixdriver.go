//go:build linux
// +build linux

package serialstream

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// Config holds the parameters for opening a local serial port.
type Config struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration // zero means wait indefinitely
}

// UnixPort is a Driver over a raw Linux serial device. The port is put in
// raw, low-latency mode via termios; readiness waits use poll(2) over the
// port fd plus a self-pipe so Close can wake a blocked wait.
type UnixPort struct {
	fd     int
	file   *os.File
	device string
	pipeR  int // self-pipe read fd
	pipeW  int // self-pipe write fd
	closed atomic.Bool
}

var _ Driver = (*UnixPort)(nil)

// OpenUnixPort opens and configures a serial device for raw operation.
func OpenUnixPort(cfg Config) (*UnixPort, error) {
	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	// Baud rate
	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: reads return as soon as a byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Back to blocking mode now that config is done
	syscall.SetNonblock(fd, false)

	// Self-pipe so Close can wake a blocked poll
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &UnixPort{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		device: cfg.Device,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// Open opens the device described by cfg and wraps it in a Reader. The
// returned reader owns the port: closing the reader closes the port too.
func Open(cfg Config) (*Reader, error) {
	port, err := OpenUnixPort(cfg)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(port, cfg.ReadTimeout)
	if err != nil {
		port.Close()
		return nil, err
	}
	r.owned = port
	return r, nil
}

// Name returns the device path.
func (p *UnixPort) Name() string { return p.device }

// WaitReadable polls until the port is readable, the timeout elapses, or
// the port is closed. A negative timeout waits indefinitely.
func (p *UnixPort) WaitReadable(timeout time.Duration) (bool, error) {
	if p.closed.Load() {
		return false, ErrClosed
	}
	pfd := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.pipeR), Events: unix.POLLIN},
	}
	n, err := unix.Poll(pfd, pollMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, &PortError{Op: "wait", Err: err}
	}
	if n == 0 {
		return false, nil
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		// Drain pipe
		var b [1]byte
		unix.Read(p.pipeR, b[:])
		return false, ErrClosed
	}
	if pfd[0].Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) != 0 {
		return true, nil
	}
	return false, nil
}

// BlockingRead performs one bounded read of at most max bytes. A timeout
// with no data returns an empty slice and no error.
func (p *UnixPort) BlockingRead(max int, timeout time.Duration) ([]byte, error) {
	ready, err := p.WaitReadable(timeout)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, nil
	}
	buf := make([]byte, max)
	n, err := p.file.Read(buf)
	if err != nil {
		return nil, &PortError{Op: "read", Err: err}
	}
	return buf[:n], nil
}

// Write writes raw bytes to the port.
func (p *UnixPort) Write(b []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	return p.file.Write(b)
}

// WriteString writes a string followed by the given terminator.
func (p *UnixPort) WriteString(s, terminator string) error {
	_, err := p.file.WriteString(s + terminator)
	return err
}

// Close closes the device and unblocks any in-flight WaitReadable.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *UnixPort) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	// Wake up poll through the self-pipe before tearing down fds
	unix.Write(p.pipeW, []byte{1})
	err := p.file.Close()
	unix.Close(p.pipeR)
	unix.Close(p.pipeW)
	return err
}

func pollMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int(timeout / time.Millisecond)
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200 // fallback
	}
}
