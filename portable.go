package serialstream

import (
	"fmt"
	"time"

	bugst "go.bug.st/serial"
)

// systemHandle is the slice of go.bug.st/serial.Port this driver needs.
type systemHandle interface {
	SetReadTimeout(timeout time.Duration) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// allow tests to override the port opener
var openSystemPort = func(device string, mode *bugst.Mode) (systemHandle, error) {
	return bugst.Open(device, mode)
}

// SystemPort is a Driver backed by go.bug.st/serial, usable on any platform
// the library supports. It has no separate readiness primitive; the bounded
// read itself carries the timeout, so WaitReadable reports ready
// immediately and BlockingRead does the waiting.
type SystemPort struct {
	port   systemHandle
	device string
}

var _ Driver = (*SystemPort)(nil)

// OpenSystemPort opens device at the given baud rate with 8N1 framing.
func OpenSystemPort(device string, baudRate int) (*SystemPort, error) {
	mode := &bugst.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := openSystemPort(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return &SystemPort{port: port, device: device}, nil
}

func (p *SystemPort) Name() string { return p.device }

func (p *SystemPort) WaitReadable(timeout time.Duration) (bool, error) {
	return true, nil
}

// BlockingRead reads at most max bytes, waiting up to timeout for the first
// byte. A timeout with no data returns an empty slice and no error.
func (p *SystemPort) BlockingRead(max int, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = waitSlice
	}
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return nil, &PortError{Op: "set read timeout", Err: err}
	}
	buf := make([]byte, max)
	n, err := p.port.Read(buf)
	if err != nil {
		return nil, &PortError{Op: "read", Err: err}
	}
	return buf[:n], nil
}

func (p *SystemPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *SystemPort) Close() error {
	return p.port.Close()
}
