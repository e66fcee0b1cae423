package serialstream

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed
	// reader or port.
	ErrClosed = errors.New("serialstream: closed")

	// ErrInactivityTimeout is delivered in-band on the event stream when a
	// push reader with a configured timeout receives no data for a full
	// timeout window. The subscription stays open.
	ErrInactivityTimeout = errors.New("serialstream: inactivity timeout")

	// ErrDeviceDisconnected is delivered in-band when the bound device is
	// detached.
	ErrDeviceDisconnected = errors.New("serialstream: device disconnected")

	// ErrUnsupportedPort is returned by NewReader when the given port
	// exposes neither a blocking-read nor a push capability.
	ErrUnsupportedPort = errors.New("serialstream: port exposes no read capability")
)

// PortError wraps a native failure with the operation that produced it.
type PortError struct {
	Op  string
	Err error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("serialstream: %s: %v", e.Op, e.Err)
}

func (e *PortError) Unwrap() error { return e.Err }
