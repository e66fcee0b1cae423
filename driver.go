package serialstream

import "time"

// Port is the opaque handle a Reader is bound to. The caller owns the
// handle; the reader only references it. A usable port implements exactly
// one of the two read capabilities, Driver or PushSource.
type Port interface {
	Name() string
}

// Driver is the blocking-read capability exposed by desktop-class native
// ports. WaitReadable reports whether the port became readable within the
// timeout; a false result with a nil error means the wait timed out.
// BlockingRead performs one bounded read of at most max bytes, returning an
// empty slice when the timeout elapses with no data.
type Driver interface {
	Port
	WaitReadable(timeout time.Duration) (bool, error)
	BlockingRead(max int, timeout time.Duration) ([]byte, error)
	Close() error
}

// PushSource is the already-asynchronous capability exposed by platforms
// that deliver bytes by callback rather than blocking reads. Subscribe and
// DeviceEvents return a receive channel plus a cancel function; cancelling
// detaches the channel from the source.
type PushSource interface {
	Port
	Subscribe() (<-chan []byte, func())
	DeviceEvents() (<-chan DeviceEvent, func())
	Close() error
}

// DeviceEventKind distinguishes attach from detach notifications.
type DeviceEventKind int

const (
	DeviceAttached DeviceEventKind = iota
	DeviceDetached
)

// DeviceEvent announces a device appearing or disappearing. PortName
// identifies the device; events for ports other than the bound one are
// ignored by the reader.
type DeviceEvent struct {
	PortName string
	Kind     DeviceEventKind
}

// Event is one element of a reader's output stream: either a chunk of data
// or an in-band error, never both. Data ownership transfers to the receiver.
type Event struct {
	Data []byte
	Err  error
}
