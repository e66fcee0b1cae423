package serialstream

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bugst "go.bug.st/serial"
)

// fakeHandle is a scripted stand-in for a go.bug.st port.
type fakeHandle struct {
	mu          sync.Mutex
	readTimeout time.Duration
	reads       [][]byte
	readErr     error
	closed      bool
}

func (h *fakeHandle) SetReadTimeout(timeout time.Duration) error {
	h.mu.Lock()
	h.readTimeout = timeout
	h.mu.Unlock()
	return nil
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.readErr != nil {
		return 0, h.readErr
	}
	if len(h.reads) == 0 {
		// simulate the driver-level read timeout with no data
		return 0, nil
	}
	b := h.reads[0]
	h.reads = h.reads[1:]
	return copy(p, b), nil
}

func (h *fakeHandle) Write(p []byte) (int, error) { return len(p), nil }

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

func withFakeOpener(t *testing.T, h *fakeHandle) {
	t.Helper()
	orig := openSystemPort
	openSystemPort = func(device string, mode *bugst.Mode) (systemHandle, error) {
		return h, nil
	}
	t.Cleanup(func() { openSystemPort = orig })
}

func TestSystemPort_BlockingRead(t *testing.T) {
	h := &fakeHandle{reads: [][]byte{[]byte("data")}}
	withFakeOpener(t, h)

	p, err := OpenSystemPort("/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	defer p.Close()
	require.Equal(t, "/dev/ttyUSB0", p.Name())

	out, err := p.BlockingRead(64, 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), out)
	require.Equal(t, 50*time.Millisecond, h.readTimeout)

	// timed-out read yields an empty chunk, not an error
	out, err = p.BlockingRead(64, 50*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSystemPort_ReadErrorWrapped(t *testing.T) {
	nativeErr := errors.New("device reports readiness but returned no data")
	h := &fakeHandle{readErr: nativeErr}
	withFakeOpener(t, h)

	p, err := OpenSystemPort("/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.BlockingRead(64, 50*time.Millisecond)
	require.ErrorIs(t, err, nativeErr)
	var portErr *PortError
	require.ErrorAs(t, err, &portErr)
	require.Equal(t, "read", portErr.Op)
}

func TestSystemPort_DrivesReader(t *testing.T) {
	h := &fakeHandle{reads: [][]byte{[]byte("stream me")}}
	withFakeOpener(t, h)

	p, err := OpenSystemPort("/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	defer p.Close()

	r, err := NewReader(p, 0)
	require.NoError(t, err)
	defer r.Close()

	ev := collectEvent(t, r.Events(), time.Second)
	require.NoError(t, ev.Err)
	require.Equal(t, []byte("stream me"), ev.Data)
}

func TestListPorts(t *testing.T) {
	orig := getPortsList
	getPortsList = func() ([]string, error) {
		return []string{"/dev/ttyUSB0", "/dev/ttyACM1"}, nil
	}
	t.Cleanup(func() { getPortsList = orig })

	ports, err := ListPorts()
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyACM1"}, ports)
}
