package serialstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPendingBuffer_TakeSlicesInPushOrder(t *testing.T) {
	var buf pendingBuffer
	buf.push([]byte("abc"))
	buf.push([]byte("de"))

	out := buf.take(4)
	require.Equal(t, []byte("abcd"), out)
	require.Equal(t, 1, buf.size())

	out = buf.take(1)
	require.Equal(t, []byte("e"), out)
	require.Equal(t, 0, buf.size())
}

func TestPendingBuffer_TakeInsufficient(t *testing.T) {
	var buf pendingBuffer
	buf.push([]byte("ab"))

	require.Nil(t, buf.take(3))
	// nothing consumed by the failed take
	require.Equal(t, 2, buf.size())
	require.Equal(t, []byte("ab"), buf.take(2))
}

func TestPendingBuffer_Conservation(t *testing.T) {
	var buf pendingBuffer
	pushed, consumed := 0, 0
	chunks := [][]byte{[]byte("x"), []byte("yzw"), nil, []byte("0123456789")}
	for _, c := range chunks {
		buf.push(c)
		pushed += len(c)
		if out := buf.take(2); out != nil {
			consumed += len(out)
		}
		require.Equal(t, pushed, consumed+buf.size())
	}
}

func TestPendingBuffer_Reset(t *testing.T) {
	var buf pendingBuffer
	buf.push([]byte("leftover"))
	buf.reset()
	require.Equal(t, 0, buf.size())
	require.Nil(t, buf.take(1))
}
