package shotmux

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialUDPPort(t *testing.T, p *UDPPort) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, p.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestUDPPort_FramesDatagramsAsLines(t *testing.T) {
	t.Parallel()

	port, err := NewUDPPort("127.0.0.1:0")
	require.NoError(t, err)
	defer port.Close()

	conn := dialUDPPort(t, port)
	_, err = conn.Write([]byte(fullShotLine))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := port.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, fullShotLine+"\n", string(buf[:n]))
}

func TestUDPPort_ShortReadsDrainPending(t *testing.T) {
	t.Parallel()

	port, err := NewUDPPort("127.0.0.1:0")
	require.NoError(t, err)
	defer port.Close()

	conn := dialUDPPort(t, port)
	_, err = conn.Write([]byte("abcdef"))
	require.NoError(t, err)

	// A reader with a small buffer consumes the framed datagram in pieces.
	var got []byte
	buf := make([]byte, 4)
	for len(got) < 7 {
		n, err := port.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, "abcdef\n", string(got))
}

func TestUDPPort_WriteGoesToLastPeer(t *testing.T) {
	t.Parallel()

	port, err := NewUDPPort("127.0.0.1:0")
	require.NoError(t, err)
	defer port.Close()

	// With no peer yet, writes are dropped but report success.
	n, err := port.Write([]byte("MODE,1\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	conn := dialUDPPort(t, port)
	_, err = conn.Write([]byte("{}"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	_, err = port.Read(buf)
	require.NoError(t, err)

	_, err = port.Write([]byte("ACK\n"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ACK\n", string(buf[:n]))
}

func TestUDPPort_ReadAfterClose(t *testing.T) {
	t.Parallel()

	port, err := NewUDPPort("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, port.Close())

	_, err = port.Read(make([]byte, 16))
	assert.Error(t, err)
}

func TestNewUDPPort_BadAddress(t *testing.T) {
	t.Parallel()

	_, err := NewUDPPort("not-an-address:::")
	assert.Error(t, err)
}
