package nblisten

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindEphemeralPort(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	require.True(t, ok)
	assert.NotZero(t, addr.Port, "ephemeral bind should report the assigned port")
	assert.True(t, addr.IP.IsLoopback())
}

func TestBindWildcard(t *testing.T) {
	l, err := Bind(":0")
	require.NoError(t, err)
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	require.True(t, ok)
	assert.NotZero(t, addr.Port)
}

func TestBindAddrInUse(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, err = Bind(l.Addr().String())
	require.Error(t, err)
}

func TestPreCloseReturnsPromptly(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	l.Close()

	var calls int
	start := time.Now()
	err = l.HandleIncoming(func(*Conn) { calls++ }, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCloseIdempotent(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	l.Close()
	l.Close()

	require.NoError(t, l.HandleIncoming(func(*Conn) {}, time.Millisecond))
}

func TestCloseUnblocksHandleIncoming(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		l.Close()
	}()

	start := time.Now()
	err = l.HandleIncoming(func(*Conn) {}, 10*time.Millisecond)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, time.Second, "termination must be within one poll interval of Close")
}

func TestDispatchInArrivalOrder(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	const n = 5
	conns := make([]net.Conn, 0, n)
	for i := 0; i < n; i++ {
		c, err := net.Dial("tcp", l.Addr().String())
		require.NoError(t, err)
		conns = append(conns, c)
		_, err = c.Write([]byte{byte(i)})
		require.NoError(t, err)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	got := make([]byte, 0, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.HandleIncoming(func(c *Conn) {
			var b [1]byte
			if _, err := c.Read(b[:]); err == nil {
				got = append(got, b[0])
			}
			c.Close()
			if len(got) == n {
				l.Close()
			}
		}, 5*time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		l.Close()
		t.Fatal("handler did not see all connections in time")
	}
	require.Len(t, got, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, byte(i), got[i], "connections must be dispatched in arrival order")
	}
}

func TestConnReadWrite(t *testing.T) {
	l, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	var remote net.Addr
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.HandleIncoming(func(c *Conn) {
			defer c.Close()
			remote = c.RemoteAddr()
			buf := make([]byte, 64)
			n, err := c.Read(buf)
			if err != nil {
				return
			}
			_, _ = c.Write(buf[:n])
		}, 5*time.Millisecond)
	}()

	c, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(c, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	l.Close()
	<-done
	require.NotNil(t, remote)
	assert.Equal(t, c.LocalAddr().String(), remote.String())
}

func TestResolveBindAddrs(t *testing.T) {
	addrs, err := resolveBindAddrs("127.0.0.1:9000")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, 9000, addrs[0].port)
	assert.False(t, addrs[0].v6)

	addrs, err = resolveBindAddrs(":7")
	require.NoError(t, err)
	require.Len(t, addrs, 2, "empty host should expand to v4/v6 wildcard candidates")

	addrs, err = resolveBindAddrs("[::1]:80")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].v6)

	_, err = resolveBindAddrs("no-port")
	require.Error(t, err)
}
