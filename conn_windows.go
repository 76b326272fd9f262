//go:build windows

package nblisten

import (
	"io"
	"net"

	"golang.org/x/sys/windows"
)

// Conn 是交给 Handler 的阻塞连接，同步 WSARecv/WSASend 封装。
type Conn struct {
	fd    windows.Handle
	laddr net.Addr
	raddr net.Addr
}

func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := windows.WSABuf{Len: uint32(len(p)), Buf: &p[0]}
	var n, flags uint32
	if err := windows.WSARecv(c.fd, &buf, 1, &n, &flags, nil, nil); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

func (c *Conn) Write(p []byte) (int, error) {
	var total int
	for total < len(p) {
		buf := windows.WSABuf{Len: uint32(len(p) - total), Buf: &p[total]}
		var n uint32
		if err := windows.WSASend(c.fd, &buf, 1, &n, 0, nil, nil); err != nil {
			return total, err
		}
		total += int(n)
	}
	return total, nil
}

func (c *Conn) Close() error { return windows.Closesocket(c.fd) }

func (c *Conn) LocalAddr() net.Addr  { return c.laddr }
func (c *Conn) RemoteAddr() net.Addr { return c.raddr }
