//go:build linux || darwin

package nblisten

import (
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// Conn 是交给 Handler 的阻塞连接，对系统调用做最薄的一层封装。
type Conn struct {
	fd    int
	laddr net.Addr
	raddr net.Addr
}

func (c *Conn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	var total int
	for total < len(p) {
		n, err := unix.Write(c.fd, p[total:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Conn) Close() error { return unix.Close(c.fd) }

func (c *Conn) LocalAddr() net.Addr  { return c.laddr }
func (c *Conn) RemoteAddr() net.Addr { return c.raddr }
