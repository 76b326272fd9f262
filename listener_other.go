//go:build !linux && !darwin && !windows

package nblisten

import (
	"net"
	"sync/atomic"
)

// 其余平台暂无 socket 实现，仅保留占位以保证编译。

type Listener struct {
	addr   net.Addr
	closed atomic.Bool
}

type Conn struct{}

func Bind(address string) (*Listener, error) { return nil, ErrPlatformNotSupported }

func (l *Listener) accept() (*Conn, error) { return nil, ErrPlatformNotSupported }
func (l *Listener) invalidate()            {}

func isWouldBlock(err error) bool { return false }
func isClosed(err error) bool     { return false }

func (c *Conn) Read(p []byte) (int, error)  { return 0, ErrPlatformNotSupported }
func (c *Conn) Write(p []byte) (int, error) { return 0, ErrPlatformNotSupported }
func (c *Conn) Close() error                { return ErrPlatformNotSupported }
func (c *Conn) LocalAddr() net.Addr         { return nil }
func (c *Conn) RemoteAddr() net.Addr        { return nil }
