//go:build linux || darwin

package nblisten

import (
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/legamerdc/nblisten/internal/netutil"
)

// Listener 持有一个非阻塞监听 fd，可在多个 goroutine 间共享。
// 共享状态只有 fd 本身：单次系统调用的原子性由内核保证，无需加锁。
type Listener struct {
	fd     int
	addr   net.Addr
	closed atomic.Bool
}

// Bind 依次尝试候选地址，第一个绑定成功的生效。
// socket 在返回给调用方之前已切换为非阻塞模式，失败时不留下任何资源。
func Bind(address string) (*Listener, error) {
	addrs, err := resolveBindAddrs(address)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, a := range addrs {
		fd, err := openListener(a)
		if err != nil {
			lastErr = err
			continue
		}
		sa, err := unix.Getsockname(fd)
		if err != nil {
			unix.Close(fd)
			lastErr = err
			continue
		}
		return &Listener{fd: fd, addr: netutil.SockaddrTCPAddr(sa)}, nil
	}
	if lastErr == nil {
		lastErr = ErrNoAddress
	}
	return nil, lastErr
}

func openListener(a bindAddr) (int, error) {
	fam := unix.AF_INET
	if a.v6 {
		fam = unix.AF_INET6
	}
	fd, err := unix.Socket(fam, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	_ = netutil.SetReuseAddr(fd, true)
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}
	sa, err := netutil.TCPSockaddr(a.ip, a.port, a.v6)
	if err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 1024); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// accept 尝试接入一条连接，成功时交给 Conn 的是阻塞 fd。
func (l *Listener) accept() (*Conn, error) {
	cfd, sa, err := sysAccept(l.fd)
	if err != nil {
		return nil, err
	}
	_ = netutil.SetNoDelay(cfd, true)
	return &Conn{fd: cfd, laddr: l.addr, raddr: netutil.SockaddrTCPAddr(sa)}, nil
}

// invalidate 直接关闭系统层 fd，不经过任何上层状态。
func (l *Listener) invalidate() { _ = unix.Close(l.fd) }

// isWouldBlock 判定非阻塞 accept 的"暂无连接"情形。
func isWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// isClosed 判定句柄失效哨兵，即 Close 触发的协作取消信号。
func isClosed(err error) bool { return err == unix.EBADF }
