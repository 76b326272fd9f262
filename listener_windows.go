//go:build windows

package nblisten

import (
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/legamerdc/nblisten/internal/netutil"
)

// AcceptEx 要求地址缓冲每侧至少 sockaddr 最大长度 + 16 字节。
const acceptAddrLen = unsafe.Sizeof(syscall.RawSockaddrAny{}) + 16

var wsaOnce sync.Once

func wsaStartup() {
	wsaOnce.Do(func() {
		var d windows.WSAData
		_ = windows.WSAStartup(uint32(0x202), &d)
	})
}

// Listener Windows 下用重叠 AcceptEx 模拟非阻塞 accept：任意时刻至多
// 挂起一个接入操作，轮询时用零超时等待探测完成状态，WAIT_TIMEOUT 即
// "暂无连接"。pending 相关字段仅由轮询 goroutine 访问。
// Close 用 closesocket 作废句柄；挂起中的 AcceptEx 随之被中止，重发
// 一次即得到 WSAENOTSOCK 哨兵。event 句柄与监听器同生命周期。
type Listener struct {
	fd     windows.Handle
	family int32
	addr   net.Addr
	closed atomic.Bool

	event    windows.Handle
	pending  bool
	acceptFd windows.Handle
	ov       windows.Overlapped
	buf      [2 * acceptAddrLen]byte
}

// Bind 依次尝试候选地址，第一个绑定成功的生效。
func Bind(address string) (*Listener, error) {
	wsaStartup()
	addrs, err := resolveBindAddrs(address)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, a := range addrs {
		fd, fam, err := openListener(a)
		if err != nil {
			lastErr = err
			continue
		}
		sa, err := windows.Getsockname(fd)
		if err != nil {
			windows.Closesocket(fd)
			lastErr = err
			continue
		}
		event, err := windows.CreateEvent(nil, 1, 0, nil)
		if err != nil {
			windows.Closesocket(fd)
			lastErr = err
			continue
		}
		return &Listener{
			fd:       fd,
			family:   fam,
			addr:     netutil.SockaddrTCPAddr(sa),
			event:    event,
			acceptFd: windows.InvalidHandle,
		}, nil
	}
	if lastErr == nil {
		lastErr = ErrNoAddress
	}
	return nil, lastErr
}

func openListener(a bindAddr) (windows.Handle, int32, error) {
	fam := int32(windows.AF_INET)
	if a.v6 {
		fam = int32(windows.AF_INET6)
	}
	fd, err := windows.WSASocket(fam, windows.SOCK_STREAM, windows.IPPROTO_TCP,
		nil, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return windows.InvalidHandle, 0, err
	}
	_ = netutil.SetReuseAddr(fd, true)
	if err := syscall.SetNonblock(syscall.Handle(fd), true); err != nil {
		windows.Closesocket(fd)
		return windows.InvalidHandle, 0, err
	}
	sa, err := netutil.TCPSockaddr(a.ip, a.port, a.v6)
	if err != nil {
		windows.Closesocket(fd)
		return windows.InvalidHandle, 0, err
	}
	if err := windows.Bind(fd, sa); err != nil {
		windows.Closesocket(fd)
		return windows.InvalidHandle, 0, err
	}
	if err := windows.Listen(fd, 1024); err != nil {
		windows.Closesocket(fd)
		return windows.InvalidHandle, 0, err
	}
	return fd, fam, nil
}

// startAccept 发起一次重叠 accept。返回后要么同步完成（pending 仍为
// false，acceptFd 可用），要么挂起等待探测。
func (l *Listener) startAccept() error {
	fd, err := windows.WSASocket(l.family, windows.SOCK_STREAM, windows.IPPROTO_TCP,
		nil, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return err
	}
	_ = windows.ResetEvent(l.event)
	l.ov = windows.Overlapped{HEvent: l.event}
	l.acceptFd = fd
	var recvd uint32
	err = windows.AcceptEx(l.fd, fd, &l.buf[0], 0,
		uint32(acceptAddrLen), uint32(acceptAddrLen), &recvd, &l.ov)
	if err == nil {
		return nil
	}
	if err == windows.ERROR_IO_PENDING {
		l.pending = true
		return nil
	}
	windows.Closesocket(fd)
	l.acceptFd = windows.InvalidHandle
	// 监听句柄已被 Close 时这里报 WSAENOTSOCK
	return err
}

func (l *Listener) accept() (*Conn, error) {
	for {
		if !l.pending {
			if err := l.startAccept(); err != nil {
				return nil, err
			}
			if !l.pending {
				return l.finishAccept()
			}
		}
		s, err := windows.WaitForSingleObject(l.event, 0)
		if err != nil {
			return nil, err
		}
		if s == uint32(windows.WAIT_TIMEOUT) {
			return nil, windows.WSAEWOULDBLOCK
		}
		l.pending = false
		var qty, flags uint32
		if err := windows.WSAGetOverlappedResult(l.fd, &l.ov, &qty, false, &flags); err != nil {
			windows.Closesocket(l.acceptFd)
			l.acceptFd = windows.InvalidHandle
			if err == windows.ERROR_OPERATION_ABORTED {
				// Close 撕掉了挂起的 accept，重发一次换取哨兵错误
				continue
			}
			return nil, err
		}
		return l.finishAccept()
	}
}

func (l *Listener) finishAccept() (*Conn, error) {
	fd := l.acceptFd
	l.acceptFd = windows.InvalidHandle
	lfd := l.fd
	if err := windows.Setsockopt(fd, windows.SOL_SOCKET, windows.SO_UPDATE_ACCEPT_CONTEXT,
		(*byte)(unsafe.Pointer(&lfd)), int32(unsafe.Sizeof(lfd))); err != nil {
		windows.Closesocket(fd)
		return nil, err
	}
	_ = netutil.SetNoDelay(fd, true)
	var raddr net.Addr
	if sa, err := windows.Getpeername(fd); err == nil {
		raddr = netutil.SockaddrTCPAddr(sa)
	}
	return &Conn{fd: fd, laddr: l.addr, raddr: raddr}, nil
}

// invalidate 直接在系统层作废监听句柄，不经过任何上层状态。
func (l *Listener) invalidate() { _ = windows.Closesocket(l.fd) }

// isWouldBlock 判定"暂无连接"情形。
func isWouldBlock(err error) bool { return err == windows.WSAEWOULDBLOCK }

// isClosed 判定句柄失效哨兵，即 Close 触发的协作取消信号。
func isClosed(err error) bool { return err == windows.WSAENOTSOCK }
