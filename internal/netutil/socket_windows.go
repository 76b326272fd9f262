//go:build windows

package netutil

import (
	"net"

	"golang.org/x/sys/windows"
)

func SetReuseAddr(fd windows.Handle, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return windows.SetsockoptInt(fd, windows.SOL_SOCKET, windows.SO_REUSEADDR, v)
}

func SetNoDelay(fd windows.Handle, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return windows.SetsockoptInt(fd, windows.IPPROTO_TCP, windows.TCP_NODELAY, v)
}

// TCPSockaddr 把 IP/端口转成 bind 需要的 windows.Sockaddr。ip 为 nil 时
// 表示通配地址。
func TCPSockaddr(ip net.IP, port int, v6 bool) (windows.Sockaddr, error) {
	if v6 {
		sa := &windows.SockaddrInet6{Port: port}
		if ip != nil {
			copy(sa.Addr[:], ip.To16())
		}
		return sa, nil
	}
	sa := &windows.SockaddrInet4{Port: port}
	if ip != nil {
		ip4 := ip.To4()
		if ip4 == nil {
			return nil, windows.WSAEINVAL
		}
		copy(sa.Addr[:], ip4)
	}
	return sa, nil
}

// SockaddrTCPAddr 把 accept/getsockname 返回的 Sockaddr 还原为 *net.TCPAddr。
func SockaddrTCPAddr(sa windows.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *windows.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	case *windows.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	}
	return nil
}
