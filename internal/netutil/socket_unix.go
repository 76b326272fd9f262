//go:build linux || darwin

package netutil

import (
	"net"

	"golang.org/x/sys/unix"
)

func SetReuseAddr(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, v)
}

func SetNoDelay(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, v)
}

// TCPSockaddr 把 IP/端口转成 bind 需要的 unix.Sockaddr。ip 为 nil 时
// 表示通配地址。
func TCPSockaddr(ip net.IP, port int, v6 bool) (unix.Sockaddr, error) {
	if v6 {
		sa := &unix.SockaddrInet6{Port: port}
		if ip != nil {
			copy(sa.Addr[:], ip.To16())
		}
		return sa, nil
	}
	sa := &unix.SockaddrInet4{Port: port}
	if ip != nil {
		ip4 := ip.To4()
		if ip4 == nil {
			return nil, unix.EINVAL
		}
		copy(sa.Addr[:], ip4)
	}
	return sa, nil
}

// SockaddrTCPAddr 把 accept/getsockname 返回的 Sockaddr 还原为 *net.TCPAddr。
func SockaddrTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	}
	return nil
}
