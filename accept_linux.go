//go:build linux

package nblisten

import "golang.org/x/sys/unix"

// sysAccept Linux 下用 Accept4 一次性带上 CLOEXEC。
// 新 fd 不继承监听 fd 的非阻塞标志，默认即为阻塞模式。
func sysAccept(lfd int) (int, unix.Sockaddr, error) {
	return unix.Accept4(lfd, unix.SOCK_CLOEXEC)
}
