//go:build darwin

package nblisten

import "golang.org/x/sys/unix"

// sysAccept BSD 系的 accept 会继承监听 fd 的 O_NONBLOCK，显式切回阻塞。
func sysAccept(lfd int) (int, unix.Sockaddr, error) {
	fd, sa, err := unix.Accept(lfd)
	if err != nil {
		return -1, nil, err
	}
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return -1, nil, err
	}
	return fd, sa, nil
}
