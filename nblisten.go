// Package nblisten 提供可从其它 goroutine 关停的非阻塞 accept 轮询。
//
// 标准库的 Accept 一旦阻塞就没有轻量的撤销手段；本包改用非阻塞监听
// socket + 固定间隔轮询：无连接就绪时睡眠 pollInterval，Close 直接在
// 系统层关闭句柄，轮询方在一个周期内观察到句柄失效并正常返回。
// 刻意保持简单，不追求 epoll/kqueue 级别的吞吐，适合测试与低流量场景。
package nblisten

import (
	"net"
	"time"
)

// Handler 为每条接入连接的同步回调。
// 连接的读写与关闭完全由 Handler 负责，其内部错误不影响 accept 轮询。
type Handler func(c *Conn)

// Addr 返回监听的本地地址（绑定 ":0" 时为实际分配的端口）。
func (l *Listener) Addr() net.Addr { return l.addr }

// Close 在系统层关闭监听句柄，可在任意 goroutine 调用，可重复调用。
// 若 HandleIncoming 正在运行，它会在一个轮询周期内观察到句柄失效并
// 返回 nil。与正在进行的 accept 系统调用之间存在固有竞争：句柄在调用
// 进行中被关闭时的行为依赖平台，常见结果同样是失效错误。
func (l *Listener) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.invalidate()
}

// HandleIncoming 进入 accept 轮询，对每条就绪连接同步调用 handler，
// 就绪的连接全部派发完才允许睡眠。无连接就绪时睡眠 pollInterval 后
// 重试；监听句柄失效（Close 的协作取消信号）返回 nil；其余系统错误
// 原样返回。除这两条错误路径外没有退出点。
func (l *Listener) HandleIncoming(handler Handler, pollInterval time.Duration) error {
	for {
		c, err := l.accept()
		if err == nil {
			handler(c)
			continue
		}
		if isWouldBlock(err) {
			time.Sleep(pollInterval)
			continue
		}
		if isClosed(err) {
			return nil
		}
		return err
	}
}
