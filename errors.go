package nblisten

import "errors"

var (
	// ErrPlatformNotSupported 当前平台没有对应的 socket 实现
	ErrPlatformNotSupported = errors.New("nblisten: platform not supported")

	// ErrNoAddress 地址解析没有产出可绑定候选
	ErrNoAddress = errors.New("nblisten: no bindable address")
)
