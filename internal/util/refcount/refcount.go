// Package refcount 提供引用计数的共享资源句柄
//
// 多个浏览/注册会话共享同一份昂贵资源（如 D-Bus 连接 + Avahi 服务器
// 句柄）时，首次 Acquire 创建资源，最后一次 Release 关闭资源。
// 创建和关闭函数由使用方注入，句柄本身只负责计数和并发安全。
package refcount

import (
	"errors"
	"sync"
)

// ErrReleased Release 调用次数多于 Acquire
var ErrReleased = errors.New("refcount: release without matching acquire")

// Handle 引用计数句柄
//
// 零值不可用，必须通过 New 创建。
type Handle[T any] struct {
	open  func() (T, error)
	close func(T) error

	mu    sync.Mutex
	refs  int
	value T
}

// New 创建句柄
//
// open 在首次 Acquire 时调用；close 在计数归零时调用。
// close 为 nil 时归零只丢弃值。
func New[T any](open func() (T, error), close func(T) error) *Handle[T] {
	return &Handle[T]{open: open, close: close}
}

// Acquire 获取共享资源
//
// 首次调用创建资源；创建失败时计数保持为零，错误原样返回。
func (h *Handle[T]) Acquire() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		value, err := h.open()
		if err != nil {
			var zero T
			return zero, err
		}
		h.value = value
	}

	h.refs++
	return h.value, nil
}

// Release 释放共享资源
//
// 计数归零时调用 close，关闭错误返回给最后一个释放者。
// 归零后再次 Acquire 会重新创建资源。
func (h *Handle[T]) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return ErrReleased
	}

	h.refs--
	if h.refs > 0 {
		return nil
	}

	value := h.value
	var zero T
	h.value = zero

	if h.close == nil {
		return nil
	}
	return h.close(value)
}

// Refs 返回当前引用计数
func (h *Handle[T]) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}
