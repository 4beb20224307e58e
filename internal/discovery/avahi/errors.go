package avahi

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	// ErrClosed 后端已关闭
	ErrClosed = errors.New("avahi backend closed")

	// ErrNotFound 未找到服务实例
	ErrNotFound = errors.New("service instance not found")

	// ErrInvalidService 服务类型非法
	ErrInvalidService = errors.New("invalid service type")

	// ErrDaemonUnavailable Avahi 守护进程不可达
	//
	// 连接系统总线或绑定守护进程失败时返回，errors.Is 可探测，
	// 自动选择模式据此回退到内嵌后端。
	ErrDaemonUnavailable = errors.New("avahi daemon unavailable")
)

// Error 平台后端错误
type Error struct {
	Op      string // 操作名称
	Err     error  // 原始错误
	Message string // 错误描述
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("avahi %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("avahi %s: %s", e.Op, e.Message)
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError 包装错误
func wrapError(op string, err error, message string) *Error {
	return &Error{Op: op, Err: err, Message: message}
}

// daemonError 包装连接失败，同时标记 ErrDaemonUnavailable
func daemonError(err error, message string) *Error {
	return &Error{Op: "connect", Err: errors.Join(ErrDaemonUnavailable, err), Message: message}
}
