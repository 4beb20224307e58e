package dnssd

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	// ErrClosed 后端已关闭
	ErrClosed = errors.New("dnssd backend closed")

	// ErrNotFound 未找到服务实例
	ErrNotFound = errors.New("service instance not found")

	// ErrInvalidService 服务类型非法
	ErrInvalidService = errors.New("invalid service type")

	// ErrNoDomain 未配置浏览域
	ErrNoDomain = errors.New("wide-area browse requires an explicit domain")

	// ErrUnsupported 广域后端不支持的操作
	ErrUnsupported = errors.New("operation not supported by wide-area backend")

	// ErrNoResolver 找不到可用的 DNS 服务器
	ErrNoResolver = errors.New("no usable dns resolver")
)

// Error 广域后端错误
type Error struct {
	Op      string // 操作名称
	Err     error  // 原始错误
	Message string // 错误描述
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dnssd %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("dnssd %s: %s", e.Op, e.Message)
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError 包装错误
func wrapError(op string, err error, message string) *Error {
	return &Error{Op: op, Err: err, Message: message}
}
