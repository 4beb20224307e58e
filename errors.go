package bonjour

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClosed 实例已关闭
	ErrClosed = errors.New("bonjour closed")

	// ErrNoBackend 没有装配任何后端
	ErrNoBackend = errors.New("no backend assembled")

	// ────────────────────────────────────────────────────────────────────────
	// 配置错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrUnknownBackend 未知的后端类型
	ErrUnknownBackend = errors.New("unknown backend kind")
)
