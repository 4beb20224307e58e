package zeroconf

import (
	"errors"
	"time"
)

const (
	// DefaultEventBuffer 事件 channel 缓冲
	DefaultEventBuffer = 100

	// DefaultEntryBuffer zeroconf 条目 channel 缓冲
	DefaultEntryBuffer = 1000

	// DefaultShutdownTimeout 关闭时等待会话 goroutine 的上限
	//
	// zeroconf Browse 在 context 取消后可能需要数秒才退出，
	// 超时后 goroutine 在后台继续清理，不阻塞关闭流程。
	DefaultShutdownTimeout = 2 * time.Second
)

// Config 内嵌后端配置
type Config struct {
	// Domain 默认浏览/注册域，空值按 "local." 处理
	Domain string

	// EventBuffer 事件 channel 缓冲大小
	EventBuffer int

	// EntryBuffer zeroconf 条目 channel 缓冲大小
	EntryBuffer int

	// ShutdownTimeout 关闭等待上限
	ShutdownTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Domain:          "local.",
		EventBuffer:     DefaultEventBuffer,
		EntryBuffer:     DefaultEntryBuffer,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.EventBuffer < 0 {
		return errors.New("event buffer must not be negative")
	}
	if c.EntryBuffer <= 0 {
		return errors.New("entry buffer must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

// ApplyOptions 应用配置选项
func (c *Config) ApplyOptions(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// ConfigOption 配置选项函数
type ConfigOption func(*Config)

// WithDomain 设置默认域
func WithDomain(domain string) ConfigOption {
	return func(c *Config) {
		c.Domain = domain
	}
}

// WithEventBuffer 设置事件缓冲
func WithEventBuffer(n int) ConfigOption {
	return func(c *Config) {
		c.EventBuffer = n
	}
}

// WithShutdownTimeout 设置关闭等待上限
func WithShutdownTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = d
	}
}
