package avahi

import (
	"errors"
	"time"
)

const (
	// DefaultEventBuffer 事件 channel 缓冲
	DefaultEventBuffer = 100

	// DefaultResolveTimeout 单个条目的解析超时
	DefaultResolveTimeout = 5 * time.Second
)

// Config 平台后端配置
type Config struct {
	// Domain 默认浏览/注册域，空值按 "local." 处理
	Domain string

	// EventBuffer 事件 channel 缓冲大小
	EventBuffer int

	// ResolveTimeout 浏览回调中解析单个条目的超时
	ResolveTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Domain:         "local.",
		EventBuffer:    DefaultEventBuffer,
		ResolveTimeout: DefaultResolveTimeout,
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
	if c.ResolveTimeout <= 0 {
		return errors.New("resolve timeout must be positive")
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

// WithResolveTimeout 设置解析超时
func WithResolveTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ResolveTimeout = d
	}
}
