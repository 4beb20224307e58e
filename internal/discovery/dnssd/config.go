package dnssd

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultEventBuffer 事件 channel 缓冲
	DefaultEventBuffer = 100

	// DefaultRefreshInterval 默认轮询间隔
	DefaultRefreshInterval = 60 * time.Second

	// DefaultQueryTimeout 单次 DNS 查询超时
	DefaultQueryTimeout = 5 * time.Second

	// resolvConfPath 系统解析器配置路径
	resolvConfPath = "/etc/resolv.conf"
)

// Config 广域后端配置
type Config struct {
	// Domains 默认浏览域列表（如 "dns-sd.example.org."）
	//
	// 单播 DNS-SD 没有 "local." 这样的固定域，必须显式指定；
	// 多个域在同一轮询周期内依次查询。
	Domains []string

	// Resolver DNS 服务器地址（host:port），空值使用系统配置
	Resolver string

	// RefreshInterval 轮询间隔
	RefreshInterval time.Duration

	// QueryTimeout 单次查询超时
	QueryTimeout time.Duration

	// EventBuffer 事件 channel 缓冲大小
	EventBuffer int

	// Clock 时钟源，nil 使用真实时钟；测试注入 mock 时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: DefaultRefreshInterval,
		QueryTimeout:    DefaultQueryTimeout,
		EventBuffer:     DefaultEventBuffer,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.EventBuffer < 0 {
		return errors.New("event buffer must not be negative")
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

// WithDomain 追加一个默认浏览域
func WithDomain(domain string) ConfigOption {
	return func(c *Config) {
		c.Domains = append(c.Domains, domain)
	}
}

// WithDomains 设置默认浏览域列表
func WithDomains(domains ...string) ConfigOption {
	return func(c *Config) {
		c.Domains = append([]string(nil), domains...)
	}
}

// WithResolver 设置 DNS 服务器地址
func WithResolver(addr string) ConfigOption {
	return func(c *Config) {
		c.Resolver = addr
	}
}

// WithRefreshInterval 设置轮询间隔
func WithRefreshInterval(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RefreshInterval = d
	}
}

// WithQueryTimeout 设置查询超时
func WithQueryTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.QueryTimeout = d
	}
}

// WithClock 设置时钟源
func WithClock(clk clock.Clock) ConfigOption {
	return func(c *Config) {
		c.Clock = clk
	}
}
