package bonjour

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-bonjour/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 统一配置，选项在其上叠加
	config *config.Config

	// clk 时钟源（广域后端轮询用，测试注入 mock）
	clk clock.Clock

	// userFxOptions 用户扩展的 Fx 选项
	userFxOptions []fx.Option
}

// defaultOptions 返回默认选项
func defaultOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// apply 应用选项列表
func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              后端选择
// ════════════════════════════════════════════════════════════════════════════

// WithBackend 显式选择后端
//
// 默认 auto：Avahi 守护进程可达时用平台后端，否则用内嵌后端。
func WithBackend(kind config.BackendKind) Option {
	return func(o *options) error {
		switch kind {
		case config.BackendAuto, config.BackendPlatform, config.BackendEmbedded, config.BackendWideArea:
			o.config.Backend = kind
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
		}
	}
}

// WithPlatformBackend 选择平台后端（Avahi 守护进程）
func WithPlatformBackend() Option {
	return WithBackend(config.BackendPlatform)
}

// WithEmbeddedBackend 选择内嵌后端（进程内 mDNS）
func WithEmbeddedBackend() Option {
	return WithBackend(config.BackendEmbedded)
}

// ════════════════════════════════════════════════════════════════════════════
//                              浏览配置
// ════════════════════════════════════════════════════════════════════════════

// WithDomain 设置默认浏览/注册域
func WithDomain(domain string) Option {
	return func(o *options) error {
		if domain == "" {
			return fmt.Errorf("domain must not be empty")
		}
		o.config.Browse.Domain = domain
		return nil
	}
}

// WithEventBuffer 设置事件 channel 缓冲大小
func WithEventBuffer(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("event buffer must not be negative")
		}
		o.config.Browse.EventBuffer = n
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              广域配置
// ════════════════════════════════════════════════════════════════════════════

// WithWideAreaDomains 设置广域浏览域并切换到广域后端
func WithWideAreaDomains(domains ...string) Option {
	return func(o *options) error {
		if len(domains) == 0 {
			return fmt.Errorf("at least one wide-area domain is required")
		}
		o.config.Backend = config.BackendWideArea
		o.config.WideArea.Domains = domains
		return nil
	}
}

// WithWideAreaResolver 设置广域后端使用的 DNS 服务器
func WithWideAreaResolver(addr string) Option {
	return func(o *options) error {
		o.config.WideArea.Resolver = addr
		return nil
	}
}

// WithRefreshInterval 设置广域后端轮询间隔
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("refresh interval must be positive")
		}
		o.config.WideArea.RefreshInterval = config.Duration(d)
		return nil
	}
}

// WithClock 设置时钟源（测试注入 mock 时钟）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clk = clk
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              整体配置
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置
//
// 在其他选项之前应用，后续选项在此配置上叠加。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config must not be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithFxOption 追加用户自定义的 Fx 选项
//
// 供高级用户向内部依赖注入容器挂接额外组件。
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
