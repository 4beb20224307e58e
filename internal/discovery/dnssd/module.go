package dnssd

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-bonjour/config"
	pkgif "github.com/dep2p/go-bonjour/pkg/interfaces"
)

// logger 在 dnssd.go 中定义

// Module 返回 Fx 模块
var Module = fx.Module("discovery/dnssd",
	fx.Provide(ProvideBackend),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// ConfigFromUnified 从统一配置创建广域后端配置
func ConfigFromUnified(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	if len(cfg.WideArea.Domains) > 0 {
		out.Domains = append([]string(nil), cfg.WideArea.Domains...)
	}
	out.Resolver = cfg.WideArea.Resolver
	if d := cfg.WideArea.RefreshInterval.Duration(); d > 0 {
		out.RefreshInterval = d
	}
	if d := cfg.WideArea.Timeout.Duration(); d > 0 {
		out.QueryTimeout = d
	}
	if cfg.Browse.EventBuffer > 0 {
		out.EventBuffer = cfg.Browse.EventBuffer
	}
	return out
}

// BackendResult Fx 输出参数
type BackendResult struct {
	fx.Out
	Backend pkgif.Backend
	DNSSD   *Backend
}

// ProvideBackend 提供广域后端
func ProvideBackend(input ModuleInput) (BackendResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if input.Clock != nil {
		cfg.Clock = input.Clock
	}
	b, err := NewWithConfig(cfg)
	if err != nil {
		return BackendResult{}, err
	}
	return BackendResult{Backend: b, DNSSD: b}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC    fx.Lifecycle
	DNSSD *Backend
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.StopHook(func() error {
		return input.DNSSD.Close()
	}))
}
