package avahi

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-bonjour/config"
	pkgif "github.com/dep2p/go-bonjour/pkg/interfaces"
)

// logger 在 avahi.go 中定义

// Module 返回 Fx 模块
var Module = fx.Module("discovery/avahi",
	fx.Provide(ProvideBackend),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建平台后端配置
func ConfigFromUnified(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	if cfg.Browse.Domain != "" {
		out.Domain = cfg.Browse.Domain
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
	Avahi   *Backend
}

// ProvideBackend 提供平台后端
func ProvideBackend(input ModuleInput) (BackendResult, error) {
	b, err := NewWithConfig(ConfigFromUnified(input.UnifiedCfg))
	if err != nil {
		return BackendResult{}, err
	}
	return BackendResult{Backend: b, Avahi: b}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC    fx.Lifecycle
	Avahi *Backend
}

// registerLifecycle 注册生命周期钩子
//
// 守护进程连接按需建立，这里只挂接关闭钩子。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.StopHook(func() error {
		return input.Avahi.Close()
	}))
}
