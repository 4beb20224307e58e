package bonjour

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-bonjour/config"
	avahibackend "github.com/dep2p/go-bonjour/internal/discovery/avahi"
	dnssdbackend "github.com/dep2p/go-bonjour/internal/discovery/dnssd"
	zeroconfbackend "github.com/dep2p/go-bonjour/internal/discovery/zeroconf"
	pkgif "github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
)

var fxLogger = log.Logger("bonjour/fx")

// buildFxApp 构建 Fx 应用
//
// 同一实例只装配一个后端模块，三个后端互斥：
//   - platform: internal/discovery/avahi（Avahi 守护进程，经 D-Bus）
//   - embedded: internal/discovery/zeroconf（进程内 mDNS）
//   - widearea: internal/discovery/dnssd（单播 DNS-SD，仅显式选择）
func buildFxApp(o *options, b *Bonjour) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 后端选择（auto 在装配前解析为具体后端）
	// ════════════════════════════════════════════════════════════════════════
	kind := resolveBackendKind(o.config)
	b.kind = kind

	modules := []fx.Option{
		// 配置注入
		fx.Supply(o.config),
	}

	// 时钟源（测试注入 mock）
	if o.clk != nil {
		clk := o.clk
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	switch kind {
	case config.BackendPlatform:
		modules = append(modules, avahibackend.Module)
	case config.BackendEmbedded:
		modules = append(modules, zeroconfbackend.Module)
	case config.BackendWideArea:
		modules = append(modules, dnssdbackend.Module)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 后端注入 + Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Invoke(injectBackend(b)),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...), nil
}

// resolveBackendKind 把 auto 解析为具体后端
//
// 探测 Avahi 守护进程：可达用平台后端，否则回退内嵌后端。
// 广域后端从不自动选择。
func resolveBackendKind(cfg *config.Config) config.BackendKind {
	if cfg.Backend != config.BackendAuto {
		return cfg.Backend
	}
	if probe, err := avahibackend.New(); err == nil {
		available := probe.Available()
		_ = probe.Close()
		if available {
			fxLogger.Debug("Avahi 守护进程可达，使用平台后端")
			return config.BackendPlatform
		}
	}
	fxLogger.Debug("Avahi 守护进程不可达，回退内嵌后端")
	return config.BackendEmbedded
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// backendInput 后端注入参数
type backendInput struct {
	fx.In
	Backend pkgif.Backend
}

// injectBackend 把装配好的后端注入 facade
func injectBackend(b *Bonjour) func(backendInput) {
	return func(input backendInput) {
		b.backend = input.Backend
	}
}
