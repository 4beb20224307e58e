package bonjour

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-bonjour/config"
	pkgif "github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
	"github.com/dep2p/go-bonjour/pkg/types"
)

var logger = log.Logger("bonjour")

const (
	// startTimeout Fx 应用启动超时
	startTimeout = 15 * time.Second

	// stopTimeout Fx 应用停止超时
	stopTimeout = 15 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Bonjour - 发现门面
// ════════════════════════════════════════════════════════════════════════════

// Bonjour DNS-SD 服务发现门面
//
// 封装一个互斥选定的发现后端（平台/内嵌/广域），对外提供统一的
// 浏览、注册和解析 API。事件以 channel 流的形式交付，流的生命
// 周期绑定调用方传入的 context。
type Bonjour struct {
	// kind 装配的后端类型（auto 已解析为具体类型）
	kind config.BackendKind

	// app 内部 Fx 应用，Close 时停止
	app *fx.App

	// backend 装配的后端，由 injectBackend 填充
	backend pkgif.Backend

	// closed 关闭标志
	closed atomic.Bool

	// regMu 保护 regs
	regMu sync.Mutex
	// regs 尚未撤销的注册，Close 时统一撤销
	regs map[int64]pkgif.Registration
	// nextReg 注册编号
	nextReg atomic.Int64
}

// New 创建并启动发现门面
//
// 后端在创建时装配并启动；auto 模式下探测 Avahi 守护进程，
// 可达用平台后端，否则回退进程内 mDNS。
func New(opts ...Option) (*Bonjour, error) {
	o := defaultOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	b := &Bonjour{regs: make(map[int64]pkgif.Registration)}
	app, err := buildFxApp(o, b)
	if err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}
	if b.backend == nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		_ = app.Stop(stopCtx)
		return nil, ErrNoBackend
	}

	b.app = app
	logger.Info("bonjour 已启动", "backend", string(b.kind))
	return b, nil
}

// Kind 返回装配的后端类型
func (b *Bonjour) Kind() config.BackendKind {
	return b.kind
}

// ════════════════════════════════════════════════════════════════════════════
//                              发现操作
// ════════════════════════════════════════════════════════════════════════════

// Browse 持续发现指定类型的服务，域取自配置
//
// 返回的 channel 在 ctx 取消后被关闭，之后不再有任何事件。
func (b *Bonjour) Browse(ctx context.Context, service string) (<-chan types.Event, error) {
	return b.BrowseDomain(ctx, service, "")
}

// BrowseDomain 在指定域持续发现服务
func (b *Bonjour) BrowseDomain(ctx context.Context, service, domain string) (<-chan types.Event, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return b.backend.Browse(ctx, service, domain)
}

// Register 注册（广播）一个服务
//
// 返回的 Registration 用于撤销注册；未撤销的注册在 Close 时
// 统一撤销。
func (b *Bonjour) Register(ctx context.Context, svc types.Service) (pkgif.Registration, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	inner, err := b.backend.Register(ctx, svc)
	if err != nil {
		return nil, err
	}

	id := b.nextReg.Add(1)
	reg := &trackedRegistration{owner: b, id: id, inner: inner}
	b.regMu.Lock()
	b.regs[id] = inner
	b.regMu.Unlock()
	return reg, nil
}

// Lookup 一次性解析指定服务实例
func (b *Bonjour) Lookup(ctx context.Context, instance, service string) (*types.Service, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return b.backend.Lookup(ctx, instance, service, "")
}

// Stats 返回后端统计信息
func (b *Bonjour) Stats() pkgif.BackendStats {
	if b.closed.Load() || b.backend == nil {
		return pkgif.BackendStats{}
	}
	return b.backend.Stats()
}

// ════════════════════════════════════════════════════════════════════════════
//                              关闭
// ════════════════════════════════════════════════════════════════════════════

// Close 关闭门面（幂等，重复调用返回 nil）
//
// 顺序：先撤销所有未撤销的注册，再停止内部应用（触发后端关闭）。
// 各步骤的错误用 multierr 聚合返回。
func (b *Bonjour) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	var errs error

	b.regMu.Lock()
	regs := b.regs
	b.regs = nil
	b.regMu.Unlock()
	for _, reg := range regs {
		errs = multierr.Append(errs, reg.Cancel())
	}

	if b.app != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		errs = multierr.Append(errs, b.app.Stop(stopCtx))
	}

	logger.Info("bonjour 已关闭")
	return errs
}

// dropRegistration 从跟踪表移除已撤销的注册
func (b *Bonjour) dropRegistration(id int64) {
	b.regMu.Lock()
	if b.regs != nil {
		delete(b.regs, id)
	}
	b.regMu.Unlock()
}

// trackedRegistration 带跟踪的注册句柄
//
// Cancel 时从门面的跟踪表移除自己，避免 Close 重复撤销。
type trackedRegistration struct {
	owner *Bonjour
	id    int64
	inner pkgif.Registration
	once  sync.Once
	err   error
}

// Service 返回注册时的服务信息
func (r *trackedRegistration) Service() types.Service {
	return r.inner.Service()
}

// Cancel 撤销注册（幂等）
func (r *trackedRegistration) Cancel() error {
	r.once.Do(func() {
		r.owner.dropRegistration(r.id)
		r.err = r.inner.Cancel()
	})
	return r.err
}
