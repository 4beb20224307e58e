package zeroconf

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zc "github.com/grandcat/zeroconf"

	"github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
	"github.com/dep2p/go-bonjour/pkg/types"
)

var logger = log.Logger("discovery-zeroconf")

// ============================================================================
//                              Backend - 内嵌后端
// ============================================================================

// Backend 进程内 mDNS 后端
type Backend struct {
	config *Config

	// closed 后端关闭标志
	closed atomic.Bool

	// wg 跟踪所有会话 goroutine
	wg sync.WaitGroup

	// cancelMu 保护 cancels
	cancelMu sync.Mutex
	// cancels 活跃浏览会话的取消函数，Close 时统一调用
	cancels map[int64]context.CancelFunc
	// nextSession 会话编号
	nextSession atomic.Int64

	// 统计
	discovered    atomic.Int64
	activeBrowses atomic.Int32
	activeRegs    atomic.Int32
	statsMu       sync.Mutex
	lastDiscovery time.Time
}

// 确保 Backend 实现后端接口
var _ interfaces.Backend = (*Backend)(nil)

// New 创建内嵌后端
func New(opts ...ConfigOption) (*Backend, error) {
	cfg := DefaultConfig()
	cfg.ApplyOptions(opts...)
	return NewWithConfig(cfg)
}

// NewWithConfig 使用指定配置创建内嵌后端
func NewWithConfig(cfg *Config) (*Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrapError("new", err, "配置无效")
	}
	return &Backend{
		config:  cfg,
		cancels: make(map[int64]context.CancelFunc),
	}, nil
}

// Available 内嵌后端不依赖外部守护进程，始终可用
func (b *Backend) Available() bool {
	return !b.closed.Load()
}

// ============================================================================
//                              Browse - 持续发现
// ============================================================================

// Browse 持续发现指定类型的服务
//
// 每次调用创建独立的解析器会话。条目经去重后转换为事件：
// TTL 为零的 goodbye 报文产生 Removed 事件，其余产生 Added 事件。
// ctx 取消后事件 channel 被关闭。
func (b *Backend) Browse(ctx context.Context, service, domain string) (<-chan types.Event, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	service = types.NormalizeService(service)
	if service == "" {
		return nil, ErrInvalidService
	}
	if domain == "" {
		domain = b.config.Domain
	}
	domain = types.NormalizeDomain(domain)

	resolver, err := zc.NewResolver(nil)
	if err != nil {
		return nil, wrapError("browse", err, "创建解析器失败")
	}

	// 会话 context 同时受调用方 ctx 和 Close 控制
	sctx, cancel := context.WithCancel(ctx)
	id := b.nextSession.Add(1)
	b.cancelMu.Lock()
	b.cancels[id] = cancel
	b.cancelMu.Unlock()

	entries := make(chan *zc.ServiceEntry, b.config.EntryBuffer)
	if err := resolver.Browse(sctx, service, domain, entries); err != nil {
		b.dropSession(id)
		cancel()
		return nil, wrapError("browse", err, "启动浏览失败")
	}

	logger.Debug("开始浏览", "service", service, "domain", domain)

	events := make(chan types.Event, b.config.EventBuffer)
	b.activeBrowses.Add(1)
	b.wg.Add(1)
	go b.forward(sctx, id, entries, events)
	return events, nil
}

// forward 把解析器条目转换为事件并转发
//
// entries 由 zeroconf 在 ctx 取消后关闭，循环随之退出。
func (b *Backend) forward(ctx context.Context, id int64, entries <-chan *zc.ServiceEntry, events chan<- types.Event) {
	defer b.wg.Done()
	defer close(events)
	defer b.activeBrowses.Add(-1)
	defer b.dropSession(id)

	seen := make(map[string]struct{})
	for entry := range entries {
		if entry == nil {
			continue
		}
		ev, ok := b.convertEntry(entry, seen)
		if !ok {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// convertEntry 转换条目并维护去重状态
func (b *Backend) convertEntry(entry *zc.ServiceEntry, seen map[string]struct{}) (types.Event, bool) {
	svc := entryToService(entry)
	key := svc.Fullname()

	if entry.TTL == 0 {
		// goodbye 报文，只对已知实例发 Removed
		if _, ok := seen[key]; !ok {
			return types.Event{}, false
		}
		delete(seen, key)
		logger.Debug("服务离线", "instance", svc.Instance, "service", svc.Service)
		return types.NewEvent(types.EventRemoved, svc), true
	}

	if _, ok := seen[key]; ok {
		return types.Event{}, false
	}
	seen[key] = struct{}{}

	b.discovered.Add(1)
	b.statsMu.Lock()
	b.lastDiscovery = time.Now()
	b.statsMu.Unlock()

	logger.Debug("发现服务",
		"instance", svc.Instance,
		"service", svc.Service,
		"host", svc.Host,
		"port", svc.Port)
	return types.NewEvent(types.EventAdded, svc), true
}

// dropSession 移除会话取消函数
func (b *Backend) dropSession(id int64) {
	b.cancelMu.Lock()
	delete(b.cancels, id)
	b.cancelMu.Unlock()
}

// ============================================================================
//                              Register - 服务注册
// ============================================================================

// Register 注册（广播）一个服务
//
// 实例名为空时生成随机名称。携带显式主机名和地址的服务走代理
// 注册路径，否则由 zeroconf 使用本机信息应答。
func (b *Backend) Register(ctx context.Context, svc types.Service) (interfaces.Registration, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance := svc.Instance
	if instance == "" {
		instance = defaultInstanceName()
	}
	service := types.NormalizeService(svc.Service)
	if service == "" {
		return nil, ErrInvalidService
	}
	domain := svc.Domain
	if domain == "" {
		domain = b.config.Domain
	}
	domain = types.NormalizeDomain(domain)
	if svc.Port <= 0 || svc.Port > 65535 {
		return nil, wrapError("register", types.ErrInvalidPort, "端口非法")
	}

	text := types.EncodeText(svc.Text)
	ifaces := advertiseInterfaces()

	var (
		server *zc.Server
		err    error
	)
	if svc.Host != "" && svc.HasAddrs() {
		server, err = zc.RegisterProxy(
			instance, service, domain, svc.Port,
			svc.Host, addrStrings(svc), text, ifaces)
	} else {
		server, err = zc.Register(instance, service, domain, svc.Port, text, ifaces)
	}
	if err != nil {
		return nil, wrapError("register", err, "注册服务失败")
	}

	logger.Info("注册服务",
		"instance", instance,
		"service", service,
		"domain", domain,
		"port", svc.Port)

	out := svc
	out.Instance = instance
	out.Service = service
	out.Domain = domain

	b.activeRegs.Add(1)
	return &registration{backend: b, service: out, server: server}, nil
}

// defaultInstanceName 生成随机实例名
func defaultInstanceName() string {
	return "bonjour-" + uuid.NewString()[:8]
}

// registration 内嵌后端的注册句柄
type registration struct {
	backend *Backend
	service types.Service
	server  *zc.Server
	once    sync.Once
}

// Service 返回注册时的服务信息
func (r *registration) Service() types.Service {
	return r.service
}

// Cancel 撤销注册，发送 goodbye 报文并停止应答
func (r *registration) Cancel() error {
	r.once.Do(func() {
		r.server.Shutdown()
		r.backend.activeRegs.Add(-1)
		logger.Info("撤销注册", "instance", r.service.Instance, "service", r.service.Service)
	})
	return nil
}

// ============================================================================
//                              Lookup - 一次性解析
// ============================================================================

// Lookup 一次性解析指定服务实例
//
// 返回第一个匹配的条目；ctx 超时或取消前没有应答时返回 ErrNotFound。
func (b *Backend) Lookup(ctx context.Context, instance, service, domain string) (*types.Service, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	service = types.NormalizeService(service)
	if service == "" {
		return nil, ErrInvalidService
	}
	if domain == "" {
		domain = b.config.Domain
	}
	domain = types.NormalizeDomain(domain)

	resolver, err := zc.NewResolver(nil)
	if err != nil {
		return nil, wrapError("lookup", err, "创建解析器失败")
	}

	entries := make(chan *zc.ServiceEntry, b.config.EntryBuffer)
	if err := resolver.Lookup(ctx, instance, service, domain, entries); err != nil {
		return nil, wrapError("lookup", err, "启动解析失败")
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil, ErrNotFound
			}
			if entry == nil || entry.TTL == 0 {
				continue
			}
			if instance != "" && entry.Instance != instance {
				continue
			}
			svc := entryToService(entry)
			return &svc, nil
		case <-ctx.Done():
			return nil, ErrNotFound
		}
	}
}

// ============================================================================
//                              Stats / Close
// ============================================================================

// Stats 返回后端统计信息
func (b *Backend) Stats() interfaces.BackendStats {
	b.statsMu.Lock()
	last := b.lastDiscovery
	b.statsMu.Unlock()
	return interfaces.BackendStats{
		Running:             !b.closed.Load(),
		ServicesDiscovered:  b.discovered.Load(),
		LastDiscovery:       last,
		ActiveBrowses:       int(b.activeBrowses.Load()),
		ActiveRegistrations: int(b.activeRegs.Load()),
	}
}

// Close 关闭后端，取消所有浏览会话并等待其退出（幂等）
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.cancelMu.Lock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancelMu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(b.config.ShutdownTimeout):
		logger.Warn("等待浏览会话退出超时")
	}

	logger.Info("内嵌后端已关闭")
	return nil
}
