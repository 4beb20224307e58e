package avahi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/holoplot/go-avahi"

	"github.com/dep2p/go-bonjour/internal/util/refcount"
	"github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
	"github.com/dep2p/go-bonjour/pkg/types"
)

var logger = log.Logger("discovery-avahi")

// ============================================================================
//                              serverHandle - 共享守护进程连接
// ============================================================================

// serverHandle 到 Avahi 守护进程的连接
//
// 连接是进程内共享的昂贵资源，由引用计数句柄管理：
// 首个会话建立连接，最后一个会话释放时断开。
type serverHandle struct {
	conn   *dbus.Conn
	server *avahi.Server
}

// openServer 建立私有 D-Bus 连接并绑定 Avahi 服务
//
// 使用私有连接而非共享的 dbus.SystemBus()，后者是进程级单例，
// 关闭它会影响进程内其他 D-Bus 使用方。
func openServer() (*serverHandle, error) {
	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return nil, daemonError(err, "连接系统总线失败")
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, daemonError(err, "总线认证失败")
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, daemonError(err, "总线握手失败")
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		conn.Close()
		return nil, daemonError(err, "绑定守护进程失败")
	}

	logger.Debug("已连接 Avahi 守护进程")
	return &serverHandle{conn: conn, server: server}, nil
}

// closeServer 断开守护进程连接
func closeServer(h *serverHandle) error {
	// Server.Close 会一并关闭底层 D-Bus 连接
	h.server.Close()
	logger.Debug("已断开 Avahi 守护进程")
	return nil
}

// ============================================================================
//                              Backend - 平台后端
// ============================================================================

// Backend Avahi 平台后端
//
// 通过 D-Bus 驱动系统 Avahi 守护进程完成浏览、注册和解析，
// 多播报文的收发全部由守护进程承担。
type Backend struct {
	config *Config

	// handle 共享守护进程连接
	handle *refcount.Handle[*serverHandle]

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

// 确保 Backend 实现后端接口和可用性探测
var (
	_ interfaces.Backend      = (*Backend)(nil)
	_ interfaces.Availability = (*Backend)(nil)
)

// New 创建平台后端
//
// 创建本身不连接守护进程，首个 Browse/Register/Lookup 才建立连接。
func New(opts ...ConfigOption) (*Backend, error) {
	cfg := DefaultConfig()
	cfg.ApplyOptions(opts...)
	return NewWithConfig(cfg)
}

// NewWithConfig 使用指定配置创建平台后端
func NewWithConfig(cfg *Config) (*Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrapError("new", err, "配置无效")
	}
	return &Backend{
		config:  cfg,
		handle:  refcount.New(openServer, closeServer),
		cancels: make(map[int64]context.CancelFunc),
	}, nil
}

// Available 探测守护进程是否可达
//
// 自动选择模式下 facade 据此决定是否回退到内嵌后端。
func (b *Backend) Available() bool {
	if b.closed.Load() {
		return false
	}
	h, err := b.handle.Acquire()
	if err != nil {
		return false
	}
	_, verr := h.server.GetVersionString()
	if rerr := b.handle.Release(); rerr != nil {
		logger.Warn("释放守护进程连接失败", "error", rerr)
	}
	return verr == nil
}

// ============================================================================
//                              Browse - 持续浏览
// ============================================================================

// Browse 持续发现指定类型的服务
//
// 浏览经守护进程完成：每次调用建立一个 ServiceBrowser，
// Add 回调触发解析后发 Added 事件，Remove 回调发 Removed 事件。
// ctx 取消后按固定顺序清理：注销浏览器、释放共享连接、关闭 channel。
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

	h, err := b.handle.Acquire()
	if err != nil {
		return nil, err
	}

	sb, err := h.server.ServiceBrowserNew(
		avahi.InterfaceUnspec, avahi.ProtoUnspec,
		service, avahiDomain(domain), 0)
	if err != nil {
		if rerr := b.handle.Release(); rerr != nil {
			logger.Warn("释放守护进程连接失败", "error", rerr)
		}
		return nil, wrapError("browse", err, "创建浏览器失败")
	}

	logger.Debug("开始浏览", "service", service, "domain", domain)

	sctx, cancel := context.WithCancel(ctx)
	id := b.nextSession.Add(1)
	b.cancelMu.Lock()
	b.cancels[id] = cancel
	b.cancelMu.Unlock()

	events := make(chan types.Event, b.config.EventBuffer)
	b.activeBrowses.Add(1)
	b.wg.Add(1)
	go b.browseLoop(sctx, id, h, sb, events)
	return events, nil
}

// browseLoop 处理浏览回调并转发事件
func (b *Backend) browseLoop(ctx context.Context, id int64, h *serverHandle, sb *avahi.ServiceBrowser, events chan<- types.Event) {
	defer b.wg.Done()
	defer b.activeBrowses.Add(-1)
	defer b.dropSession(id)

	// 同一实例在每个网卡/协议组合上出现一次，按名称三元组计数，
	// 只在首次出现时解析并发 Added，完全消失时发 Removed。
	seen := make(map[string]int)

loop:
	for {
		select {
		case s := <-sb.AddChannel:
			key := browseKey(s)
			seen[key]++
			if seen[key] > 1 {
				continue
			}
			svc, err := b.resolve(ctx, h, s)
			if err != nil {
				// 解析失败不发事件，清掉计数让后续出现重试
				logger.Debug("解析服务失败", "name", s.Name, "error", err)
				seen[key]--
				if seen[key] <= 0 {
					delete(seen, key)
				}
				continue
			}
			b.discovered.Add(1)
			b.statsMu.Lock()
			b.lastDiscovery = time.Now()
			b.statsMu.Unlock()
			logger.Debug("发现服务",
				"instance", svc.Instance,
				"service", svc.Service,
				"host", svc.Host,
				"port", svc.Port)
			select {
			case events <- types.NewEvent(types.EventAdded, svc):
			case <-ctx.Done():
				break loop
			}

		case s := <-sb.RemoveChannel:
			key := browseKey(s)
			if seen[key] == 0 {
				continue
			}
			seen[key]--
			if seen[key] > 0 {
				continue
			}
			delete(seen, key)
			logger.Debug("服务离线", "name", s.Name, "service", s.Type)
			select {
			case events <- types.NewEvent(types.EventRemoved, toUnresolvedService(s)):
			case <-ctx.Done():
				break loop
			}

		case <-ctx.Done():
			break loop
		}
	}

	// 清理顺序固定：先注销浏览器，再释放共享连接，最后关闭事件流
	h.server.ServiceBrowserFree(sb)
	if err := b.handle.Release(); err != nil {
		logger.Warn("释放守护进程连接失败", "error", err)
	}
	close(events)
}

// resolve 解析浏览条目，受超时和 ctx 约束
//
// D-Bus 调用本身不接受 ctx，放到独立 goroutine 里等待结果。
func (b *Backend) resolve(ctx context.Context, h *serverHandle, s avahi.Service) (types.Service, error) {
	type result struct {
		svc avahi.Service
		err error
	}
	ch := make(chan result, 1)
	go func() {
		resolved, err := h.server.ResolveService(
			s.Interface, s.Protocol, s.Name, s.Type, s.Domain,
			avahi.ProtoUnspec, 0)
		ch <- result{resolved, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return types.Service{}, r.err
		}
		return toService(r.svc), nil
	case <-time.After(b.config.ResolveTimeout):
		return types.Service{}, wrapError("resolve", nil, "解析超时")
	case <-ctx.Done():
		return types.Service{}, ctx.Err()
	}
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
// 通过 EntryGroup 提交给守护进程，由守护进程负责应答和冲突处理。
// 注册在 Cancel 前一直持有共享连接的引用。
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

	h, err := b.handle.Acquire()
	if err != nil {
		return nil, err
	}

	group, err := h.server.EntryGroupNew()
	if err != nil {
		b.releaseHandle()
		return nil, wrapError("register", err, "创建条目组失败")
	}

	// Host 为空时守护进程填入本机主机名
	err = group.AddService(
		avahi.InterfaceUnspec, avahi.ProtoUnspec, 0,
		instance, service, avahiDomain(domain),
		svc.Host, uint16(svc.Port),
		txtBytes(types.EncodeText(svc.Text)))
	if err != nil {
		h.server.EntryGroupFree(group)
		b.releaseHandle()
		return nil, wrapError("register", err, "添加服务条目失败")
	}

	if err := group.Commit(); err != nil {
		h.server.EntryGroupFree(group)
		b.releaseHandle()
		return nil, wrapError("register", err, "提交条目组失败")
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
	return &registration{backend: b, handle: h, group: group, service: out}, nil
}

// defaultInstanceName 生成随机实例名
func defaultInstanceName() string {
	return "bonjour-" + uuid.NewString()[:8]
}

// releaseHandle 释放共享连接并记录错误
func (b *Backend) releaseHandle() {
	if err := b.handle.Release(); err != nil {
		logger.Warn("释放守护进程连接失败", "error", err)
	}
}

// registration 平台后端的注册句柄
type registration struct {
	backend *Backend
	handle  *serverHandle
	group   *avahi.EntryGroup
	service types.Service
	once    sync.Once
}

// Service 返回注册时的服务信息
func (r *registration) Service() types.Service {
	return r.service
}

// Cancel 撤销注册
//
// 清理顺序固定：先释放条目组（守护进程随即发 goodbye），
// 再释放共享连接的引用。
func (r *registration) Cancel() error {
	var err error
	r.once.Do(func() {
		r.handle.server.EntryGroupFree(r.group)
		err = r.backend.handle.Release()
		r.backend.activeRegs.Add(-1)
		logger.Info("撤销注册", "instance", r.service.Instance, "service", r.service.Service)
	})
	return err
}

// ============================================================================
//                              Lookup - 一次性解析
// ============================================================================

// Lookup 一次性解析指定服务实例
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

	h, err := b.handle.Acquire()
	if err != nil {
		return nil, err
	}
	defer b.releaseHandle()

	type result struct {
		svc avahi.Service
		err error
	}
	ch := make(chan result, 1)
	go func() {
		resolved, rerr := h.server.ResolveService(
			avahi.InterfaceUnspec, avahi.ProtoUnspec,
			instance, service, avahiDomain(domain),
			avahi.ProtoUnspec, 0)
		ch <- result{resolved, rerr}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, wrapError("lookup", ErrNotFound, r.err.Error())
		}
		svc := toService(r.svc)
		return &svc, nil
	case <-ctx.Done():
		return nil, ErrNotFound
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
//
// 未撤销的注册仍持有守护进程连接的引用，应先 Cancel 再 Close。
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.cancelMu.Lock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancelMu.Unlock()

	b.wg.Wait()
	logger.Info("平台后端已关闭")
	return nil
}
