package dnssd

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/miekg/dns"

	"github.com/dep2p/go-bonjour/pkg/interfaces"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
	"github.com/dep2p/go-bonjour/pkg/types"
)

var logger = log.Logger("discovery-dnssd")

// ============================================================================
//                              Backend - 广域后端
// ============================================================================

// Backend 广域单播 DNS-SD 后端
//
// 通过普通单播 DNS 查询实现 RFC 6763 浏览和解析：对配置域做
// PTR 轮询，对每个实例补 SRV/TXT/A/AAAA 查询。单播 DNS 没有
// 主动通知机制，离线只能在下一次轮询时通过差分发现。
type Backend struct {
	config *Config
	client *dns.Client
	clk    clock.Clock

	// resolverOnce 懒解析 DNS 服务器地址
	resolverOnce sync.Once
	resolverAddr string
	resolverErr  error

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
	statsMu       sync.Mutex
	lastDiscovery time.Time
}

// 确保 Backend 实现后端接口
var _ interfaces.Backend = (*Backend)(nil)

// New 创建广域后端
func New(opts ...ConfigOption) (*Backend, error) {
	cfg := DefaultConfig()
	cfg.ApplyOptions(opts...)
	return NewWithConfig(cfg)
}

// NewWithConfig 使用指定配置创建广域后端
func NewWithConfig(cfg *Config) (*Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrapError("new", err, "配置无效")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Backend{
		config:  cfg,
		client:  new(dns.Client),
		clk:     clk,
		cancels: make(map[int64]context.CancelFunc),
	}, nil
}

// resolver 返回 DNS 服务器地址，首次调用时解析
func (b *Backend) resolver() (string, error) {
	b.resolverOnce.Do(func() {
		if b.config.Resolver != "" {
			addr := b.config.Resolver
			if _, _, err := net.SplitHostPort(addr); err != nil {
				addr = net.JoinHostPort(addr, "53")
			}
			b.resolverAddr = addr
			return
		}
		cc, err := dns.ClientConfigFromFile(resolvConfPath)
		if err != nil || len(cc.Servers) == 0 {
			b.resolverErr = ErrNoResolver
			return
		}
		b.resolverAddr = net.JoinHostPort(cc.Servers[0], cc.Port)
	})
	return b.resolverAddr, b.resolverErr
}

// exchange 执行一次 DNS 查询
//
// NXDOMAIN 按空应答处理，浏览空域不是错误。
func (b *Backend) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	addr, err := b.resolver()
	if err != nil {
		return nil, err
	}

	m := new(dns.Msg)
	m.SetQuestion(name, qtype)
	m.RecursionDesired = true

	qctx, cancel := context.WithTimeout(ctx, b.config.QueryTimeout)
	defer cancel()

	resp, _, err := b.client.ExchangeContext(qctx, m, addr)
	if err != nil {
		return nil, wrapError("query", err, "查询 "+name+" 失败")
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, wrapError("query", nil, "查询 "+name+" 返回 "+dns.RcodeToString[resp.Rcode])
	}
	return resp, nil
}

// ============================================================================
//                              Browse - 轮询浏览
// ============================================================================

// browseDomains 解析本次会话要查询的域列表
//
// 显式传入的域优先，否则使用配置的域列表。
func (b *Backend) browseDomains(domain string) []string {
	if domain != "" {
		return []string{types.NormalizeDomain(domain)}
	}
	out := make([]string, 0, len(b.config.Domains))
	for _, d := range b.config.Domains {
		if d == "" {
			continue
		}
		out = append(out, types.NormalizeDomain(d))
	}
	return out
}

// Browse 持续发现指定类型的服务
//
// 按配置间隔轮询 PTR 记录，与上一轮结果差分：新增实例发 Added，
// 消失的实例发 Removed。domain 为空时查询配置的全部浏览域。
// ctx 取消后事件 channel 被关闭。
func (b *Backend) Browse(ctx context.Context, service, domain string) (<-chan types.Event, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	service = types.NormalizeService(service)
	if service == "" {
		return nil, ErrInvalidService
	}
	domains := b.browseDomains(domain)
	if len(domains) == 0 {
		return nil, ErrNoDomain
	}

	sctx, cancel := context.WithCancel(ctx)
	id := b.nextSession.Add(1)
	b.cancelMu.Lock()
	b.cancels[id] = cancel
	b.cancelMu.Unlock()

	logger.Debug("开始浏览", "service", service, "domains", domains)

	events := make(chan types.Event, b.config.EventBuffer)
	b.activeBrowses.Add(1)
	b.wg.Add(1)
	go b.browseLoop(sctx, id, service, domains, events)
	return events, nil
}

// browseLoop 轮询并转发差分事件
//
// 所有域共用一个会话缓存，缓存键是含域的实例全名。
func (b *Backend) browseLoop(ctx context.Context, id int64, service string, domains []string, events chan<- types.Event) {
	defer b.wg.Done()
	defer close(events)
	defer b.activeBrowses.Add(-1)
	defer b.dropSession(id)

	known := make(map[string]types.Service)
	if !b.poll(ctx, service, domains, known, events) {
		return
	}

	ticker := b.clk.Ticker(b.config.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !b.poll(ctx, service, domains, known, events) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// poll 执行一轮查询并发送差分事件，返回 false 表示会话应结束
//
// 每轮依次查询所有域。单个域查询失败时保留该域上一轮的状态，
// 等下一轮重试，避免瞬时故障误报 Removed。
func (b *Backend) poll(ctx context.Context, service string, domains []string, known map[string]types.Service, events chan<- types.Event) bool {
	var current []types.Service
	for _, domain := range domains {
		svcs, err := b.browseOnce(ctx, service, domain)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			logger.Debug("轮询失败", "service", service, "domain", domain, "error", err)
			for _, svc := range known {
				if svc.Domain == domain {
					current = append(current, svc)
				}
			}
			continue
		}
		current = append(current, svcs...)
	}

	added, removed, next := diffServices(known, current)
	for _, svc := range added {
		b.discovered.Add(1)
		b.statsMu.Lock()
		b.lastDiscovery = time.Now()
		b.statsMu.Unlock()
		logger.Debug("发现服务", "instance", svc.Instance, "service", svc.Service, "host", svc.Host)
		select {
		case events <- types.NewEvent(types.EventAdded, svc):
		case <-ctx.Done():
			return false
		}
	}
	for _, svc := range removed {
		logger.Debug("服务离线", "instance", svc.Instance, "service", svc.Service)
		select {
		case events <- types.NewEvent(types.EventRemoved, svc):
		case <-ctx.Done():
			return false
		}
	}

	for k := range known {
		delete(known, k)
	}
	for k, v := range next {
		known[k] = v
	}
	return true
}

// diffServices 计算两轮查询结果的差分
func diffServices(known map[string]types.Service, current []types.Service) (added, removed []types.Service, next map[string]types.Service) {
	next = make(map[string]types.Service, len(current))
	for _, svc := range current {
		key := svc.Fullname()
		if _, dup := next[key]; dup {
			continue
		}
		next[key] = svc
		if _, ok := known[key]; !ok {
			added = append(added, svc)
		}
	}
	for key, svc := range known {
		if _, ok := next[key]; !ok {
			removed = append(removed, svc)
		}
	}
	return added, removed, next
}

// browseOnce 执行一轮完整的浏览查询
func (b *Backend) browseOnce(ctx context.Context, service, domain string) ([]types.Service, error) {
	resp, err := b.exchange(ctx, serviceQueryName(service, domain), dns.TypePTR)
	if err != nil {
		return nil, err
	}

	var out []types.Service
	for _, target := range ptrTargets(resp) {
		instance, ok := instanceFromTarget(target, service, domain)
		if !ok {
			continue
		}
		svc, err := b.resolveTarget(ctx, target, instance, service, domain)
		if err != nil {
			logger.Debug("解析实例失败", "target", target, "error", err)
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

// resolveTarget 解析单个实例：SRV 必须有，TXT 和地址尽力而为
func (b *Backend) resolveTarget(ctx context.Context, target, instance, service, domain string) (types.Service, error) {
	srvResp, err := b.exchange(ctx, target, dns.TypeSRV)
	if err != nil {
		return types.Service{}, err
	}
	host, port, ttl, ok := srvTarget(srvResp)
	if !ok {
		return types.Service{}, wrapError("resolve", ErrNotFound, "无 SRV 记录")
	}

	svc := types.Service{
		Instance:     instance,
		Service:      types.NormalizeService(service),
		Domain:       types.NormalizeDomain(domain),
		Host:         host,
		Port:         port,
		TTL:          ttl,
		DiscoveredAt: time.Now(),
	}

	if txtResp, err := b.exchange(ctx, target, dns.TypeTXT); err == nil {
		svc.Text = types.DecodeText(txtValues(txtResp))
	}

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := b.exchange(ctx, dns.Fqdn(host), qtype)
		if err != nil {
			continue
		}
		for _, ip := range addrRecords(resp) {
			svc.AddAddress(ip)
		}
	}
	return svc, nil
}

// dropSession 移除会话取消函数
func (b *Backend) dropSession(id int64) {
	b.cancelMu.Lock()
	delete(b.cancels, id)
	b.cancelMu.Unlock()
}

// ============================================================================
//                              Register / Lookup
// ============================================================================

// Register 广域后端不支持注册
//
// 单播 DNS-SD 的注册走 DNS Update（RFC 2136），需要区域管理权限，
// 不在本后端职责内。
func (b *Backend) Register(ctx context.Context, svc types.Service) (interfaces.Registration, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return nil, ErrUnsupported
}

// Lookup 一次性解析指定服务实例
//
// domain 为空时依次尝试配置的浏览域，返回首个命中的结果。
func (b *Backend) Lookup(ctx context.Context, instance, service, domain string) (*types.Service, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	service = types.NormalizeService(service)
	if service == "" {
		return nil, ErrInvalidService
	}
	if instance == "" {
		return nil, wrapError("lookup", ErrNotFound, "实例名为空")
	}
	domains := b.browseDomains(domain)
	if len(domains) == 0 {
		return nil, ErrNoDomain
	}

	var lastErr error = ErrNotFound
	for _, d := range domains {
		target := instanceQueryName(instance, service, d)
		svc, err := b.resolveTarget(ctx, target, instance, service, d)
		if err == nil {
			return &svc, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
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
		Running:            !b.closed.Load(),
		ServicesDiscovered: b.discovered.Load(),
		LastDiscovery:      last,
		ActiveBrowses:      int(b.activeBrowses.Load()),
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

	b.wg.Wait()
	logger.Info("广域后端已关闭")
	return nil
}
