// Package interfaces 定义 go-bonjour 公共接口
//
// 本文件定义发现后端接口，对应 internal/discovery/ 下的各实现。
package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-bonjour/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// Backend 接口
// ════════════════════════════════════════════════════════════════════════════

// Backend 定义 DNS-SD 发现后端接口
//
// 每个后端把各自的回调/轮询式发现 API 桥接为可取消的事件流：
// Browse 返回的 channel 绑定传入的 context，context 取消后后端
// 完成资源清理并关闭 channel，之后不再发送任何事件。
//
// 架构位置：Discovery Layer
// 实现位置：internal/discovery/avahi/（平台后端，Avahi 守护进程）
//
//	internal/discovery/zeroconf/（内嵌后端，进程内 mDNS）
//	internal/discovery/dnssd/（广域后端，单播 DNS-SD）
//
// 同一 facade 实例只会装配一个后端，三者互斥。
type Backend interface {
	// Browse 持续发现指定类型的服务
	//
	// service 形如 "_http._tcp"；domain 为空按 "local." 处理。
	// 返回的 channel 在 ctx 取消后被关闭。
	Browse(ctx context.Context, service, domain string) (<-chan types.Event, error)

	// Register 注册（广播）一个服务
	//
	// 返回的 Registration 用于撤销注册；ctx 仅约束注册过程本身。
	Register(ctx context.Context, svc types.Service) (Registration, error)

	// Lookup 一次性解析指定服务实例
	Lookup(ctx context.Context, instance, service, domain string) (*types.Service, error)

	// Stats 返回后端统计信息
	Stats() BackendStats

	// Close 关闭后端并释放全部资源（幂等）
	Close() error
}

// Registration 服务注册句柄
type Registration interface {
	// Service 返回注册时的服务信息
	Service() types.Service

	// Cancel 撤销注册（幂等）
	Cancel() error
}

// Availability 后端可用性探测
//
// 平台后端实现此接口，用于自动选择：守护进程不可达时回退到内嵌后端。
type Availability interface {
	// Available 返回后端依赖的系统服务是否可达
	Available() bool
}

// ════════════════════════════════════════════════════════════════════════════
// 统计信息
// ════════════════════════════════════════════════════════════════════════════

// BackendStats 后端统计信息
type BackendStats struct {
	// Running 后端是否仍可用（未关闭）
	Running bool

	// ServicesDiscovered 发现的服务事件总数
	ServicesDiscovered int64

	// LastDiscovery 最后一次发现时间
	LastDiscovery time.Time

	// ActiveBrowses 活跃的浏览会话数
	ActiveBrowses int

	// ActiveRegistrations 活跃的注册数
	ActiveRegistrations int
}
