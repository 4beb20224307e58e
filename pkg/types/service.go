package types

import (
	"net"
	"strings"
	"time"
)

// ============================================================================
//                              Service - 服务信息
// ============================================================================

// DefaultDomain mDNS 默认域名
const DefaultDomain = "local."

// Service DNS-SD 服务信息
// 用于发现服务返回的服务条目，也用于注册服务时的描述
type Service struct {
	// Instance 服务实例名（如 "My Printer"）
	Instance string

	// Service 服务类型（如 "_http._tcp"）
	Service string

	// Domain 域名（如 "local."），空值按 DefaultDomain 处理
	Domain string

	// Host 目标主机名（FQDN）
	Host string

	// Port 服务端口
	Port int

	// AddrIPv4 IPv4 地址列表
	AddrIPv4 []net.IP

	// AddrIPv6 IPv6 地址列表
	AddrIPv6 []net.IP

	// Text TXT 记录（key=value 解析后的键值对）
	Text map[string]string

	// TTL 记录生存时间
	TTL time.Duration

	// DiscoveredAt 发现时间（注册时为零值）
	DiscoveredAt time.Time
}

// Fullname 返回完整服务名（instance.service.domain）
func (s Service) Fullname() string {
	return s.Instance + "." + NormalizeService(s.Service) + "." + NormalizeDomain(s.Domain)
}

// Addrs 返回全部地址（IPv4 在前）
func (s Service) Addrs() []net.IP {
	addrs := make([]net.IP, 0, len(s.AddrIPv4)+len(s.AddrIPv6))
	addrs = append(addrs, s.AddrIPv4...)
	addrs = append(addrs, s.AddrIPv6...)
	return addrs
}

// HasAddrs 检查是否有地址
func (s Service) HasAddrs() bool {
	return len(s.AddrIPv4) > 0 || len(s.AddrIPv6) > 0
}

// AddAddress 按协议族归类追加地址，nil 地址被忽略
func (s *Service) AddAddress(ip net.IP) {
	if ip == nil {
		return
	}
	if ip.To4() != nil {
		s.AddrIPv4 = append(s.AddrIPv4, ip)
		return
	}
	s.AddrIPv6 = append(s.AddrIPv6, ip)
}

// ============================================================================
//                              名称规范化
// ============================================================================

// NormalizeDomain 规范化域名
//
// 空域名按 "local." 处理；非空域名补齐结尾的点。
// 与原生 API 对接时要求域名始终是 FQDN 形式。
func NormalizeDomain(domain string) string {
	if domain == "" {
		return DefaultDomain
	}
	if !strings.HasSuffix(domain, ".") {
		return domain + "."
	}
	return domain
}

// NormalizeService 规范化服务类型
//
// 去掉误带的域名后缀（"_http._tcp.local." → "_http._tcp"）和结尾的点。
func NormalizeService(service string) string {
	service = strings.TrimSuffix(service, ".")
	for _, suffix := range []string{".local", ".LOCAL"} {
		service = strings.TrimSuffix(service, suffix)
	}
	return service
}
