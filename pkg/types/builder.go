package types

import (
	"errors"
	"net"
)

// ============================================================================
//                              ServiceBuilder
// ============================================================================

// 预定义错误
var (
	// ErrEmptyInstance 实例名为空
	ErrEmptyInstance = errors.New("types: service instance is empty")

	// ErrEmptyService 服务类型为空
	ErrEmptyService = errors.New("types: service type is empty")

	// ErrInvalidPort 端口非法
	ErrInvalidPort = errors.New("types: port out of range")
)

// ServiceBuilder Service 构建器
//
// 链式设置服务属性，Build 时做规范化和校验。
//
// 使用方式：
//
//	svc, err := types.NewServiceBuilder("My Printer", "_ipp._tcp").
//	    Port(631).
//	    SetText("note", "2nd floor").
//	    Build()
type ServiceBuilder struct {
	svc Service
}

// NewServiceBuilder 创建构建器
func NewServiceBuilder(instance, service string) *ServiceBuilder {
	return &ServiceBuilder{
		svc: Service{
			Instance: instance,
			Service:  service,
			Text:     make(map[string]string),
		},
	}
}

// Domain 设置域名
func (b *ServiceBuilder) Domain(domain string) *ServiceBuilder {
	b.svc.Domain = domain
	return b
}

// Host 设置目标主机名
func (b *ServiceBuilder) Host(host string) *ServiceBuilder {
	b.svc.Host = host
	return b
}

// Port 设置端口
func (b *ServiceBuilder) Port(port int) *ServiceBuilder {
	b.svc.Port = port
	return b
}

// AddAddress 追加地址（nil 被忽略）
func (b *ServiceBuilder) AddAddress(ip net.IP) *ServiceBuilder {
	b.svc.AddAddress(ip)
	return b
}

// SetText 设置一条 TXT 键值
func (b *ServiceBuilder) SetText(key, value string) *ServiceBuilder {
	b.svc.Text[key] = value
	return b
}

// Build 构建 Service
//
// 规范化服务类型和域名，校验实例名、服务类型和端口。
func (b *ServiceBuilder) Build() (Service, error) {
	svc := b.svc

	if svc.Instance == "" {
		return Service{}, ErrEmptyInstance
	}
	if svc.Service == "" {
		return Service{}, ErrEmptyService
	}
	if svc.Port <= 0 || svc.Port > 65535 {
		return Service{}, ErrInvalidPort
	}

	svc.Service = NormalizeService(svc.Service)
	svc.Domain = NormalizeDomain(svc.Domain)

	// 拷贝，避免构建后继续修改 builder 影响结果
	svc.Text = make(map[string]string, len(b.svc.Text))
	for k, v := range b.svc.Text {
		svc.Text[k] = v
	}
	svc.AddrIPv4 = append([]net.IP(nil), b.svc.AddrIPv4...)
	svc.AddrIPv6 = append([]net.IP(nil), b.svc.AddrIPv6...)

	return svc, nil
}
