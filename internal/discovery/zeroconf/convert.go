package zeroconf

import (
	"time"

	zc "github.com/grandcat/zeroconf"

	"github.com/dep2p/go-bonjour/pkg/types"
)

// entryToService 把 zeroconf 条目转换为服务信息
func entryToService(entry *zc.ServiceEntry) types.Service {
	svc := types.Service{
		Instance:     entry.Instance,
		Service:      types.NormalizeService(entry.Service),
		Domain:       types.NormalizeDomain(entry.Domain),
		Host:         entry.HostName,
		Port:         entry.Port,
		Text:         types.DecodeText(entry.Text),
		TTL:          time.Duration(entry.TTL) * time.Second,
		DiscoveredAt: time.Now(),
	}
	for _, ip := range entry.AddrIPv4 {
		svc.AddAddress(ip)
	}
	for _, ip := range entry.AddrIPv6 {
		svc.AddAddress(ip)
	}
	return svc
}

// addrStrings 把地址列表转换为字符串形式，代理注册接口需要
func addrStrings(svc types.Service) []string {
	addrs := svc.Addrs()
	out := make([]string, 0, len(addrs))
	for _, ip := range addrs {
		out = append(out, ip.String())
	}
	return out
}
