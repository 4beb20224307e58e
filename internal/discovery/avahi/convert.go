package avahi

import (
	"net"
	"strings"
	"time"

	"github.com/holoplot/go-avahi"

	"github.com/dep2p/go-bonjour/pkg/types"
)

// avahiDomain 把 FQDN 形式的域名转换为 Avahi 接口期望的形式
//
// Avahi 的 D-Bus 接口使用不带结尾点的域名（"local"）。
func avahiDomain(domain string) string {
	return strings.TrimSuffix(types.NormalizeDomain(domain), ".")
}

// toService 把 Avahi 解析结果转换为服务信息
func toService(s avahi.Service) types.Service {
	svc := types.Service{
		Instance:     s.Name,
		Service:      types.NormalizeService(s.Type),
		Domain:       types.NormalizeDomain(s.Domain),
		Host:         s.Host,
		Port:         int(s.Port),
		Text:         types.DecodeText(txtStrings(s.Txt)),
		DiscoveredAt: time.Now(),
	}
	if s.Address != "" {
		svc.AddAddress(net.ParseIP(s.Address))
	}
	return svc
}

// toUnresolvedService 把未解析的浏览条目转换为服务信息
//
// Remove 回调只携带名称三元组，没有主机/端口/TXT。
func toUnresolvedService(s avahi.Service) types.Service {
	return types.Service{
		Instance: s.Name,
		Service:  types.NormalizeService(s.Type),
		Domain:   types.NormalizeDomain(s.Domain),
	}
}

// txtStrings 把 Avahi 的 TXT 字节串列表转换为字符串列表
func txtStrings(txt [][]byte) []string {
	out := make([]string, 0, len(txt))
	for _, b := range txt {
		out = append(out, string(b))
	}
	return out
}

// txtBytes 把 TXT 字符串列表转换为 Avahi 的字节串列表
func txtBytes(txt []string) [][]byte {
	out := make([][]byte, 0, len(txt))
	for _, s := range txt {
		out = append(out, []byte(s))
	}
	return out
}

// browseKey 浏览去重键
//
// 同一实例会在每个网卡/协议组合上出现一次，
// 按名称三元组聚合，只在首次出现/完全消失时发事件。
func browseKey(s avahi.Service) string {
	return s.Name + "." + types.NormalizeService(s.Type) + "." + types.NormalizeDomain(s.Domain)
}
