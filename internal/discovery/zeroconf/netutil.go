package zeroconf

import (
	"net"
	"strings"
)

// virtualPrefixes 常见虚拟/桥接网卡名称前缀
//
// 在这些网卡上通告 mDNS 会把容器网段的地址暴露给局域网邻居，
// 通常不是调用方想要的结果。
var virtualPrefixes = []string{
	"docker", "br-", "veth", "virbr", "vnet",
	"tap", "tun", "kube", "cni", "flannel",
}

// isVirtualInterface 判断是否为虚拟/桥接网卡
func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// advertiseInterfaces 返回适合通告服务的物理网卡列表
//
// 过滤掉未启用、回环、不支持多播以及虚拟网卡。
// 返回 nil 表示没有筛出合适的网卡，由调用方回退到全部网卡。
func advertiseInterfaces() []net.Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if isVirtualInterface(iface.Name) {
			continue
		}
		out = append(out, iface)
	}
	return out
}
