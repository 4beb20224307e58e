package dnssd

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/dep2p/go-bonjour/pkg/types"
)

// ============================================================================
//                              查询名构造
// ============================================================================

// serviceQueryName 构造浏览查询名（"_http._tcp.example.org."）
func serviceQueryName(service, domain string) string {
	return dns.Fqdn(types.NormalizeService(service) + "." + types.NormalizeDomain(domain))
}

// instanceQueryName 构造实例查询名（"inst._http._tcp.example.org."）
func instanceQueryName(instance, service, domain string) string {
	return dns.Fqdn(escapeInstance(instance) + "." + serviceQueryName(service, domain))
}

// instanceFromTarget 从 PTR 目标中提取实例名
//
// 目标必须以 ".service.domain." 结尾，否则不属于本次浏览。
func instanceFromTarget(target, service, domain string) (string, bool) {
	suffix := "." + serviceQueryName(service, domain)
	if !strings.HasSuffix(target, suffix) {
		return "", false
	}
	label := strings.TrimSuffix(target, suffix)
	if label == "" {
		return "", false
	}
	return unescapeLabel(label), true
}

// escapeInstance 把实例名转换为 DNS 展示格式标签
//
// 实例名里的点和反斜杠需要转义，空格等可打印字符原样保留。
func escapeInstance(instance string) string {
	var sb strings.Builder
	for i := 0; i < len(instance); i++ {
		switch instance[i] {
		case '.', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(instance[i])
	}
	return sb.String()
}

// unescapeLabel 还原 DNS 展示格式标签
//
// 处理 "\." "\\" 和 "\DDD" 三种转义。
func unescapeLabel(label string) string {
	var sb strings.Builder
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+3 < len(label) && isDigit(label[i+1]) && isDigit(label[i+2]) && isDigit(label[i+3]) {
			sb.WriteByte((label[i+1]-'0')*100 + (label[i+2]-'0')*10 + (label[i+3] - '0'))
			i += 3
			continue
		}
		if i+1 < len(label) {
			sb.WriteByte(label[i+1])
			i++
		}
	}
	return sb.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ============================================================================
//                              应答解析
// ============================================================================

// ptrTargets 提取应答中的 PTR 目标
func ptrTargets(msg *dns.Msg) []string {
	var out []string
	for _, rr := range msg.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			out = append(out, ptr.Ptr)
		}
	}
	return out
}

// srvTarget 提取应答中的第一条 SRV 记录
func srvTarget(msg *dns.Msg) (host string, port int, ttl time.Duration, ok bool) {
	for _, rr := range msg.Answer {
		if srv, found := rr.(*dns.SRV); found {
			return srv.Target, int(srv.Port), time.Duration(srv.Hdr.Ttl) * time.Second, true
		}
	}
	return "", 0, 0, false
}

// txtValues 提取应答中的全部 TXT 字符串
func txtValues(msg *dns.Msg) []string {
	var out []string
	for _, rr := range msg.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			out = append(out, txt.Txt...)
		}
	}
	return out
}

// addrRecords 提取应答中的 A/AAAA 地址
func addrRecords(msg *dns.Msg) []net.IP {
	var out []net.IP
	for _, rr := range msg.Answer {
		switch r := rr.(type) {
		case *dns.A:
			out = append(out, r.A)
		case *dns.AAAA:
			out = append(out, r.AAAA)
		}
	}
	return out
}
