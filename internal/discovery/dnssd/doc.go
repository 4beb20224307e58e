// Package dnssd 实现广域单播 DNS-SD 发现后端
//
// dnssd 通过普通单播 DNS 查询实现 RFC 6763 服务发现，适合跨越
// 多播边界的场景：对配置域轮询 PTR 记录枚举实例，对每个实例补
// SRV/TXT/A/AAAA 查询得到完整服务信息。
//
// 与 mDNS 后端不同，单播 DNS 没有主动通知机制：
//   - 新实例在下一次轮询时产生 Added 事件
//   - 离线实例在下一次轮询时通过差分产生 Removed 事件
//   - 事件延迟上限为轮询间隔（默认 60s）
//
// # 核心功能
//
// 1. 轮询浏览 (Browse)
//   - 固定间隔 PTR 轮询，与上一轮结果差分
//   - 单轮查询失败保留上一轮状态，下一轮重试
//   - 浏览域必须显式配置，单播 DNS-SD 没有 "local." 这样的固定域
//   - 可配置多个浏览域，同一轮询周期内依次查询，事件流合并交付
//
// 2. 一次性解析 (Lookup)
//   - 直接对实例全名做 SRV/TXT/地址查询
//
// 3. 注册 (Register)
//   - 不支持。单播 DNS-SD 注册走 DNS Update（RFC 2136），
//     需要区域管理权限，返回 ErrUnsupported
//
// # 时钟注入
//
// 轮询使用 benbjohnson/clock 的 Ticker，测试通过 WithClock
// 注入 mock 时钟控制轮询节奏。
//
// # 使用示例
//
//	backend, err := dnssd.New(
//	    dnssd.WithDomains("dns-sd.example.org.", "dns-sd.other.org."),
//	    dnssd.WithRefreshInterval(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	events, err := backend.Browse(ctx, "_http._tcp", "")
package dnssd
