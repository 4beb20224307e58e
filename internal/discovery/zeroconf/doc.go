// Package zeroconf 实现进程内 mDNS 发现后端（内嵌后端）
//
// zeroconf 直接在本进程内收发多播 DNS 报文（RFC 6762/6763），
// 不依赖任何系统守护进程。Avahi 不可用时 facade 自动回退到本后端。
//
// # 核心功能
//
// 1. 持续浏览 (Browse)
//   - 每次调用创建独立的 zeroconf 解析器会话
//   - 条目按 instance.service.domain 去重
//   - TTL 为零的 goodbye 报文产生 Removed 事件
//   - 事件 channel 绑定调用方 context，取消后关闭
//
// 2. 服务注册 (Register)
//   - zeroconf.Register 使用本机信息应答查询
//   - 携带显式主机名/地址时走 zeroconf.RegisterProxy 代理路径
//   - 实例名为空时生成 "bonjour-<随机后缀>" 名称
//   - Cancel 发送 goodbye 报文并停止应答
//
// 3. 一次性解析 (Lookup)
//   - 返回第一个匹配条目，超时返回 ErrNotFound
//
// # 网卡过滤
//
// 注册时跳过 docker/veth/cni 等虚拟网卡，避免把容器网段的地址
// 通告给局域网邻居。没有筛出合适网卡时回退到全部网卡。
//
// # 使用示例
//
//	backend, err := zeroconf.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, err := backend.Browse(ctx, "_http._tcp", "local.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    fmt.Printf("%s: %s\n", ev.Type, ev.Service.Instance)
//	}
//
// # 并发安全
//
// Backend 是并发安全的：
//   - atomic.Bool 保护关闭状态
//   - sync.WaitGroup 同步会话 goroutine
//   - Close 取消所有会话并在超时上限内等待退出
//
// # 限制
//
//   - 仅限局域网（LAN）发现
//   - 依赖网络支持多播（某些网络可能禁用）
package zeroconf
