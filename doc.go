// Package bonjour 提供统一的 Bonjour/DNS-SD 服务发现 API
//
// go-bonjour 把三种互斥的发现后端封装在同一个门面之后，对外统一
// 暴露浏览（Browse）、注册（Register）和解析（Lookup）三类操作，
// 事件以绑定 context 的 channel 流交付。
//
// # 后端
//
//   - platform: 系统 Avahi 守护进程（经 D-Bus），守护进程可达时的首选
//   - embedded: 进程内 mDNS（无守护进程依赖，容器友好）
//   - widearea: 单播 DNS-SD（RFC 6763），跨多播边界，仅显式选择
//
// 默认 auto 模式探测 Avahi：可达用 platform，否则回退 embedded。
// 同一实例只装配一个后端。
//
// # 快速开始
//
// 浏览局域网内的 HTTP 服务：
//
//	b, err := bonjour.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, err := b.Browse(ctx, "_http._tcp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    switch ev.Type {
//	    case types.EventAdded:
//	        fmt.Printf("+ %s (%s:%d)\n", ev.Service.Instance, ev.Service.Host, ev.Service.Port)
//	    case types.EventRemoved:
//	        fmt.Printf("- %s\n", ev.Service.Instance)
//	    }
//	}
//
// 注册一个服务：
//
//	svc, err := types.NewServiceBuilder("My Web App", "_http._tcp").
//	    Port(8080).
//	    SetText("path", "/").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reg, err := b.Register(ctx, svc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Cancel()
//
// # 事件流语义
//
//   - Added 事件在服务解析成功后发出，携带主机、端口、地址和 TXT
//   - Removed 事件在服务离线时发出（广域后端在下一次轮询时发现）
//   - ctx 取消后 channel 被关闭，之后不再有任何事件
//   - 取消时的清理顺序固定：注销浏览器 → 释放共享资源 → 关闭 channel
//
// # 资源管理
//
// 平台后端到守护进程的连接是引用计数的共享资源：首个会话建立
// 连接，最后一个会话释放时断开。未撤销的注册在 Close 时统一撤销。
//
// # 选项
//
//	bonjour.New(
//	    bonjour.WithEmbeddedBackend(),          // 显式选择后端
//	    bonjour.WithDomain("local."),           // 默认域
//	    bonjour.WithEventBuffer(100),           // 事件缓冲
//	)
//
//	bonjour.New(
//	    bonjour.WithWideAreaDomains("dns-sd.example.org."),
//	    bonjour.WithWideAreaResolver("10.0.0.1:53"),
//	    bonjour.WithRefreshInterval(30*time.Second),
//	)
package bonjour
