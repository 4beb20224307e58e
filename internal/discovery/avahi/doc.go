// Package avahi 实现 Avahi 守护进程发现后端（平台后端）
//
// avahi 通过 D-Bus 驱动系统级 Avahi 守护进程完成 DNS-SD 浏览、
// 注册和解析，多播报文的收发全部由守护进程承担。守护进程可达时
// 这是首选后端：缓存共享、冲突处理和网卡热插拔都由系统统一处理。
//
// # 共享连接
//
// 到守护进程的 D-Bus 连接是进程内共享的昂贵资源，由引用计数句柄
// （internal/util/refcount）管理：首个浏览/注册/解析会话建立连接，
// 最后一个会话释放时断开。连接使用 dbus.SystemBusPrivate 建立的
// 私有连接，关闭不影响进程内其他 D-Bus 使用方。
//
// # 核心功能
//
// 1. 持续浏览 (Browse)
//   - ServiceBrowser 的 Add 回调触发 ResolveService，成功后发 Added
//   - Remove 回调发 Removed（只携带名称三元组）
//   - 同一实例在多个网卡/协议组合上出现时按名称三元组聚合
//   - ctx 取消后按固定顺序清理：注销浏览器 → 释放连接 → 关闭 channel
//
// 2. 服务注册 (Register)
//   - EntryGroup.AddService + Commit 提交给守护进程
//   - Cancel 释放条目组（守护进程发 goodbye）并归还连接引用
//
// 3. 一次性解析 (Lookup)
//   - ResolveService 直接解析指定实例
//
// 4. 可用性探测 (Available)
//   - 自动选择模式下 facade 据此决定是否回退到内嵌后端
//
// # 使用示例
//
//	backend, err := avahi.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	if !backend.Available() {
//	    // 守护进程不可达，改用内嵌后端
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	events, err := backend.Browse(ctx, "_http._tcp", "local.")
//
// # 限制
//
//   - 仅 Linux（依赖 Avahi 守护进程和系统 D-Bus）
//   - 未撤销的注册持有连接引用，应先 Cancel 再 Close
package avahi
