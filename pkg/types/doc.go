// Package types 定义 go-bonjour 公共值类型
//
// 包含 DNS-SD 服务模型（Service / ServiceBuilder）、发现事件
// （Event / EventType）以及 TXT 记录编解码。
//
// # 设计原则
//
//   - 纯值类型，不依赖任何后端实现
//   - 名称规范化集中在本包（NormalizeDomain / NormalizeService）
//   - TXT 记录统一以 map[string]string 表达，编解码遵循 RFC 6763
package types
