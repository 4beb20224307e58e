// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，支持从 JSON 加载（CLI 配置文件）。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Backend = config.BackendEmbedded
//	cfg.Browse.Domain = "local."
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"
	"time"
)

// BackendKind 后端类型
type BackendKind string

const (
	// BackendAuto 自动选择：Avahi 守护进程可达时用平台后端，否则内嵌后端
	BackendAuto BackendKind = "auto"

	// BackendPlatform 平台后端（Avahi 守护进程，经 D-Bus）
	BackendPlatform BackendKind = "platform"

	// BackendEmbedded 内嵌后端（进程内 mDNS，grandcat/zeroconf）
	BackendEmbedded BackendKind = "embedded"

	// BackendWideArea 广域后端（单播 DNS-SD，仅显式选择时启用）
	BackendWideArea BackendKind = "widearea"
)

// Config go-bonjour 完整配置
type Config struct {
	// Backend 后端选择
	Backend BackendKind `json:"backend"`

	// Browse 浏览配置
	Browse BrowseConfig `json:"browse"`

	// WideArea 广域 DNS-SD 配置（Backend 为 widearea 时必填）
	WideArea WideAreaConfig `json:"wide_area"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// BrowseConfig 浏览配置
type BrowseConfig struct {
	// Domain 默认浏览域，空值按 "local." 处理
	Domain string `json:"domain"`

	// EventBuffer 事件 channel 缓冲大小
	EventBuffer int `json:"event_buffer"`
}

// WideAreaConfig 广域 DNS-SD 配置
type WideAreaConfig struct {
	// Domains 浏览域列表（如 "dns-sd.example.org."）
	Domains []string `json:"domains"`

	// Resolver DNS 服务器地址（host:port），空值使用系统配置
	Resolver string `json:"resolver"`

	// RefreshInterval 刷新间隔
	RefreshInterval Duration `json:"refresh_interval"`

	// Timeout 单次查询超时
	Timeout Duration `json:"timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别（debug/info/warn/error），空值按 info 处理
	Level string `json:"level"`

	// File 日志输出文件路径，空值输出到标准错误
	File string `json:"file"`
}

// NewConfig 返回默认配置
func NewConfig() *Config {
	return &Config{
		Backend: BackendAuto,
		Browse: BrowseConfig{
			Domain:      "local.",
			EventBuffer: 100,
		},
		WideArea: WideAreaConfig{
			RefreshInterval: Duration(60 * time.Second),
			Timeout:         Duration(5 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromJSON 从 JSON 数据解析配置
//
// 未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
