package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-bonjour/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// EnvPrefix 环境变量前缀
const EnvPrefix = "BONJOUR_"

// loadConfig 装配配置：文件、环境变量依次叠加，最后修复并验证
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		cfg, err = loadConfigFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	return config.ValidateAndFix(cfg)
}

// loadConfigFile 从 JSON 文件加载配置
func loadConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return config.FromJSON(data)
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 支持的环境变量（均使用 BONJOUR_ 前缀）：
//   - BONJOUR_BACKEND: 后端类型 (auto/platform/embedded/widearea)
//   - BONJOUR_DOMAIN: 默认浏览/注册域
//   - BONJOUR_EVENT_BUFFER: 事件缓冲大小
//   - BONJOUR_WIDEAREA_DOMAINS: 广域浏览域（逗号分隔）
//   - BONJOUR_WIDEAREA_RESOLVER: 广域 DNS 服务器
//   - BONJOUR_LOG_LEVEL: 日志级别 (debug/info/warn/error)
//   - BONJOUR_LOG_FILE: 日志输出文件
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(EnvPrefix + "BACKEND"); v != "" {
		cfg.Backend = config.BackendKind(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv(EnvPrefix + "DOMAIN"); v != "" {
		cfg.Browse.Domain = v
	}
	if v := os.Getenv(EnvPrefix + "EVENT_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Browse.EventBuffer = n
		}
	}
	if v := os.Getenv(EnvPrefix + "WIDEAREA_DOMAINS"); v != "" {
		cfg.WideArea.Domains = splitAndTrim(v, ",")
	}
	if v := os.Getenv(EnvPrefix + "WIDEAREA_RESOLVER"); v != "" {
		cfg.WideArea.Resolver = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseTxt 解析 "k=v,k2=v2" 形式的 TXT 参数
func parseTxt(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitAndTrim(s, ",") {
		key, value, _ := strings.Cut(pair, "=")
		if key != "" {
			out[key] = value
		}
	}
	return out
}

// splitAndTrim 分割字符串并去除空白
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
