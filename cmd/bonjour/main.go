// Package main 提供 bonjour 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	bonjour "github.com/dep2p/go-bonjour"
	"github.com/dep2p/go-bonjour/config"
	"github.com/dep2p/go-bonjour/pkg/lib/log"
	"github.com/dep2p/go-bonjour/pkg/types"
)

var logger = log.Logger("bonjour/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 三种互斥模式：
//
//	bonjour -browse _http._tcp
//	bonjour -register -service _http._tcp -instance "My App" -port 8080 -txt path=/,v=1
//	bonjour -resolve "My App" -service _http._tcp
var (
	// ─────────────────────────────────────────────────────────────────────
	// 模式选择
	// ─────────────────────────────────────────────────────────────────────
	browseService = flag.String("browse", "", "浏览指定类型的服务（如 _http._tcp）")
	doRegister    = flag.Bool("register", false, "注册服务（配合 -service/-instance/-port/-txt）")
	resolveName   = flag.String("resolve", "", "解析指定实例（配合 -service）")

	// ─────────────────────────────────────────────────────────────────────
	// 注册/解析参数
	// ─────────────────────────────────────────────────────────────────────
	serviceType = flag.String("service", "", "服务类型（如 _http._tcp）")
	instance    = flag.String("instance", "", "服务实例名（注册时为空则自动生成）")
	port        = flag.Int("port", 0, "服务端口")
	txt         = flag.String("txt", "", "TXT 记录（k=v，逗号分隔）")

	// ─────────────────────────────────────────────────────────────────────
	// 通用参数
	// ─────────────────────────────────────────────────────────────────────
	backendKind = flag.String("backend", "", "后端 (auto/platform/embedded/widearea)")
	domain      = flag.String("domain", "", "浏览/注册域（默认 local.）")
	timeout     = flag.Duration("timeout", 0, "运行时长（0 = 直到 Ctrl+C；resolve 默认 5s）")
	configFile  = flag.String("config", "", "配置文件路径（JSON）")
	verbose     = flag.Bool("v", false, "输出调试日志")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
	showConfig  = flag.Bool("show-config", false, "打印生效配置（JSON）并退出")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(bonjour.VersionInfo())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("日志配置错误: %w", err)
	}

	if *showConfig {
		data, err := cfg.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	opts := buildOptions(cfg)

	switch {
	case *browseService != "":
		return runBrowse(opts)
	case *doRegister:
		return runRegister(opts)
	case *resolveName != "":
		return runResolve(opts)
	default:
		flag.Usage()
		return fmt.Errorf("需要指定 -browse、-register 或 -resolve 之一")
	}
}

// buildOptions 把命令行参数叠加到已装配的配置上
//
// 配置优先级（从高到低）：
//  1. 命令行参数（运行时覆盖）
//  2. 环境变量（BONJOUR_* 前缀）
//  3. 配置文件（持久化配置）
//  4. 默认值
func buildOptions(cfg *config.Config) []bonjour.Option {
	opts := []bonjour.Option{bonjour.WithConfig(cfg)}
	if *backendKind != "" {
		opts = append(opts, bonjour.WithBackend(config.BackendKind(*backendKind)))
	}
	if *domain != "" {
		opts = append(opts, bonjour.WithDomain(*domain))
	}
	return opts
}

// setupLogging 应用日志配置
//
// -v 强制 debug 级别，否则使用配置的级别。配置了日志文件时
// 输出重定向到该文件（追加写入），否则输出到标准错误。
func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if *verbose {
		level = log.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // G302/G304: 用户指定的日志文件路径是预期行为
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		out = f
	}
	log.SetOutputWithLevel(out, level)
	return nil
}

// runContext 返回受 -timeout 和退出信号约束的 context
func runContext(defaultTimeout time.Duration) (context.Context, context.CancelFunc) {
	d := *timeout
	if d == 0 {
		d = defaultTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if d > 0 {
		tctx, tcancel := context.WithTimeout(ctx, d)
		return tctx, func() { tcancel(); stop() }
	}
	return ctx, stop
}

// ═══════════════════════════════════════════════════════════════════════════
// 模式实现
// ═══════════════════════════════════════════════════════════════════════════

// runBrowse 持续浏览并打印事件
func runBrowse(opts []bonjour.Option) error {
	b, err := bonjour.New(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := runContext(0)
	defer cancel()

	events, err := b.Browse(ctx, *browseService)
	if err != nil {
		return err
	}

	fmt.Printf("浏览 %s（后端: %s），按 Ctrl+C 退出\n", *browseService, b.Kind())
	for ev := range events {
		printEvent(ev)
	}

	stats := b.Stats()
	fmt.Printf("共发现 %d 个服务\n", stats.ServicesDiscovered)
	return nil
}

// runRegister 注册服务并保持到退出
func runRegister(opts []bonjour.Option) error {
	if *serviceType == "" {
		return fmt.Errorf("-register 需要 -service")
	}
	if *port <= 0 {
		return fmt.Errorf("-register 需要 -port")
	}

	b, err := bonjour.New(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := runContext(0)
	defer cancel()

	svc := types.Service{
		Instance: *instance,
		Service:  *serviceType,
		Port:     *port,
	}
	if *txt != "" {
		svc.Text = parseTxt(*txt)
	}

	reg, err := b.Register(ctx, svc)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Cancel() }()

	registered := reg.Service()
	fmt.Printf("已注册 %s（后端: %s），按 Ctrl+C 撤销\n", registered.Fullname(), b.Kind())
	logger.Info("注册完成", "instance", registered.Instance, "port", registered.Port)

	<-ctx.Done()
	fmt.Println("\n正在撤销注册...")
	return reg.Cancel()
}

// runResolve 一次性解析指定实例
func runResolve(opts []bonjour.Option) error {
	if *serviceType == "" {
		return fmt.Errorf("-resolve 需要 -service")
	}

	b, err := bonjour.New(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := runContext(5 * time.Second)
	defer cancel()

	svc, err := b.Lookup(ctx, *resolveName, *serviceType)
	if err != nil {
		return err
	}
	printService("", *svc)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 输出
// ═══════════════════════════════════════════════════════════════════════════

// printEvent 打印一条事件
func printEvent(ev types.Event) {
	switch ev.Type {
	case types.EventAdded:
		printService("+ ", ev.Service)
	case types.EventRemoved:
		fmt.Printf("- %s\n", ev.Service.Fullname())
	}
}

// printService 打印服务详情
func printService(prefix string, svc types.Service) {
	fmt.Printf("%s%s\n", prefix, svc.Fullname())
	if svc.Host != "" {
		fmt.Printf("    host: %s:%d\n", svc.Host, svc.Port)
	}
	for _, ip := range svc.Addrs() {
		fmt.Printf("    addr: %s\n", ip)
	}
	if len(svc.Text) > 0 {
		keys := make([]string, 0, len(svc.Text))
		for k := range svc.Text {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    txt:  %s=%s\n", k, svc.Text[k])
		}
	}
}
