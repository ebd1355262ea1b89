// Package bootstrap 按配置初始化日志、指标、链路追踪与 ID 生成器.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/wyfcoding/quant/config"
	"github.com/wyfcoding/quant/idgen"
	"github.com/wyfcoding/quant/logging"
	"github.com/wyfcoding/quant/metrics"
	"github.com/wyfcoding/quant/tracing"
)

// Bootstrapper 处理通用基础设施的初始化
type Bootstrapper struct {
	ServiceName string
	Version     string
	Logger      *logging.Logger
	Config      *config.Config
	Metrics     *metrics.Metrics

	closers []func()
}

// New 创建一个新的引导器实例
func New(serviceName, version string) *Bootstrapper {
	return &Bootstrapper{
		ServiceName: serviceName,
		Version:     version,
		Logger:      logging.Default(),
	}
}

// Initialize 加载配置文件，并按配置重新初始化日志与 ID 生成器。
func (b *Bootstrapper) Initialize(configPath string) (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		b.Logger.Error("failed to load config", "path", configPath, "error", err)
		return nil, err
	}
	if conf.Log.Service == "" {
		conf.Log.Service = b.ServiceName
	}
	b.Config = conf
	b.Logger = logging.InitLogger(conf.Log)

	if err := idgen.Init(conf.IDGen); err != nil {
		return nil, fmt.Errorf("init id generator: %w", err)
	}

	config.PrintWithMask(conf)
	return conf, nil
}

// SetupMetrics 创建指标注册表。未启用暴露时仍返回注册表，只是不启动 HTTP 服务。
func (b *Bootstrapper) SetupMetrics(cfg config.MetricsConfig) *metrics.Metrics {
	b.Metrics = metrics.NewMetrics(b.ServiceName)
	b.Metrics.RegisterBuildInfo(b.ServiceName, b.Version)
	if cfg.Enabled {
		b.closers = append(b.closers, b.Metrics.ExposeHttp(cfg.Port))
		b.Logger.Info("metrics exposed", "port", cfg.Port)
	}
	return b.Metrics
}

// SetupTracing 初始化 OpenTelemetry 追踪器
func (b *Bootstrapper) SetupTracing(ctx context.Context, cfg config.TracingConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = b.ServiceName
	}
	shutdown, err := tracing.InitTracer(ctx, cfg)
	if err != nil {
		b.Logger.Error("failed to init tracer", "error", err)
		return
	}
	b.closers = append(b.closers, func() {
		if err := shutdown(context.Background()); err != nil {
			b.Logger.Error("failed to shutdown tracer", "error", err)
		}
	})
}

// Shutdown 按初始化的逆序释放资源。
func (b *Bootstrapper) Shutdown() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
