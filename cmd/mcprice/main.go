// mcprice 按配置文件批量执行蒙特卡洛定价，每个任务输出一行结果.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wyfcoding/quant/batch"
	"github.com/wyfcoding/quant/bootstrap"
	"github.com/wyfcoding/quant/config"
	"github.com/wyfcoding/quant/logging"
	"github.com/wyfcoding/quant/montecarlo"
)

const serviceName = "mcprice"

// version 由 -ldflags "-X main.version=..." 注入
var version = "dev"

var errJobsFailed = errors.New("one or more pricing jobs failed")

func main() {
	configPath := flag.String("config", "configs/mcprice.toml", "path to config file")
	watch := flag.Bool("watch", false, "re-run all jobs whenever the config file changes")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *watch, os.Stdout); err != nil {
		slog.Error("mcprice exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, watch bool, out io.Writer) error {
	b := bootstrap.New(serviceName, version)
	conf, err := b.Initialize(configPath)
	if err != nil {
		return err
	}
	defer b.Shutdown()

	b.SetupTracing(ctx, conf.Tracing)
	m := b.SetupMetrics(conf.Metrics)
	engineMetrics := montecarlo.NewMetrics(m)

	newEngine := func(c config.EngineConfig) *montecarlo.Engine {
		return batch.NewEngine(c,
			montecarlo.WithLogger(b.Logger.With("component", "montecarlo")),
			montecarlo.WithMetrics(engineMetrics))
	}

	runner := batch.NewRunner(newEngine(conf.Engine),
		batch.WithConcurrency(conf.Engine.JobConcurrency),
		batch.WithLogger(b.Logger),
		batch.WithMetrics(m))
	defer runner.Close()

	err = report(out, runner.Run(ctx, conf.Jobs))
	if !watch {
		return err
	}

	reloads := make(chan *config.Config, 1)
	config.RegisterReloadHook(func(c *config.Config) {
		select {
		case reloads <- c:
		default:
			// 上一次变更尚未处理，丢弃旧值保留最新配置
			select {
			case <-reloads:
			default:
			}
			reloads <- c
		}
	})
	config.Watch()
	logging.Info(ctx, "watching config for changes", "path", configPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-reloads:
			// job_concurrency 仅在重启后生效
			runner.UseEngine(newEngine(c.Engine))
			if err := report(out, runner.Run(ctx, c.Jobs)); err != nil {
				logging.Warn(ctx, "reloaded jobs finished with failures", "error", err)
			}
		}
	}
}

func report(out io.Writer, results []batch.JobResult) error {
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		fmt.Fprintln(out, res.String())
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errJobsFailed, failed, len(results))
	}
	return nil
}
