package app

import (
	"errors"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/provider"
	"github.com/bazaar-next/internal/queue"
	"github.com/bazaar-next/internal/router"
	"github.com/bazaar-next/internal/worker"

	"github.com/hibiken/asynq"
)

// BuildRunner 构建服务运行器
// 停止时按注册的逆序执行，HTTP 最后注册以便最先停止接收请求
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg, nil)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化后台服务（自动取消扫描 + 队列消费）
	if mode == ModeAll || mode == ModeWorker {
		background, err := buildBackgroundServices(cfg, container)
		if err != nil {
			_ = container.Close()
			return nil, err
		}
		services = append(services, background...)
	}

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 如果没有服务被启动（例如模式错误或配置导致都没起），应该报错
	if len(services) == 0 {
		_ = container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.AddCleanup(container.Close)
	return runner, nil
}

// buildBackgroundServices 按触发方式装配扫描器
// ticker：进程内定时扫描；queue：asynq 调度器周期投递扫描任务，由消费者执行
func buildBackgroundServices(cfg *config.Config, container *provider.Container) ([]Service, error) {
	interval := cfg.Order.SweepInterval()
	trigger := cfg.Order.SweepTrigger
	if trigger == constants.SweepTriggerQueue && !cfg.Queue.Enabled {
		logger.Warnw("app_sweep_trigger_fallback", "trigger", trigger, "fallback", constants.SweepTriggerTicker)
		trigger = constants.SweepTriggerTicker
	}

	var services []Service
	var scheduler *asynq.Scheduler
	if trigger == constants.SweepTriggerQueue {
		s, err := queue.NewScheduler(&cfg.Queue, interval)
		if err != nil {
			return nil, err
		}
		scheduler = s
	} else {
		sweeper, err := worker.NewSweeperService(container.OrderService, interval)
		if err != nil {
			return nil, err
		}
		services = append(services, sweeper)
	}

	if cfg.Queue.Enabled {
		consumer := worker.NewConsumer(container.OrderService)
		workerService, err := worker.NewService(&cfg.Queue, consumer, scheduler)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	logger.Infow("app_sweep_configured",
		"trigger", trigger,
		"interval_seconds", int(interval.Seconds()),
		"stale_after_minutes", int(container.OrderService.StaleAfter().Minutes()),
	)
	return services, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
