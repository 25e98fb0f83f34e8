package worker

import (
	"context"
	"errors"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务（消费者 + 可选的周期调度器）
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewService 创建异步队列服务；scheduler 为空时只消费任务
func NewService(cfg *config.QueueConfig, consumer *Consumer, scheduler *asynq.Scheduler) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:      "worker",
		server:    server,
		mux:       mux,
		scheduler: scheduler,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动消费者与调度器，阻塞直到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			s.server.Shutdown()
			return err
		}
		logger.Infow("worker_scheduler_started")
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务，先停调度器再等待进行中的任务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}
