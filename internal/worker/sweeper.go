package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/service"

	"go.uber.org/zap"
)

const defaultSweepInterval = time.Minute

// Sweeper 自动取消扫描入口
type Sweeper interface {
	RunAutoCancelSweep(ctx context.Context) service.SweepResult
}

// SweeperService 进程内定时触发自动取消扫描
// 同一时刻最多一个扫描在执行，上一次未结束时本次跳过
type SweeperService struct {
	name     string
	sweeper  Sweeper
	interval time.Duration
	log      *zap.SugaredLogger

	tickMu   sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu         sync.Mutex
	started    bool
	tickCancel context.CancelFunc
}

// NewSweeperService 创建定时扫描服务
func NewSweeperService(sweeper Sweeper, interval time.Duration) (*SweeperService, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper is nil")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweeperService{
		name:     "sweeper",
		sweeper:  sweeper,
		interval: interval,
		log:      logger.Component("sweeper"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Name 服务名称
func (s *SweeperService) Name() string {
	if s == nil || s.name == "" {
		return "sweeper"
	}
	return s.name
}

// Start 立即执行一次扫描，之后按间隔执行，阻塞直到 ctx 结束或 Stop
func (s *SweeperService) Start(ctx context.Context) error {
	if s == nil || s.sweeper == nil {
		return errors.New("sweeper not initialized")
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sweeper already started")
	}
	s.started = true
	// 扫描使用独立的上下文：服务关闭时允许进行中的扫描完成，Stop 超时后才中断
	tickCtx, tickCancel := context.WithCancel(context.WithoutCancel(ctx))
	s.tickCancel = tickCancel
	s.mu.Unlock()

	defer close(s.doneCh)
	defer tickCancel()

	s.log.Infow("worker_sweeper_started", "interval", s.interval.String())
	s.tick(tickCtx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.tick(tickCtx)
		}
	}
}

// Stop 通知循环退出并等待进行中的扫描完成，等待时长受 ctx 约束
func (s *SweeperService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	started := s.started
	tickCancel := s.tickCancel
	s.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		if tickCancel != nil {
			tickCancel()
		}
		return ctx.Err()
	}
}

// tick 执行一次扫描；上一次仍在执行时跳过
func (s *SweeperService) tick(ctx context.Context) bool {
	if !s.tickMu.TryLock() {
		s.log.Debugw("worker_sweep_tick_skipped")
		return false
	}
	defer s.tickMu.Unlock()
	started := time.Now()
	result := s.sweeper.RunAutoCancelSweep(ctx)
	s.log.Debugw("worker_sweep_tick_done",
		"scanned", result.Scanned,
		"cancelled", result.Cancelled,
		"failed", result.Failed,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return true
}
