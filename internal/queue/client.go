package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列（库存回补相关）
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装
type Client struct {
	client        *asynq.Client
	enabled       bool
	defaultQueue  string
	criticalQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue, criticalQueue: CriticalQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:        client,
		enabled:       true,
		defaultQueue:  DefaultQueue,
		criticalQueue: resolveCriticalQueue(cfg),
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderTimeoutCancel 推送订单超时取消任务
func (c *Client) EnqueueOrderTimeoutCancel(payload OrderTimeoutCancelPayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewOrderTimeoutCancelTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(c.criticalQueue),
		asynq.ProcessIn(delay),
		asynq.TaskID(fmt.Sprintf("%s:%d", TaskOrderTimeoutCancel, payload.OrderID)),
	}
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueAutoCancelSweep 立即推送一次批量取消任务
func (c *Client) EnqueueAutoCancelSweep(payload OrderAutoCancelSweepPayload, uniqueFor time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderAutoCancelSweepTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, sweepTaskOptions(c.criticalQueue, uniqueFor)...)
	return err
}

// sweepTaskOptions 扫描任务在同一周期内去重，避免重叠派发
func sweepTaskOptions(queue string, uniqueFor time.Duration) []asynq.Option {
	options := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(0)}
	if uniqueFor >= time.Second {
		options = append(options, asynq.Unique(uniqueFor))
	}
	return options
}

// NewScheduler 创建周期任务调度器，按间隔派发批量取消任务
func NewScheduler(cfg *config.QueueConfig, interval time.Duration) (*asynq.Scheduler, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("queue disabled")
	}
	if interval < time.Second {
		interval = time.Second
	}
	task, err := NewOrderAutoCancelSweepTask(OrderAutoCancelSweepPayload{Trigger: constants.SweepTriggerQueue})
	if err != nil {
		return nil, err
	}
	scheduler := asynq.NewScheduler(buildRedisOpt(cfg), &asynq.SchedulerOpts{
		LogLevel: asynq.WarnLevel,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Debugw("queue_sweep_schedule_enqueue_skipped", "error", err)
			}
		},
	})
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := scheduler.Register(spec, task, sweepTaskOptions(resolveCriticalQueue(cfg), interval)...); err != nil {
		return nil, err
	}
	return scheduler, nil
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// resolveCriticalQueue 未配置 critical 队列时回落到默认队列
func resolveCriticalQueue(cfg *config.QueueConfig) string {
	if cfg != nil {
		if _, ok := cfg.Queues[CriticalQueue]; ok {
			return CriticalQueue
		}
	}
	return DefaultQueue
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
