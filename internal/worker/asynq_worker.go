package worker

import (
	"context"
	"encoding/json"

	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/queue"
	"github.com/bazaar-next/internal/service"

	"github.com/hibiken/asynq"
)

// OrderCanceller 消费者依赖的订单能力
type OrderCanceller interface {
	RunAutoCancelSweep(ctx context.Context) service.SweepResult
	AutoCancelIfStale(ctx context.Context, orderID uint) (bool, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	orders OrderCanceller
}

// NewConsumer 创建消费者
func NewConsumer(orders OrderCanceller) *Consumer {
	return &Consumer{orders: orders}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderAutoCancelSweep, c.handleOrderAutoCancelSweep)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderAutoCancelSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.orders == nil {
		logger.Debugw("worker_order_auto_cancel_sweep_skip_nil", "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderAutoCancelSweepPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			// 载荷损坏不影响扫描本身
			logger.Warnw("worker_order_auto_cancel_sweep_unmarshal_failed", "error", err)
		}
	}
	result := c.orders.RunAutoCancelSweep(ctx)
	logger.Debugw("worker_order_auto_cancel_sweep_done",
		"trigger", payload.Trigger,
		"scanned", result.Scanned,
		"cancelled", result.Cancelled,
		"failed", result.Failed,
	)
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.orders == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderTimeoutCancelPayload(task)
	if err != nil {
		// 非法载荷重试也无法成功，直接丢弃
		logger.Warnw("worker_order_timeout_cancel_invalid_payload", "error", err)
		return nil
	}
	cancelled, err := c.orders.AutoCancelIfStale(ctx, payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if !cancelled {
		logger.Debugw("worker_order_timeout_cancel_skip_not_stale", "order_id", payload.OrderID)
	}
	return nil
}
