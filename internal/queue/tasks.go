package queue

import (
	"encoding/json"
	"fmt"

	"github.com/bazaar-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderAutoCancelSweep 超时待处理订单批量取消任务
	TaskOrderAutoCancelSweep = constants.TaskOrderAutoCancelSweep
	// TaskOrderTimeoutCancel 单个订单超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// OrderAutoCancelSweepPayload 批量取消任务载荷
type OrderAutoCancelSweepPayload struct {
	Trigger string `json:"trigger"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderAutoCancelSweepTask 创建批量取消任务
func NewOrderAutoCancelSweepTask(payload OrderAutoCancelSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderAutoCancelSweep, body), nil
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// ParseOrderTimeoutCancelPayload 解析超时取消任务载荷
func ParseOrderTimeoutCancelPayload(task *asynq.Task) (OrderTimeoutCancelPayload, error) {
	var payload OrderTimeoutCancelPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order_id is required")
	}
	return payload, nil
}
