package constants

// 订单状态常量
const (
	OrderStatusPending       = "PENDING"
	OrderStatusConfirmed     = "CONFIRMED"
	OrderStatusReady         = "READY"
	OrderStatusDone          = "DONE"
	OrderStatusCancelled     = "CANCELLED"
	OrderStatusAutoCancelled = "AUTO_CANCELLED"
)

// 用户角色常量
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskOrderAutoCancelSweep = "order:auto_cancel_sweep"
	TaskOrderTimeoutCancel   = "order:timeout_cancel"
)

// 自动取消触发方式
const (
	SweepTriggerTicker = "ticker"
	SweepTriggerQueue  = "queue"
)

// 系统操作人标识（自动取消等后台动作）
const SystemActor = "system"
