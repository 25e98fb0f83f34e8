package service

import (
	"sort"

	"github.com/bazaar-next/internal/constants"
)

// orderTransitions 订单状态邻接表，唯一的状态流转依据
var orderTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed:     true,
		constants.OrderStatusCancelled:     true,
		constants.OrderStatusAutoCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusReady:         true,
		constants.OrderStatusCancelled:     true,
		constants.OrderStatusAutoCancelled: true,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusDone: true,
	},
}

var allOrderStatuses = []string{
	constants.OrderStatusPending,
	constants.OrderStatusConfirmed,
	constants.OrderStatusReady,
	constants.OrderStatusDone,
	constants.OrderStatusCancelled,
	constants.OrderStatusAutoCancelled,
}

var terminalOrderStatuses = []string{
	constants.OrderStatusDone,
	constants.OrderStatusCancelled,
	constants.OrderStatusAutoCancelled,
}

// IsTransitionAllowed 判断 from -> to 是否合法（同状态重复应用视为非法）
func IsTransitionAllowed(from, to string) bool {
	next, ok := orderTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// NextStatuses 返回某状态允许的后继状态（排序后）
func NextStatuses(from string) []string {
	next := orderTransitions[from]
	result := make([]string, 0, len(next))
	for status := range next {
		result = append(result, status)
	}
	sort.Strings(result)
	return result
}

// IsValidOrderStatus 判断状态值是否合法
func IsValidOrderStatus(status string) bool {
	for _, s := range allOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus 终态没有出边
func IsTerminalStatus(status string) bool {
	return len(orderTransitions[status]) == 0 && IsValidOrderStatus(status)
}

func isCancelStatus(status string) bool {
	return status == constants.OrderStatusCancelled || status == constants.OrderStatusAutoCancelled
}
