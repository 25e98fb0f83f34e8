package service

import (
	"strings"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"
)

// OrderQuery 订单列表查询
type OrderQuery struct {
	Status   string
	Page     int
	PageSize int
}

// scopeFilter 按角色限定订单可见范围：卖家看自己售出的，买家看自己购买的
func scopeFilter(actor Actor, filter repository.OrderListFilter) (repository.OrderListFilter, error) {
	switch actor.Role {
	case constants.RoleSeller:
		filter.SellerID = actor.UserID
	case constants.RoleBuyer:
		filter.BuyerID = actor.UserID
	default:
		return filter, ErrInvalidRole
	}
	if actor.UserID == 0 {
		return filter, ErrForbidden
	}
	return filter, nil
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(actor Actor, query OrderQuery) ([]models.Order, int64, error) {
	filter := repository.OrderListFilter{Page: query.Page, PageSize: query.PageSize}
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		if !IsValidOrderStatus(status) {
			return nil, 0, ErrInvalidStatus
		}
		filter.Statuses = []string{status}
	}
	filter, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.orderRepo.List(filter)
}

// OrderHistory 历史订单（仅终态）
func (s *OrderService) OrderHistory(actor Actor, page, pageSize int) ([]models.Order, int64, error) {
	filter, err := scopeFilter(actor, repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Statuses: terminalOrderStatuses,
	})
	if err != nil {
		return nil, 0, err
	}
	return s.orderRepo.List(filter)
}

// GetOrder 订单详情（需为订单买家或卖家）
func (s *OrderService) GetOrder(actor Actor, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if actor.UserID == 0 || (actor.UserID != order.BuyerID && actor.UserID != order.SellerID) {
		return nil, ErrForbidden
	}
	return order, nil
}
