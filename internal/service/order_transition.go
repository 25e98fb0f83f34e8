package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"gorm.io/gorm"
)

// SweepResult 单次自动取消扫描结果
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

// transitionRequest 状态变更请求
// actorID 为 nil 表示系统发起；expectStatus / createdBefore 为系统取消时的附加条件
type transitionRequest struct {
	orderID       uint
	newStatus     string
	actorID       *uint
	expectStatus  string
	createdBefore *time.Time
}

// Transition 用户发起的订单状态变更
// 状态机只校验操作人是否为订单买家或卖家，具体动作的角色限制由路由层负责
func (s *OrderService) Transition(ctx context.Context, orderID uint, newStatus string, actor Actor) (*models.Order, error) {
	if !IsValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}
	actorID := actor.UserID
	var result *models.Order
	err := RetryOnConflict(ctx, s.retry, func() error {
		order, err := s.applyTransition(transitionRequest{
			orderID:   orderID,
			newStatus: newStatus,
			actorID:   &actorID,
		})
		if err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_status_transitioned",
		"order_id", result.ID,
		"status", result.Status,
		"actor_id", actor.UserID,
		"actor_role", actor.Role,
	)
	if isCancelStatus(newStatus) {
		invalidateListingCache(ctx)
	}
	return result, nil
}

// AutoCancelOrder 系统自动取消单个订单（无操作人校验）
// 仅当订单仍为 PENDING 且创建时间早于 cutoff 时生效
func (s *OrderService) AutoCancelOrder(ctx context.Context, orderID uint, cutoff time.Time) (*models.Order, error) {
	var result *models.Order
	err := RetryOnConflict(ctx, s.retry, func() error {
		order, err := s.applyTransition(transitionRequest{
			orderID:       orderID,
			newStatus:     constants.OrderStatusAutoCancelled,
			expectStatus:  constants.OrderStatusPending,
			createdBefore: &cutoff,
		})
		if err != nil {
			return err
		}
		result = order
		return nil
	})
	return result, err
}

// AutoCancelIfStale 超时任务入口：订单已不再待处理或尚未超时则静默跳过
func (s *OrderService) AutoCancelIfStale(ctx context.Context, orderID uint) (bool, error) {
	_, err := s.AutoCancelOrder(ctx, orderID, s.now().Add(-s.staleAfter))
	if err == nil {
		invalidateListingCache(ctx)
		return true, nil
	}
	if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrOrderNotFound) {
		return false, nil
	}
	return false, err
}

// RunAutoCancelSweep 扫描并自动取消超时的待处理订单
// 每个订单独立事务，单个失败记录日志后继续，错误不向上返回
func (s *OrderService) RunAutoCancelSweep(ctx context.Context) SweepResult {
	if ctx == nil {
		ctx = context.Background()
	}
	cutoff := s.now().Add(-s.staleAfter)
	var result SweepResult
	var cursor *repository.StaleOrderCursor

	for {
		if ctx.Err() != nil {
			break
		}
		refs, err := s.orderRepo.ListStalePending(constants.OrderStatusPending, cutoff, cursor, s.batchSize)
		if err != nil {
			logger.Errorw("order_auto_cancel_scan_failed", "error", err)
			break
		}
		for _, ref := range refs {
			result.Scanned++
			if _, err := s.AutoCancelOrder(ctx, ref.ID, cutoff); err != nil {
				result.Failed++
				logger.Warnw("order_auto_cancel_failed",
					"order_id", ref.ID,
					"error", err,
				)
				continue
			}
			result.Cancelled++
		}
		// 游标越过本批（含失败订单），失败订单留待下一个周期
		if len(refs) < s.batchSize {
			break
		}
		last := refs[len(refs)-1]
		cursor = &last
	}

	if result.Cancelled > 0 {
		invalidateListingCache(ctx)
	}
	if result.Scanned > 0 {
		logger.Infow("order_auto_cancel_sweep_done",
			"scanned", result.Scanned,
			"cancelled", result.Cancelled,
			"failed", result.Failed,
			"cutoff", cutoff,
		)
	}
	return result
}

// applyTransition 在单个事务内完成：加载、校验、CAS 写状态、取消时回补库存
func (s *OrderService) applyTransition(req transitionRequest) (*models.Order, error) {
	now := s.now()
	var updated *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByID(req.orderID)
		if err != nil {
			return classifyStorageError(err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if req.actorID != nil && *req.actorID != order.BuyerID && *req.actorID != order.SellerID {
			return ErrForbidden
		}
		if req.expectStatus != "" && order.Status != req.expectStatus {
			return ErrInvalidTransition
		}
		if req.createdBefore != nil && !order.CreatedAt.Before(*req.createdBefore) {
			return ErrInvalidTransition
		}
		if !IsTransitionAllowed(order.Status, req.newStatus) {
			return ErrInvalidTransition
		}

		affected, err := orderRepo.UpdateStatus(order.ID, order.Status, req.newStatus, now)
		if err != nil {
			return classifyStorageError(err)
		}
		if affected == 0 {
			return ErrInvalidTransition
		}

		if isCancelStatus(req.newStatus) {
			if err := s.restock(s.inventoryRepo.WithTx(tx), order.Items); err != nil {
				return err
			}
		}

		order.Status = req.newStatus
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return updated, nil
}

// restock 取消补偿：按库存 ID 升序加锁后回补，已下架库存同样回补
func (s *OrderService) restock(repo repository.InventoryRepository, items []models.OrderItem) error {
	quantities := make(map[uint]int, len(items))
	listingIDs := make([]uint, 0, len(items))
	for _, item := range items {
		if _, ok := quantities[item.ListingID]; !ok {
			listingIDs = append(listingIDs, item.ListingID)
		}
		quantities[item.ListingID] += item.Quantity
	}
	sort.Slice(listingIDs, func(i, j int) bool { return listingIDs[i] < listingIDs[j] })

	ledger := newInventoryLedger(repo)
	for _, listingID := range listingIDs {
		listing, err := ledger.lockForUpdate(listingID)
		if err != nil {
			return err
		}
		if err := ledger.increment(listing, quantities[listingID]); err != nil {
			return err
		}
	}
	return nil
}
