package service

import (
	"context"
	"sort"
	"time"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/queue"
	"github.com/bazaar-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultStaleAfter     = 24 * time.Hour
	defaultSweepBatchSize = 200
	timeoutTaskGrace      = time.Second
)

// Actor 已认证的操作人
type Actor struct {
	UserID uint
	Role   string
}

// OrderServiceOptions 订单服务参数
type OrderServiceOptions struct {
	StaleAfter         time.Duration
	SweepBatchSize     int
	Retry              RetryPolicy
	TimeoutTaskEnabled bool
}

// OrderService 订单服务：结算、状态机、自动取消
type OrderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	inventoryRepo repository.InventoryRepository
	queueClient   *queue.Client
	staleAfter    time.Duration
	batchSize     int
	retry         RetryPolicy
	timeoutTask   bool
	now           func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, inventoryRepo repository.InventoryRepository, queueClient *queue.Client, opts OrderServiceOptions) *OrderService {
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	batchSize := opts.SweepBatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	retry := opts.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		inventoryRepo: inventoryRepo,
		queueClient:   queueClient,
		staleAfter:    staleAfter,
		batchSize:     batchSize,
		retry:         retry,
		timeoutTask:   opts.TimeoutTaskEnabled,
		now:           time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (s *OrderService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// StaleAfter 待处理订单超时阈值
func (s *OrderService) StaleAfter() time.Duration {
	return s.staleAfter
}

// sellerGroup 单个卖家的待建订单
type sellerGroup struct {
	sellerID uint
	items    []models.OrderItem
	total    models.Money
}

// Checkout 将买家购物车按卖家拆分为多个订单
// 整个过程在一个事务内完成，任一步失败则全部回滚，购物车保持不变
func (s *OrderService) Checkout(ctx context.Context, buyerID uint) ([]models.Order, error) {
	if buyerID == 0 {
		return nil, ErrForbidden
	}
	var orders []models.Order
	err := RetryOnConflict(ctx, s.retry, func() error {
		created, err := s.checkoutOnce(buyerID)
		if err != nil {
			return err
		}
		orders = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	logger.Infow("order_checkout_created",
		"buyer_id", buyerID,
		"checkout_id", orders[0].CheckoutID,
		"order_ids", orderIDs,
	)
	invalidateListingCache(ctx)
	s.scheduleTimeoutCancel(orders)
	return orders, nil
}

func (s *OrderService) checkoutOnce(buyerID uint) ([]models.Order, error) {
	now := s.now()
	checkoutID := uuid.NewString()
	var created []models.Order

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		ledger := newInventoryLedger(s.inventoryRepo.WithTx(tx))

		lines, err := cartRepo.ListByBuyer(buyerID)
		if err != nil {
			return classifyStorageError(err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		// 固定按库存 ID 升序加锁，避免并发结算交叉加锁导致死锁
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].ListingID < lines[j].ListingID
		})

		groups := make(map[uint]*sellerGroup)
		for _, line := range lines {
			listing, err := ledger.lockForUpdate(line.ListingID)
			if err != nil {
				return err
			}
			if listing.IsDeleted {
				return ErrListingNotFound
			}
			if err := ledger.decrement(listing, line.Quantity); err != nil {
				return err
			}
			group, ok := groups[listing.SellerID]
			if !ok {
				group = &sellerGroup{sellerID: listing.SellerID, total: models.MustMoney("0")}
				groups[listing.SellerID] = group
			}
			group.items = append(group.items, models.OrderItem{
				ListingID:       listing.ID,
				ProductID:       listing.ProductID,
				Quantity:        line.Quantity,
				PriceAtPurchase: listing.UnitPrice,
				CreatedAt:       now,
			})
			group.total = group.total.Plus(listing.UnitPrice.MulInt(line.Quantity))
		}

		sellerIDs := make([]uint, 0, len(groups))
		for sellerID := range groups {
			sellerIDs = append(sellerIDs, sellerID)
		}
		sort.Slice(sellerIDs, func(i, j int) bool { return sellerIDs[i] < sellerIDs[j] })

		created = make([]models.Order, 0, len(sellerIDs))
		for _, sellerID := range sellerIDs {
			group := groups[sellerID]
			order := &models.Order{
				CheckoutID:  checkoutID,
				BuyerID:     buyerID,
				SellerID:    sellerID,
				Status:      constants.OrderStatusPending,
				TotalAmount: group.total,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := orderRepo.Create(order, group.items); err != nil {
				return classifyStorageError(err)
			}
			created = append(created, *order)
		}

		ordered := make(map[uint]int, len(lines))
		for _, line := range lines {
			ordered[line.ID] = line.Quantity
		}
		if err := cartRepo.ConsumeLines(buyerID, ordered); err != nil {
			return classifyStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return created, nil
}

// scheduleTimeoutCancel 提交后投递单订单超时任务；失败只记录日志，周期扫描兜底
func (s *OrderService) scheduleTimeoutCancel(orders []models.Order) {
	if !s.timeoutTask || s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	for _, order := range orders {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, s.staleAfter+timeoutTaskGrace); err != nil {
			logger.Warnw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}
}
