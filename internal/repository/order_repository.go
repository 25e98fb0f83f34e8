package repository

import (
	"errors"
	"time"

	"github.com/bazaar-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	UpdateStatus(id uint, fromStatus, toStatus string, updatedAt time.Time) (int64, error)
	ListStalePending(pendingStatus string, cutoff time.Time, after *StaleOrderCursor, limit int) ([]StaleOrderCursor, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 开启事务，fn 返回错误时整体回滚
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = order.CreatedAt
		}
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_id asc")
	}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus 以当前状态为条件更新状态，返回影响行数
// 影响 0 行说明状态已被并发修改
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatus, toStatus string, updatedAt time.Time) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": updatedAt,
		})
	return result.RowsAffected, result.Error
}

// ListStalePending 查询超时未处理订单（按 created_at, id 升序）
// after 非空时从该游标之后继续，避免反复扫描队首的失败订单
func (r *GormOrderRepository) ListStalePending(pendingStatus string, cutoff time.Time, after *StaleOrderCursor, limit int) ([]StaleOrderCursor, error) {
	var refs []StaleOrderCursor
	query := r.db.Model(&models.Order{}).
		Select("id", "created_at").
		Where("status = ? AND created_at < ?", pendingStatus, cutoff)
	if after != nil {
		query = query.Where("(created_at > ? OR (created_at = ? AND id > ?))", after.CreatedAt, after.CreatedAt, after.ID)
	}
	query = query.Order("created_at asc, id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// List 订单列表（买家或卖家视角）
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.BuyerID != 0 {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Items").
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
