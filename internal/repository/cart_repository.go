package repository

import (
	"errors"
	"time"

	"github.com/bazaar-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByID(id uint) (*models.CartItem, error)
	GetByBuyerAndListing(buyerID, listingID uint) (*models.CartItem, error)
	Create(item *models.CartItem) error
	AddQuantity(id uint, delta int) error
	UpdateQuantity(id uint, quantity int) error
	Delete(id uint) error
	ClearByBuyer(buyerID uint) (int64, error)
	ConsumeLines(buyerID uint, ordered map[uint]int) error
	ListByBuyer(buyerID uint) ([]models.CartItem, error)
	ListDisplayByBuyer(buyerID uint) ([]CartLineView, error)
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByID 根据 ID 获取购物车项
func (r *GormCartRepository) GetByID(id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByBuyerAndListing 获取买家对某库存的购物车项
func (r *GormCartRepository) GetByBuyerAndListing(buyerID, listingID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("buyer_id = ? AND listing_id = ?", buyerID, listingID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create 新建购物车项
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// AddQuantity 原子累加数量
func (r *GormCartRepository) AddQuantity(id uint, delta int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

// UpdateQuantity 覆盖数量
func (r *GormCartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

// Delete 删除购物车项
func (r *GormCartRepository) Delete(id uint) error {
	return r.db.Delete(&models.CartItem{}, id).Error
}

// ClearByBuyer 清空买家购物车
func (r *GormCartRepository) ClearByBuyer(buyerID uint) (int64, error) {
	result := r.db.Where("buyer_id = ?", buyerID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ConsumeLines 扣除已下单的购物车数量（itemID -> 已下单数量）
// 只处理读取时存在的行；读取后并发追加的数量保留在购物车中
func (r *GormCartRepository) ConsumeLines(buyerID uint, ordered map[uint]int) error {
	for itemID, quantity := range ordered {
		result := r.db.Where("id = ? AND buyer_id = ? AND quantity <= ?", itemID, buyerID, quantity).
			Delete(&models.CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			continue
		}
		if err := r.db.Model(&models.CartItem{}).
			Where("id = ? AND buyer_id = ?", itemID, buyerID).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", quantity),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListByBuyer 获取买家购物车项（关联库存，按库存 ID 升序）
func (r *GormCartRepository) ListByBuyer(buyerID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Listing").
		Where("buyer_id = ?", buyerID).
		Order("listing_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListDisplayByBuyer 购物车展示列表（关联库存、商品、卖家）
func (r *GormCartRepository) ListDisplayByBuyer(buyerID uint) ([]CartLineView, error) {
	var rows []CartLineView
	err := r.db.Table("cart_items AS c").
		Joins("JOIN inventory_listings AS l ON l.id = c.listing_id").
		Joins("JOIN products AS p ON p.id = l.product_id").
		Joins("JOIN users AS u ON u.id = l.seller_id").
		Where("c.buyer_id = ?", buyerID).
		Select(`c.id AS id, c.listing_id AS listing_id, c.quantity AS quantity,
			l.unit_price AS unit_price, l.quantity AS available,
			p.id AS product_id, p.name AS product_name, p.image AS product_image,
			u.id AS seller_id, u.name AS seller_name`).
		Order("c.created_at asc, c.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
