package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/bazaar-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 卖家库存数据访问接口
type InventoryRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	GetByID(id uint) (*models.InventoryListing, error)
	GetByIDForUpdate(id uint) (*models.InventoryListing, error)
	GetBySellerAndProductForUpdate(sellerID, productID uint) (*models.InventoryListing, error)
	Create(listing *models.InventoryListing) error
	Update(listing *models.InventoryListing) error
	Decrement(id uint, quantity int) (int64, error)
	Increment(id uint, quantity int) (int64, error)
	SoftDelete(id uint) error
	SoftDeleteByProduct(productID uint) (int64, error)
	List(filter ListingListFilter) ([]ListingView, int64, error)
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// Transaction 开启事务
func (r *GormInventoryRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 无锁读取（仅用于展示）
func (r *GormInventoryRepository) GetByID(id uint) (*models.InventoryListing, error) {
	var listing models.InventoryListing
	if err := r.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetByIDForUpdate 加行锁读取库存，锁随所在事务释放
// 返回结果包含已软删除的行，由调用方决定可见性
func (r *GormInventoryRepository) GetByIDForUpdate(id uint) (*models.InventoryListing, error) {
	if id == 0 {
		return nil, nil
	}
	var listing models.InventoryListing
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetBySellerAndProductForUpdate 按 (卖家, 商品) 加行锁读取库存
func (r *GormInventoryRepository) GetBySellerAndProductForUpdate(sellerID, productID uint) (*models.InventoryListing, error) {
	if sellerID == 0 || productID == 0 {
		return nil, nil
	}
	var listing models.InventoryListing
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("seller_id = ? AND product_id = ?", sellerID, productID).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// Create 创建库存
func (r *GormInventoryRepository) Create(listing *models.InventoryListing) error {
	return r.db.Create(listing).Error
}

// Update 覆盖数量、价格与删除标记
func (r *GormInventoryRepository) Update(listing *models.InventoryListing) error {
	if listing == nil || listing.ID == 0 {
		return errors.New("invalid listing")
	}
	return r.db.Model(&models.InventoryListing{}).
		Where("id = ?", listing.ID).
		Updates(map[string]interface{}{
			"quantity":   listing.Quantity,
			"unit_price": listing.UnitPrice,
			"is_deleted": listing.IsDeleted,
			"updated_at": listing.UpdatedAt,
		}).Error
}

// Decrement 扣减库存，数量不足时不更新并返回 0 行
func (r *GormInventoryRepository) Decrement(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, fmt.Errorf("invalid decrement params: id=%d quantity=%d", id, quantity)
	}
	result := r.db.Model(&models.InventoryListing{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Increment 回补库存（取消补偿），不校验删除标记
func (r *GormInventoryRepository) Increment(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, fmt.Errorf("invalid increment params: id=%d quantity=%d", id, quantity)
	}
	result := r.db.Model(&models.InventoryListing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SoftDelete 标记库存下架
func (r *GormInventoryRepository) SoftDelete(id uint) error {
	return r.db.Model(&models.InventoryListing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": time.Now()}).Error
}

// SoftDeleteByProduct 商品删除时下架其全部库存
func (r *GormInventoryRepository) SoftDeleteByProduct(productID uint) (int64, error) {
	result := r.db.Model(&models.InventoryListing{}).
		Where("product_id = ? AND is_deleted = ?", productID, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// List 库存展示列表，排除已下架库存与已删除商品
func (r *GormInventoryRepository) List(filter ListingListFilter) ([]ListingView, int64, error) {
	query := r.db.Table("inventory_listings AS l").
		Joins("JOIN products AS p ON p.id = l.product_id AND p.deleted_at IS NULL").
		Joins("JOIN users AS u ON u.id = l.seller_id").
		Where("l.is_deleted = ?", false)
	if filter.SellerID != 0 {
		query = query.Where("l.seller_id = ?", filter.SellerID)
	}
	if filter.Search != "" {
		query = query.Where(fmt.Sprintf("p.name %s ? ESCAPE '\\'", likeOperator(r.db)), buildLikePattern(filter.Search))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ListingView
	err := applyPagination(query, filter.Page, filter.PageSize).
		Select(`l.id AS id, l.quantity AS quantity, l.unit_price AS unit_price,
			p.id AS product_id, p.name AS product_name, p.image AS product_image, p.description AS product_description,
			u.id AS seller_id, u.name AS seller_name`).
		Order("l.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
