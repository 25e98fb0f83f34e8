package models

import "time"

// InventoryListing 卖家库存（卖家 + 商品唯一）
// 软删除使用 is_deleted 标记而非 deleted_at，重新上架时复用同一行，保持 (seller_id, product_id) 唯一约束
type InventoryListing struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                    // 主键
	SellerID  uint      `gorm:"not null;uniqueIndex:idx_listing_seller_product" json:"seller_id"`        // 卖家ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_listing_seller_product;index" json:"product_id"` // 商品ID
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`                                      // 可售数量（不可为负）
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                 // 单价
	IsDeleted bool      `gorm:"not null;default:false;index" json:"-"`                                   // 软删除标记
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                              // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`   // 关联卖家
}

// TableName 指定表名
func (InventoryListing) TableName() string {
	return "inventory_listings"
}
