package models

import "time"

// CartItem 购物车项（买家 + 库存唯一）
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                // 主键
	BuyerID   uint      `gorm:"not null;uniqueIndex:idx_cart_buyer_listing" json:"buyer_id"`         // 买家ID
	ListingID uint      `gorm:"not null;uniqueIndex:idx_cart_buyer_listing;index" json:"listing_id"` // 库存ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                            // 数量
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                             // 更新时间

	Listing *InventoryListing `gorm:"foreignKey:ListingID" json:"listing,omitempty"` // 关联库存
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
