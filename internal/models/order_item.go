package models

import "time"

// OrderItem 订单项表
// 数量与成交价在下单时固定，之后只在取消回补库存时读取
type OrderItem struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                           // 主键
	OrderID         uint      `gorm:"index;not null" json:"order_id"`                                 // 订单ID
	ListingID       uint      `gorm:"index;not null" json:"listing_id"`                               // 库存ID（审计保留）
	ProductID       uint      `gorm:"index;not null" json:"product_id"`                               // 商品ID快照
	Quantity        int       `gorm:"not null" json:"quantity"`                                       // 数量
	PriceAtPurchase Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price_at_purchase"` // 成交单价快照
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
