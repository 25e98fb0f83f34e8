package models

import "time"

// Order 订单表（单卖家）
type Order struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                      // 主键
	CheckoutID  string    `gorm:"type:varchar(64);index;not null" json:"checkout_id"`        // 结算批次号（同一次结算生成的订单共享）
	BuyerID     uint      `gorm:"index;not null" json:"buyer_id"`                            // 买家ID
	SellerID    uint      `gorm:"index;not null" json:"seller_id"`                           // 卖家ID
	Status      string    `gorm:"type:varchar(32);index;not null" json:"status"`             // 订单状态
	TotalAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单金额
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                   // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
