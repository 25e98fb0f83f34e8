package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 共享商品目录
// 卖家通过 InventoryListing 对目录商品报价与备货
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // 主键
	Name        string         `gorm:"not null;index" json:"name"`        // 商品名称
	Image       string         `gorm:"default:''" json:"image"`           // 图片地址
	Description string         `gorm:"type:text" json:"description"`      // 描述
	CreatedBy   uint           `gorm:"index;not null;default:0" json:"-"` // 创建人
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                        // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
