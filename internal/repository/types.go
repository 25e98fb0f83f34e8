package repository

import (
	"time"

	"github.com/bazaar-next/internal/models"
)

// ListingListFilter 查询库存列表的过滤条件
type ListingListFilter struct {
	Page     int
	PageSize int
	SellerID uint
	Search   string
}

// ListingView 库存展示投影（关联商品与卖家）
type ListingView struct {
	ID                 uint         `json:"id"`
	Quantity           int          `json:"quantity"`
	UnitPrice          models.Money `json:"unit_price"`
	ProductID          uint         `json:"product_id"`
	ProductName        string       `json:"product_name"`
	ProductImage       string       `json:"product_image"`
	ProductDescription string       `json:"product_description"`
	SellerID           uint         `json:"seller_id"`
	SellerName         string       `json:"seller_name"`
}

// CartLineView 购物车展示投影
type CartLineView struct {
	ID           uint         `json:"id"`
	ListingID    uint         `json:"listing_id"`
	Quantity     int          `json:"quantity"`
	UnitPrice    models.Money `json:"unit_price"`
	Available    int          `json:"available"`
	ProductID    uint         `json:"product_id"`
	ProductName  string       `json:"product_name"`
	ProductImage string       `json:"product_image"`
	SellerID     uint         `json:"seller_id"`
	SellerName   string       `json:"seller_name"`
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page      int
	PageSize  int
	BuyerID   uint
	SellerID  uint
	Statuses  []string
	CreatedTo *time.Time
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// StaleOrderCursor 超时订单扫描游标
type StaleOrderCursor struct {
	ID        uint
	CreatedAt time.Time
}
