package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"
)

// CartView 购物车展示结果
type CartView struct {
	Items       []repository.CartLineView `json:"items"`
	TotalAmount models.Money              `json:"total_amount"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo      repository.CartRepository
	inventoryRepo repository.InventoryRepository
	retry         RetryPolicy
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, inventoryRepo repository.InventoryRepository, retry RetryPolicy) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		inventoryRepo: inventoryRepo,
		retry:         retry,
	}
}

// AddItem 加入购物车；同一库存已存在时累加数量
func (s *CartService) AddItem(ctx context.Context, buyerID, listingID uint, quantity int) (*models.CartItem, error) {
	if buyerID == 0 {
		return nil, ErrForbidden
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	listing, err := s.inventoryRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.IsDeleted {
		return nil, ErrListingNotFound
	}

	var result *models.CartItem
	err = RetryOnConflict(ctx, s.retry, func() error {
		item, err := s.addOrIncrement(buyerID, listingID, quantity)
		if err != nil {
			return err
		}
		result = item
		return nil
	})
	return result, err
}

func (s *CartService) addOrIncrement(buyerID, listingID uint, quantity int) (*models.CartItem, error) {
	existing, err := s.cartRepo.GetByBuyerAndListing(buyerID, listingID)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	if existing != nil {
		if err := s.cartRepo.AddQuantity(existing.ID, quantity); err != nil {
			return nil, classifyStorageError(err)
		}
		existing.Quantity += quantity
		return existing, nil
	}
	now := time.Now()
	item := &models.CartItem{
		BuyerID:   buyerID,
		ListingID: listingID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Create(item); err != nil {
		// 并发加入同一库存时由唯一索引兜底，重试后走累加分支
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return nil, classifyStorageError(err)
	}
	return item, nil
}

// SetQuantity 修改数量；数量小于等于 0 时删除该项
func (s *CartService) SetQuantity(buyerID, itemID uint, quantity int) (*models.CartItem, error) {
	item, err := s.ownedItem(buyerID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		if err := s.cartRepo.Delete(item.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := s.cartRepo.UpdateQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(buyerID, itemID uint) error {
	item, err := s.ownedItem(buyerID, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(item.ID)
}

// Clear 清空购物车（空购物车同样成功）
func (s *CartService) Clear(buyerID uint) error {
	_, err := s.cartRepo.ClearByBuyer(buyerID)
	return err
}

// List 购物车展示列表
func (s *CartService) List(buyerID uint) (*CartView, error) {
	lines, err := s.cartRepo.ListDisplayByBuyer(buyerID)
	if err != nil {
		return nil, err
	}
	total := models.MustMoney("0")
	for _, line := range lines {
		total = total.Plus(line.UnitPrice.MulInt(line.Quantity))
	}
	if lines == nil {
		lines = []repository.CartLineView{}
	}
	return &CartView{Items: lines, TotalAmount: total}, nil
}

func (s *CartService) ownedItem(buyerID, itemID uint) (*models.CartItem, error) {
	item, err := s.cartRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if item.BuyerID != buyerID {
		return nil, ErrForbidden
	}
	return item, nil
}
