package service

import (
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"
)

// inventoryLedger 绑定在单个事务上的库存账本
// 所有数量变更都必须先 lockForUpdate，锁随事务提交或回滚释放
type inventoryLedger struct {
	repo repository.InventoryRepository
}

func newInventoryLedger(repo repository.InventoryRepository) inventoryLedger {
	return inventoryLedger{repo: repo}
}

// lockForUpdate 加锁读取库存，不存在返回 ErrListingNotFound
func (l inventoryLedger) lockForUpdate(listingID uint) (*models.InventoryListing, error) {
	listing, err := l.repo.GetByIDForUpdate(listingID)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// lockForUpdateBySellerAndProduct 按自然键加锁读取，不存在时返回 nil
func (l inventoryLedger) lockForUpdateBySellerAndProduct(sellerID, productID uint) (*models.InventoryListing, error) {
	listing, err := l.repo.GetBySellerAndProductForUpdate(sellerID, productID)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	return listing, nil
}

// decrement 扣减已加锁的库存
func (l inventoryLedger) decrement(listing *models.InventoryListing, amount int) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	if amount > listing.Quantity {
		return &InsufficientStockError{ListingID: listing.ID, Requested: amount, Available: listing.Quantity}
	}
	affected, err := l.repo.Decrement(listing.ID, amount)
	if err != nil {
		return classifyStorageError(err)
	}
	if affected == 0 {
		return &InsufficientStockError{ListingID: listing.ID, Requested: amount, Available: listing.Quantity}
	}
	listing.Quantity -= amount
	return nil
}

// increment 回补已加锁的库存（取消补偿）
func (l inventoryLedger) increment(listing *models.InventoryListing, amount int) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	affected, err := l.repo.Increment(listing.ID, amount)
	if err != nil {
		return classifyStorageError(err)
	}
	if affected == 0 {
		return ErrListingNotFound
	}
	listing.Quantity += amount
	return nil
}
