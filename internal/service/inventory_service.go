package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"gorm.io/gorm"
)

// InventoryService 卖家库存管理服务
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
	retry         RetryPolicy
	listingTTL    time.Duration
}

// NewInventoryService 创建库存服务
func NewInventoryService(inventoryRepo repository.InventoryRepository, productRepo repository.ProductRepository, retry RetryPolicy, listingTTL time.Duration) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		retry:         retry,
		listingTTL:    listingTTL,
	}
}

// UpsertListingInput 上架 / 更新库存输入
type UpsertListingInput struct {
	SellerID  uint
	ProductID uint
	Quantity  int
	UnitPrice models.Money
}

// ListingQuery 库存列表查询
type ListingQuery struct {
	SellerID uint
	Search   string
	Page     int
	PageSize int
}

// ListingPage 库存列表分页结果
type ListingPage struct {
	Items []repository.ListingView `json:"items"`
	Total int64                    `json:"total"`
}

func validateListingValues(quantity int, price models.Money) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// AddListing 上架库存；同一卖家同一商品已存在时覆盖数量与价格（含已下架行）
func (s *InventoryService) AddListing(ctx context.Context, input UpsertListingInput) (*models.InventoryListing, error) {
	if input.SellerID == 0 {
		return nil, ErrForbidden
	}
	if err := validateListingValues(input.Quantity, input.UnitPrice); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	var result *models.InventoryListing
	err = RetryOnConflict(ctx, s.retry, func() error {
		listing, err := s.upsertListing(input)
		if err != nil {
			return err
		}
		result = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateListingCache(ctx)
	return result, nil
}

func (s *InventoryService) upsertListing(input UpsertListingInput) (*models.InventoryListing, error) {
	now := time.Now()
	var listing *models.InventoryListing
	err := s.inventoryRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.inventoryRepo.WithTx(tx)
		ledger := newInventoryLedger(repo)
		existing, err := ledger.lockForUpdateBySellerAndProduct(input.SellerID, input.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity = input.Quantity
			existing.UnitPrice = input.UnitPrice
			existing.IsDeleted = false
			existing.UpdatedAt = now
			if err := repo.Update(existing); err != nil {
				return err
			}
			listing = existing
			return nil
		}
		created := &models.InventoryListing{
			SellerID:  input.SellerID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(created); err != nil {
			return err
		}
		listing = created
		return nil
	})
	if err != nil {
		// 并发首次上架时唯一索引兜底，重试后会走更新分支
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return nil, classifyStorageError(err)
	}
	return listing, nil
}

// UpdateListing 修改库存数量与价格（仅限本人库存）
func (s *InventoryService) UpdateListing(ctx context.Context, sellerID, listingID uint, quantity int, price models.Money) (*models.InventoryListing, error) {
	if err := validateListingValues(quantity, price); err != nil {
		return nil, err
	}
	var result *models.InventoryListing
	err := RetryOnConflict(ctx, s.retry, func() error {
		return s.inventoryRepo.Transaction(func(tx *gorm.DB) error {
			repo := s.inventoryRepo.WithTx(tx)
			listing, err := s.lockOwnedListing(repo, sellerID, listingID)
			if err != nil {
				return err
			}
			listing.Quantity = quantity
			listing.UnitPrice = price
			listing.UpdatedAt = time.Now()
			if err := repo.Update(listing); err != nil {
				return classifyStorageError(err)
			}
			result = listing
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	invalidateListingCache(ctx)
	return result, nil
}

// DeleteListing 下架库存（软删除，仅限本人库存）
func (s *InventoryService) DeleteListing(ctx context.Context, sellerID, listingID uint) error {
	err := RetryOnConflict(ctx, s.retry, func() error {
		return s.inventoryRepo.Transaction(func(tx *gorm.DB) error {
			repo := s.inventoryRepo.WithTx(tx)
			listing, err := s.lockOwnedListing(repo, sellerID, listingID)
			if err != nil {
				return err
			}
			return classifyStorageError(repo.SoftDelete(listing.ID))
		})
	})
	if err != nil {
		return err
	}
	invalidateListingCache(ctx)
	return nil
}

func (s *InventoryService) lockOwnedListing(repo repository.InventoryRepository, sellerID, listingID uint) (*models.InventoryListing, error) {
	listing, err := newInventoryLedger(repo).lockForUpdate(listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsDeleted {
		return nil, ErrListingNotFound
	}
	if listing.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return listing, nil
}

// GetListing 获取可见库存
func (s *InventoryService) GetListing(listingID uint) (*models.InventoryListing, error) {
	listing, err := s.inventoryRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.IsDeleted {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// ListListings 库存列表（卖家后台，直接查库）
func (s *InventoryService) ListListings(query ListingQuery) ([]repository.ListingView, int64, error) {
	return s.inventoryRepo.List(repository.ListingListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SellerID: query.SellerID,
		Search:   strings.TrimSpace(query.Search),
	})
}

// ListPublicListings 公开库存列表，优先读取缓存
func (s *InventoryService) ListPublicListings(ctx context.Context, query ListingQuery) ([]repository.ListingView, int64, error) {
	key := cache.ListingQueryKey{
		SellerID: query.SellerID,
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	var cached ListingPage
	hit, err := cache.GetListingPage(ctx, key, &cached)
	if err != nil {
		logger.Warnw("inventory_listing_cache_read_failed", "error", err)
	}
	if hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.ListListings(query)
	if err != nil {
		return nil, 0, err
	}
	if err := cache.SetListingPage(ctx, key, ListingPage{Items: items, Total: total}, s.listingTTL); err != nil {
		logger.Warnw("inventory_listing_cache_write_failed", "error", err)
	}
	return items, total, nil
}

// invalidateListingCache 库存数量或可见性变化后使公开列表缓存失效
func invalidateListingCache(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cache.InvalidateListings(ctx); err != nil {
		logger.Warnw("inventory_listing_cache_invalidate_failed", "error", err)
	}
}
