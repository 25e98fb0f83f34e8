package service

import (
	"context"
	"strings"
	"time"

	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"gorm.io/gorm"
)

// ProductService 商品目录服务
type ProductService struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, inventoryRepo repository.InventoryRepository) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Name        string
	Image       string
	Description string
	CreatedBy   uint
}

// CreateProduct 创建目录商品
func (s *ProductService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProductName
	}
	now := time.Now()
	product := &models.Product{
		Name:        name,
		Image:       strings.TrimSpace(input.Image),
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct 获取商品
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListProducts 商品列表
func (s *ProductService) ListProducts(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.productRepo.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(search),
	})
}

// DeleteProduct 删除商品并在同一事务内下架所有卖家的对应库存
// actorID 为 0 表示系统操作，否则仅创建者可删除
func (s *ProductService) DeleteProduct(ctx context.Context, actorID, id uint) error {
	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		product, err := productRepo.GetByID(id)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		if actorID != 0 && product.CreatedBy != actorID {
			return ErrForbidden
		}
		if err := productRepo.Delete(product.ID); err != nil {
			return err
		}
		_, err = s.inventoryRepo.WithTx(tx).SoftDeleteByProduct(product.ID)
		return err
	})
	if err != nil {
		return classifyStorageError(err)
	}
	invalidateListingCache(ctx)
	return nil
}
