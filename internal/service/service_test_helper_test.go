package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv 服务层测试环境：独立的内存 SQLite 与全部服务
type testEnv struct {
	db        *gorm.DB
	orders    *OrderService
	carts     *CartService
	inventory *InventoryService
	products  *ProductService
	auth      *AuthService
	orderRepo *repository.GormOrderRepository
}

var serviceTestDBSeq atomic.Int64

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), serviceTestDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 单连接使 SQLite 事务串行执行
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	retry := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true},
		},
	}

	return &testEnv{
		db: db,
		orders: NewOrderService(orderRepo, cartRepo, inventoryRepo, nil, OrderServiceOptions{
			StaleAfter:     24 * time.Hour,
			SweepBatchSize: 2,
			Retry:          retry,
		}),
		carts:     NewCartService(cartRepo, inventoryRepo, retry),
		inventory: NewInventoryService(inventoryRepo, productRepo, retry, time.Minute),
		products:  NewProductService(productRepo, inventoryRepo),
		auth:      NewAuthService(cfg, userRepo),
		orderRepo: orderRepo,
	}
}

func (e *testEnv) user(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Name: username, Role: role}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (e *testEnv) listing(t *testing.T, sellerID uint, productName string, quantity int, price string) *models.InventoryListing {
	t.Helper()
	product, err := e.products.CreateProduct(CreateProductInput{Name: productName, CreatedBy: sellerID})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	listing, err := e.inventory.AddListing(context.Background(), UpsertListingInput{
		SellerID:  sellerID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: models.MustMoney(price),
	})
	if err != nil {
		t.Fatalf("add listing failed: %v", err)
	}
	return listing
}

func (e *testEnv) addToCart(t *testing.T, buyerID, listingID uint, quantity int) {
	t.Helper()
	if _, err := e.carts.AddItem(context.Background(), buyerID, listingID, quantity); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
}

func (e *testEnv) listingQuantity(t *testing.T, listingID uint) int {
	t.Helper()
	var listing models.InventoryListing
	if err := e.db.First(&listing, listingID).Error; err != nil {
		t.Fatalf("reload listing failed: %v", err)
	}
	return listing.Quantity
}

func (e *testEnv) cartCount(t *testing.T, buyerID uint) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.CartItem{}).Where("buyer_id = ?", buyerID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	return count
}

func (e *testEnv) orderStatus(t *testing.T, orderID uint) string {
	t.Helper()
	var order models.Order
	if err := e.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return order.Status
}

// seedOrder 直接写入指定状态与创建时间的订单
func (e *testEnv) seedOrder(t *testing.T, buyerID, sellerID uint, status string, createdAt time.Time, items ...models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		CheckoutID:  fmt.Sprintf("seed-%d", time.Now().UnixNano()),
		BuyerID:     buyerID,
		SellerID:    sellerID,
		Status:      status,
		TotalAmount: models.MustMoney("0"),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := e.orderRepo.Create(order, items); err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

