package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/bazaar-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Name: username, Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	product := &models.Product{Name: name}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestListing(t *testing.T, db *gorm.DB, sellerID, productID uint, quantity int, price string) *models.InventoryListing {
	t.Helper()
	listing := &models.InventoryListing{
		SellerID:  sellerID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: models.MustMoney(price),
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	return listing
}

func createTestOrder(t *testing.T, db *gorm.DB, buyerID, sellerID uint, status string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		CheckoutID:  fmt.Sprintf("chk-%d", time.Now().UnixNano()),
		BuyerID:     buyerID,
		SellerID:    sellerID,
		Status:      status,
		TotalAmount: models.MustMoney("0"),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
