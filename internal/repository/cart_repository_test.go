package repository

import (
	"testing"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"
)

func TestCartRepositoryLifecycle(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seller := createTestUser(t, db, "seller", constants.RoleSeller)
	buyer := createTestUser(t, db, "buyer", constants.RoleBuyer)
	p1 := createTestProduct(t, db, "One")
	p2 := createTestProduct(t, db, "Two")
	l1 := createTestListing(t, db, seller.ID, p1.ID, 10, "1.00")
	l2 := createTestListing(t, db, seller.ID, p2.ID, 10, "2.00")
	repo := NewCartRepository(db)

	second := &models.CartItem{BuyerID: buyer.ID, ListingID: l2.ID, Quantity: 1}
	first := &models.CartItem{BuyerID: buyer.ID, ListingID: l1.ID, Quantity: 2}
	if err := repo.Create(second); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	if err := repo.Create(&models.CartItem{BuyerID: buyer.ID, ListingID: l1.ID, Quantity: 1}); err == nil {
		t.Fatalf("expected unique violation on duplicate buyer/listing")
	}

	if err := repo.AddQuantity(first.ID, 3); err != nil {
		t.Fatalf("add quantity failed: %v", err)
	}
	existing, err := repo.GetByBuyerAndListing(buyer.ID, l1.ID)
	if err != nil || existing == nil || existing.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v err=%v", existing, err)
	}

	items, err := repo.ListByBuyer(buyer.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 2 || items[0].ListingID != l1.ID || items[0].Listing == nil {
		t.Fatalf("expected items ordered by listing id with listing preloaded: %+v", items)
	}

	lines, err := repo.ListDisplayByBuyer(buyer.ID)
	if err != nil {
		t.Fatalf("list display failed: %v", err)
	}
	if len(lines) != 2 || lines[0].ProductName != "Two" || lines[0].Available != 10 {
		t.Fatalf("unexpected display lines: %+v", lines)
	}

	cleared, err := repo.ClearByBuyer(buyer.ID)
	if err != nil || cleared != 2 {
		t.Fatalf("expected 2 rows cleared, got %d err=%v", cleared, err)
	}
	missing, err := repo.GetByID(first.ID)
	if err != nil || missing != nil {
		t.Fatalf("expected nil after clear, got %+v err=%v", missing, err)
	}
}

func TestCartRepositoryConsumeLinesKeepsLaterAdditions(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seller := createTestUser(t, db, "seller", constants.RoleSeller)
	buyer := createTestUser(t, db, "buyer", constants.RoleBuyer)
	p1 := createTestProduct(t, db, "One")
	p2 := createTestProduct(t, db, "Two")
	p3 := createTestProduct(t, db, "Three")
	l1 := createTestListing(t, db, seller.ID, p1.ID, 10, "1.00")
	l2 := createTestListing(t, db, seller.ID, p2.ID, 10, "2.00")
	l3 := createTestListing(t, db, seller.ID, p3.ID, 10, "3.00")
	repo := NewCartRepository(db)

	ordered := &models.CartItem{BuyerID: buyer.ID, ListingID: l1.ID, Quantity: 2}
	grown := &models.CartItem{BuyerID: buyer.ID, ListingID: l2.ID, Quantity: 1}
	for _, item := range []*models.CartItem{ordered, grown} {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}
	// 结算读取后：已有行被追加数量，另有新行加入
	if err := repo.AddQuantity(grown.ID, 4); err != nil {
		t.Fatalf("add quantity failed: %v", err)
	}
	late := &models.CartItem{BuyerID: buyer.ID, ListingID: l3.ID, Quantity: 1}
	if err := repo.Create(late); err != nil {
		t.Fatalf("create late item failed: %v", err)
	}

	if err := repo.ConsumeLines(buyer.ID, map[uint]int{ordered.ID: 2, grown.ID: 1}); err != nil {
		t.Fatalf("consume lines failed: %v", err)
	}
	if item, err := repo.GetByID(ordered.ID); err != nil || item != nil {
		t.Fatalf("ordered line should be removed, got %+v err=%v", item, err)
	}
	if item, err := repo.GetByID(grown.ID); err != nil || item == nil || item.Quantity != 4 {
		t.Fatalf("grown line should keep the later 4 units, got %+v err=%v", item, err)
	}
	if item, err := repo.GetByID(late.ID); err != nil || item == nil || item.Quantity != 1 {
		t.Fatalf("late line should survive, got %+v err=%v", item, err)
	}
}
