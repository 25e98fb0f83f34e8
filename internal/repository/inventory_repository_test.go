package repository

import (
	"testing"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"
)

func TestInventoryDecrementRefusesOversell(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seller := createTestUser(t, db, "seller", constants.RoleSeller)
	product := createTestProduct(t, db, "Widget")
	listing := createTestListing(t, db, seller.ID, product.ID, 5, "10.00")
	repo := NewInventoryRepository(db)

	affected, err := repo.Decrement(listing.ID, 6)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected no rows affected when stock is short, got %d", affected)
	}

	affected, err = repo.Decrement(listing.ID, 5)
	if err != nil || affected != 1 {
		t.Fatalf("expected exact decrement to succeed, affected=%d err=%v", affected, err)
	}
	got, err := repo.GetByID(listing.ID)
	if err != nil || got == nil {
		t.Fatalf("get listing failed: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", got.Quantity)
	}

	if _, err := repo.Decrement(listing.ID, 0); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
}

func TestInventoryIncrementRestocksDeletedListing(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seller := createTestUser(t, db, "seller", constants.RoleSeller)
	product := createTestProduct(t, db, "Widget")
	listing := createTestListing(t, db, seller.ID, product.ID, 1, "3.50")
	repo := NewInventoryRepository(db)

	if err := repo.SoftDelete(listing.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := repo.Increment(listing.ID, 4); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	locked, err := repo.GetByIDForUpdate(listing.ID)
	if err != nil || locked == nil {
		t.Fatalf("locked read failed: %v", err)
	}
	if !locked.IsDeleted || locked.Quantity != 5 {
		t.Fatalf("expected deleted listing with quantity 5, got deleted=%v qty=%d", locked.IsDeleted, locked.Quantity)
	}
}

func TestInventoryListHidesDeletedRows(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seller := createTestUser(t, db, "seller", constants.RoleSeller)
	other := createTestUser(t, db, "other", constants.RoleSeller)
	apple := createTestProduct(t, db, "Apple 100%")
	pear := createTestProduct(t, db, "Pear")
	kept := createTestListing(t, db, seller.ID, apple.ID, 3, "1.00")
	removed := createTestListing(t, db, seller.ID, pear.ID, 3, "2.00")
	createTestListing(t, db, other.ID, apple.ID, 7, "1.20")
	repo := NewInventoryRepository(db)

	if err := repo.SoftDelete(removed.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	rows, total, err := repo.List(ListingListFilter{SellerID: seller.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != kept.ID {
		t.Fatalf("expected only kept listing, total=%d rows=%+v", total, rows)
	}
	if rows[0].ProductName != "Apple 100%" || rows[0].SellerName != "seller" {
		t.Fatalf("unexpected projection: %+v", rows[0])
	}

	rows, total, err = repo.List(ListingListFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 listings matching literal percent, got %d", total)
	}

	if err := db.Delete(&models.Product{}, apple.ID).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	_, total, err = repo.List(ListingListFilter{})
	if err != nil {
		t.Fatalf("list after product delete failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected listings of deleted product hidden, got %d", total)
	}
}

func TestInventorySoftDeleteByProduct(t *testing.T) {
	db := setupRepositoryTestDB(t)
	a := createTestUser(t, db, "a", constants.RoleSeller)
	b := createTestUser(t, db, "b", constants.RoleSeller)
	product := createTestProduct(t, db, "Shared")
	createTestListing(t, db, a.ID, product.ID, 1, "1.00")
	createTestListing(t, db, b.ID, product.ID, 1, "1.00")
	repo := NewInventoryRepository(db)

	affected, err := repo.SoftDeleteByProduct(product.ID)
	if err != nil {
		t.Fatalf("soft delete by product failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 listings hidden, got %d", affected)
	}
	existing, err := repo.GetBySellerAndProductForUpdate(a.ID, product.ID)
	if err != nil || existing == nil || !existing.IsDeleted {
		t.Fatalf("expected flagged listing to remain addressable: %+v err=%v", existing, err)
	}
}
