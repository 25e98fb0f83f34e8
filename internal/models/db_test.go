package models

import (
	"fmt"
	"testing"
	"time"
)

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB(DBOptions{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	dsn := fmt.Sprintf("file:models_migrate_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := OpenDB(DBOptions{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"users", "products", "inventory_listings", "cart_items", "orders", "order_items"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	if !db.Migrator().HasIndex(&InventoryListing{}, "idx_listing_seller_product") {
		t.Fatalf("expected unique index on seller/product")
	}
}

func TestApplyDBPoolKeepsIdleDefaultWhenUnset(t *testing.T) {
	dsn := fmt.Sprintf("file:models_pool_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := OpenDB(DBOptions{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	if err := db.Exec("CREATE TABLE pool_keepalive (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	// 零值配置不应关闭空闲连接，否则共享内存库会在语句间被销毁
	if !db.Migrator().HasTable("pool_keepalive") {
		t.Fatalf("table vanished between statements, idle=%d", sqlDB.Stats().Idle)
	}
}
