package main

import (
	"context"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/provider"
	"github.com/bazaar-next/internal/service"

	"github.com/shopspring/decimal"
)

const seedPassword = "password123"

type seedListing struct {
	Product     string
	Description string
	Quantity    int
	Price       string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(models.DBOptions{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		LogLevel: cfg.Database.LogLevel,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示数据不需要队列
	cfg.Queue.Enabled = false
	container, err := provider.NewContainer(cfg, models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to build container: %v", err)
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()
	sellers := map[string][]seedListing{
		"alice_shop": {
			{Product: "Desk Lamp", Description: "Warm light LED lamp", Quantity: 12, Price: "24.90"},
			{Product: "Notebook", Description: "A5 dotted notebook", Quantity: 40, Price: "6.50"},
		},
		"bob_store": {
			{Product: "Desk Lamp", Description: "Warm light LED lamp", Quantity: 5, Price: "22.00"},
			{Product: "Mechanical Keyboard", Description: "87 keys, brown switches", Quantity: 3, Price: "89.00"},
		},
	}

	products := map[string]*models.Product{}
	for sellerName, listings := range sellers {
		seller := ensureUser(container, sellerName, constants.RoleSeller)
		if seller == nil {
			continue
		}
		for _, item := range listings {
			product := products[item.Product]
			if product == nil {
				product, err = findOrCreateProduct(container, item, seller.ID)
				if err != nil {
					stdLog.Printf("Failed to create product %s: %v", item.Product, err)
					continue
				}
				products[item.Product] = product
			}
			price, err := decimal.NewFromString(item.Price)
			if err != nil {
				stdLog.Printf("Invalid price %s: %v", item.Price, err)
				continue
			}
			listing, err := container.InventoryService.AddListing(ctx, service.UpsertListingInput{
				SellerID:  seller.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: models.NewMoney(price),
			})
			if err != nil {
				stdLog.Printf("Failed to list %s for %s: %v", item.Product, sellerName, err)
				continue
			}
			stdLog.Printf("Listed %s by %s: id=%d qty=%d price=%s", item.Product, sellerName, listing.ID, listing.Quantity, listing.UnitPrice)
		}
	}

	for _, buyerName := range []string{"carol", "dave"} {
		ensureUser(container, buyerName, constants.RoleBuyer)
	}
	stdLog.Printf("Seed completed, demo password: %s", seedPassword)
}

func ensureUser(c *provider.Container, username, role string) *models.User {
	stdLog := logger.StdLogger()
	existing, err := c.UserRepo.GetByUsername(username)
	if err != nil {
		stdLog.Printf("Failed to load user %s: %v", username, err)
		return nil
	}
	if existing != nil {
		stdLog.Printf("User already exists: %s", username)
		return existing
	}
	user, err := c.AuthService.Register(service.RegisterInput{
		Username: username,
		Password: seedPassword,
		Role:     role,
	})
	if err != nil {
		stdLog.Printf("Failed to create user %s: %v", username, err)
		return nil
	}
	stdLog.Printf("Created %s: %s", role, username)
	return user
}

func findOrCreateProduct(c *provider.Container, item seedListing, creatorID uint) (*models.Product, error) {
	existing, _, err := c.ProductService.ListProducts(item.Product, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && existing[0].Name == item.Product {
		return &existing[0], nil
	}
	return c.ProductService.CreateProduct(service.CreateProductInput{
		Name:        item.Product,
		Description: item.Description,
		CreatedBy:   creatorID,
	})
}
