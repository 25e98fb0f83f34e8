package provider

import (
	"fmt"
	"time"

	"github.com/bazaar-next/internal/authz"
	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/queue"
	"github.com/bazaar-next/internal/repository"
	"github.com/bazaar-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	UserRepo      repository.UserRepository
	ProductRepo   repository.ProductRepository
	InventoryRepo repository.InventoryRepository
	CartRepo      repository.CartRepository
	OrderRepo     repository.OrderRepository

	// Services
	AuthzService     *authz.Service
	AuthService      *service.AuthService
	ProductService   *service.ProductService
	InventoryService *service.InventoryService
	CartService      *service.CartService
	OrderService     *service.OrderService
}

// NewContainer 初始化容器；db 为空时使用 models.DB
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if db == nil {
		db = models.DB
	}
	if db == nil {
		return nil, fmt.Errorf("database is not initialized")
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.ProductRepo = repository.NewProductRepository(c.DB)
	c.InventoryRepo = repository.NewInventoryRepository(c.DB)
	c.CartRepo = repository.NewCartRepository(c.DB)
	c.OrderRepo = repository.NewOrderRepository(c.DB)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	retry := service.RetryPolicyFromConfig(c.Config.Order.Retry)
	listingTTL := time.Duration(c.Config.Cache.ListingTTLSeconds) * time.Second

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.InventoryRepo)
	c.InventoryService = service.NewInventoryService(c.InventoryRepo, c.ProductRepo, retry, listingTTL)
	c.CartService = service.NewCartService(c.CartRepo, c.InventoryRepo, retry)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.InventoryRepo, c.QueueClient, service.OrderServiceOptions{
		StaleAfter:         c.Config.Order.AutoCancelAfter(),
		SweepBatchSize:     c.Config.Order.SweepBatchSize,
		Retry:              retry,
		TimeoutTaskEnabled: c.Config.Order.TimeoutTaskEnabled,
	})
	return nil
}

// Close 释放容器持有的外部连接
func (c *Container) Close() error {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	return cache.Close()
}
