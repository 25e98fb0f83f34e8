package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bazaar-next/internal/authz"
	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/config"
	publichandlers "github.com/bazaar-next/internal/http/handlers/public"
	sellerhandlers "github.com/bazaar-next/internal/http/handlers/seller"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/provider"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按买家公共侧/卖家侧分组）
	publicHandler := publichandlers.New(c)
	sellerHandler := sellerhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bz"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		MessageKey:    "error.checkout_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group(apiPrefix)
	{
		// 注册登录
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)
		}

		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/listings", publicHandler.ListListings)
		}

		// 登录后接口，统一走 JWT + 角色权限
		authorized := apiV1.Group("")
		authorized.Use(UserJWTAuthMiddleware(c.AuthService), RoleRBACMiddleware(c.AuthzService))
		{
			// 购物车（买家）
			authorized.GET("/cart", publicHandler.GetCart)
			authorized.DELETE("/cart", publicHandler.ClearCart)
			authorized.POST("/cart/items", publicHandler.AddCartItem)
			authorized.PATCH("/cart/items/:id", publicHandler.UpdateCartItem)
			authorized.DELETE("/cart/items/:id", publicHandler.RemoveCartItem)

			// 结算（买家，按用户限流）
			authorized.POST("/checkout", RateLimitMiddleware(redisClient, checkoutRule, KeyByUser), publicHandler.Checkout)

			// 订单查询（买卖双方）
			authorized.GET("/orders", publicHandler.ListOrders)
			authorized.GET("/orders/history", publicHandler.OrderHistory)
			authorized.GET("/orders/:id", publicHandler.GetOrder)
			authorized.PATCH("/orders/:id/done", publicHandler.MarkOrderDone)
			authorized.PATCH("/orders/:id/cancel", publicHandler.CancelOrder)

			// 卖家
			seller := authorized.Group("/seller")
			{
				seller.GET("/listings", sellerHandler.ListListings)
				seller.POST("/listings", sellerHandler.CreateListing)
				seller.PUT("/listings/:id", sellerHandler.UpdateListing)
				seller.DELETE("/listings/:id", sellerHandler.DeleteListing)
				seller.POST("/products", sellerHandler.CreateProduct)
				seller.DELETE("/products/:id", sellerHandler.DeleteProduct)
				seller.PATCH("/orders/:id/:action", sellerHandler.TransitionOrder)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auditRoutePolicies(r, c.AuthzService)
	return r
}

// routePermission 一条需要鉴权的路由
type routePermission struct {
	Method string
	Object string
}

// protectedRoutes 列出需要登录的路由（排除注册登录、公开目录与健康检查）
func protectedRoutes(engine *gin.Engine) []routePermission {
	if engine == nil {
		return []routePermission{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]routePermission, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, apiPrefix+"/") {
			continue
		}
		if strings.HasPrefix(item.Path, apiPrefix+"/auth/") || strings.HasPrefix(item.Path, apiPrefix+"/public/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, routePermission{Method: method, Object: object})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Object == items[j].Object {
			return items[i].Method < items[j].Method
		}
		return items[i].Object < items[j].Object
	})
	return items
}

// auditRoutePolicies 启动时检查每条受保护路由至少有一个内置角色可访问，缺失时记录告警
func auditRoutePolicies(engine *gin.Engine, enforcer RoleEnforcer) []routePermission {
	if enforcer == nil {
		return nil
	}
	seeds := authz.BuiltinRoleSeeds()
	uncovered := make([]routePermission, 0)
	for _, route := range protectedRoutes(engine) {
		covered := false
		for _, seed := range seeds {
			allowed, err := enforcer.EnforceRole(seed.Role, route.Object, route.Method)
			if err == nil && allowed {
				covered = true
				break
			}
		}
		if !covered {
			uncovered = append(uncovered, route)
			logger.Warnw("router_route_without_policy", "method", route.Method, "object", route.Object)
		}
	}
	return uncovered
}
