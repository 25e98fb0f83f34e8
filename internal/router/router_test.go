package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func setupRouterTest(t *testing.T) (*apiClient, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{SecretKey: "router-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("build container failed: %v", err)
	}
	return &apiClient{t: t, engine: SetupRouter(cfg, container)}, container
}

func (a *apiClient) do(method, path, token string, body interface{}) apiResponse {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		a.t.Fatalf("%s %s: http status %d body %s", method, path, w.Code, w.Body.String())
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		a.t.Fatalf("%s %s: decode failed: %v (%s)", method, path, err, w.Body.String())
	}
	return resp
}

func (a *apiClient) mustOK(method, path, token string, body interface{}, dest interface{}) apiResponse {
	a.t.Helper()
	resp := a.do(method, path, token, body)
	if resp.StatusCode != 0 {
		a.t.Fatalf("%s %s: status_code %d msg %s", method, path, resp.StatusCode, resp.Msg)
	}
	if dest != nil {
		if err := json.Unmarshal(resp.Data, dest); err != nil {
			a.t.Fatalf("%s %s: decode data failed: %v", method, path, err)
		}
	}
	return resp
}

func (a *apiClient) registerAndLogin(username, role string) string {
	a.t.Helper()
	a.mustOK(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"password": "password1",
		"role":     role,
	}, nil)
	var login struct {
		Token string `json:"token"`
	}
	a.mustOK(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "password1",
	}, &login)
	if login.Token == "" {
		a.t.Fatalf("login for %s returned empty token", username)
	}
	return login.Token
}

func TestMarketplaceFlowOverHTTP(t *testing.T) {
	api, _ := setupRouterTest(t)
	sellerToken := api.registerAndLogin("seller1", "seller")
	buyerToken := api.registerAndLogin("buyer1", "buyer")

	var product struct {
		ID uint `json:"id"`
	}
	api.mustOK(http.MethodPost, "/api/v1/seller/products", sellerToken, gin.H{"name": "Desk Lamp"}, &product)

	var listing struct {
		ID uint `json:"id"`
	}
	api.mustOK(http.MethodPost, "/api/v1/seller/listings", sellerToken, gin.H{
		"product_id": product.ID,
		"quantity":   3,
		"unit_price": "9.99",
	}, &listing)

	publicResp := api.mustOK(http.MethodGet, "/api/v1/public/listings", "", nil, nil)
	if publicResp.Pagination.Total != 1 {
		t.Fatalf("public listings total want 1 got %d", publicResp.Pagination.Total)
	}

	api.mustOK(http.MethodPost, "/api/v1/cart/items", buyerToken, gin.H{"listing_id": listing.ID, "quantity": 2}, nil)

	var checkout struct {
		Orders []struct {
			ID          uint   `json:"id"`
			Status      string `json:"status"`
			TotalAmount string `json:"total_amount"`
		} `json:"orders"`
	}
	api.mustOK(http.MethodPost, "/api/v1/checkout", buyerToken, nil, &checkout)
	if len(checkout.Orders) != 1 {
		t.Fatalf("checkout orders want 1 got %d", len(checkout.Orders))
	}
	order := checkout.Orders[0]
	if order.Status != "PENDING" || order.TotalAmount != "19.98" {
		t.Fatalf("unexpected order: %+v", order)
	}

	var cart struct {
		Items []json.RawMessage `json:"items"`
	}
	api.mustOK(http.MethodGet, "/api/v1/cart", buyerToken, nil, &cart)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(cart.Items))
	}

	orderPath := fmt.Sprintf("/api/v1/seller/orders/%d", order.ID)
	var status struct {
		Status string `json:"status"`
	}
	api.mustOK(http.MethodPatch, orderPath+"/confirm", sellerToken, nil, &status)
	if status.Status != "CONFIRMED" {
		t.Fatalf("status want CONFIRMED got %s", status.Status)
	}
	api.mustOK(http.MethodPatch, orderPath+"/ready", sellerToken, nil, &status)
	api.mustOK(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/done", order.ID), buyerToken, nil, &status)
	if status.Status != "DONE" {
		t.Fatalf("status want DONE got %s", status.Status)
	}

	history := api.mustOK(http.MethodGet, "/api/v1/orders/history", sellerToken, nil, nil)
	if history.Pagination.Total != 1 {
		t.Fatalf("seller history total want 1 got %d", history.Pagination.Total)
	}

	// 终态订单不可再取消
	resp := api.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/cancel", order.ID), buyerToken, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("cancel done order want 409 got %d", resp.StatusCode)
	}
}

func TestRouteAccessControl(t *testing.T) {
	api, container := setupRouterTest(t)
	sellerToken := api.registerAndLogin("seller2", "seller")
	buyerToken := api.registerAndLogin("buyer2", "buyer")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "anonymous cart", method: http.MethodGet, path: "/api/v1/cart", want: 401},
		{name: "buyer seller listings", method: http.MethodGet, path: "/api/v1/seller/listings", token: buyerToken, want: 403},
		{name: "seller checkout", method: http.MethodPost, path: "/api/v1/checkout", token: sellerToken, want: 403},
		{name: "seller marks done", method: http.MethodPatch, path: "/api/v1/orders/1/done", token: sellerToken, want: 403},
		{name: "buyer seller action", method: http.MethodPatch, path: "/api/v1/seller/orders/1/confirm", token: buyerToken, want: 403},
		{name: "buyer empty checkout", method: http.MethodPost, path: "/api/v1/checkout", token: buyerToken, want: 400},
		{name: "seller orders", method: http.MethodGet, path: "/api/v1/orders", token: sellerToken, want: 0},
		{name: "unknown action", method: http.MethodPatch, path: "/api/v1/seller/orders/1/ship", token: sellerToken, want: 400},
		{name: "missing order", method: http.MethodGet, path: "/api/v1/orders/999", token: buyerToken, want: 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := api.do(tc.method, tc.path, tc.token, nil)
			if resp.StatusCode != tc.want {
				t.Fatalf("status_code want %d got %d (%s)", tc.want, resp.StatusCode, resp.Msg)
			}
		})
	}

	if uncovered := auditRoutePolicies(api.engine, container.AuthzService); len(uncovered) != 0 {
		t.Fatalf("routes without policy: %+v", uncovered)
	}
}

func TestInsufficientStockResponseCarriesDetails(t *testing.T) {
	api, _ := setupRouterTest(t)
	sellerToken := api.registerAndLogin("seller3", "seller")
	buyerToken := api.registerAndLogin("buyer3", "buyer")

	var product struct {
		ID uint `json:"id"`
	}
	api.mustOK(http.MethodPost, "/api/v1/seller/products", sellerToken, gin.H{"name": "Chair"}, &product)
	var listing struct {
		ID uint `json:"id"`
	}
	api.mustOK(http.MethodPost, "/api/v1/seller/listings", sellerToken, gin.H{
		"product_id": product.ID,
		"quantity":   5,
		"unit_price": 20,
	}, &listing)
	api.mustOK(http.MethodPost, "/api/v1/cart/items", buyerToken, gin.H{"listing_id": listing.ID, "quantity": 4}, nil)
	api.mustOK(http.MethodPut, fmt.Sprintf("/api/v1/seller/listings/%d", listing.ID), sellerToken, gin.H{
		"quantity":   1,
		"unit_price": 20,
	}, nil)

	resp := api.do(http.MethodPost, "/api/v1/checkout", buyerToken, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("status_code want 409 got %d", resp.StatusCode)
	}
	var detail struct {
		ListingID uint `json:"listing_id"`
		Requested int  `json:"requested"`
		Available int  `json:"available"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("decode detail failed: %v", err)
	}
	if detail.ListingID != listing.ID || detail.Requested != 4 || detail.Available != 1 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}
