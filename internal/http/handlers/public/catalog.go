package public

import (
	"strings"

	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品目录
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListProducts(search, page, pageSize)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, shared.BuildPagination(page, pageSize, total))
}

// ListListings 在售库存列表（走缓存）
func (h *Handler) ListListings(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	query := service.ListingQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	items, total, err := h.InventoryService.ListPublicListings(c.Request.Context(), query)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, shared.BuildPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetProduct(productID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}
