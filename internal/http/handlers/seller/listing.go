package seller

import (
	"strings"

	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateListingRequest 上架请求；同一商品重复上架时覆盖数量与价格
type CreateListingRequest struct {
	ProductID uint         `json:"product_id" binding:"required"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// UpdateListingRequest 修改库存请求
type UpdateListingRequest struct {
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// ListListings 当前卖家的库存
func (h *Handler) ListListings(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)

	items, total, err := h.InventoryService.ListListings(service.ListingQuery{
		SellerID: actor.UserID,
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, shared.BuildPagination(page, pageSize, total))
}

// CreateListing 上架库存
func (h *Handler) CreateListing(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	listing, err := h.InventoryService.AddListing(c.Request.Context(), service.UpsertListingInput{
		SellerID:  actor.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, listing)
}

// UpdateListing 修改库存数量与价格
func (h *Handler) UpdateListing(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	listingID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	listing, err := h.InventoryService.UpdateListing(c.Request.Context(), actor.UserID, listingID, req.Quantity, req.UnitPrice)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, listing)
}

// DeleteListing 下架库存
func (h *Handler) DeleteListing(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	listingID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.InventoryService.DeleteListing(c.Request.Context(), actor.UserID, listingID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
