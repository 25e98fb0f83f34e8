package public

import (
	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ListingID uint `json:"listing_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 修改购物车数量请求，数量为 0 时删除该行
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	view, err := h.CartService.List(actor.UserID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车，已存在时累加数量
func (h *Handler) AddCartItem(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	item, err := h.CartService.AddItem(c.Request.Context(), actor.UserID, req.ListingID, req.Quantity)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateCartItem 设置购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	itemID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	item, err := h.CartService.SetQuantity(actor.UserID, itemID, *req.Quantity)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	// 数量为 0 时该行已删除，返回 null
	response.Success(c, item)
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	itemID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(actor.UserID, itemID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(actor.UserID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
