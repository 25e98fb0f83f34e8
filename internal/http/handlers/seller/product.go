package seller

import (
	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProductRequest 新建目录商品请求
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// CreateProduct 新建目录商品
func (h *Handler) CreateProduct(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	product, err := h.ProductService.CreateProduct(service.CreateProductInput{
		Name:        req.Name,
		Image:       req.Image,
		Description: req.Description,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品，同时下架所有对应库存
func (h *Handler) DeleteProduct(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.DeleteProduct(c.Request.Context(), actor.UserID, productID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
