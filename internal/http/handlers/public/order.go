package public

import (
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Checkout 按卖家拆单结算购物车
func (h *Handler) Checkout(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}

	orders, err := h.OrderService.Checkout(c.Request.Context(), actor.UserID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// ListOrders 订单列表，买家看自己的购买，卖家看自己的销售
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)

	orders, total, err := h.OrderService.ListOrders(actor, service.OrderQuery{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, shared.BuildPagination(page, pageSize, total))
}

// OrderHistory 已结束的订单
func (h *Handler) OrderHistory(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)

	orders, total, err := h.OrderService.OrderHistory(actor, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, shared.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(actor, orderID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// MarkOrderDone 买家确认收货
func (h *Handler) MarkOrderDone(c *gin.Context) {
	h.transitionOrder(c, constants.OrderStatusDone)
}

// CancelOrder 买家取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	h.transitionOrder(c, constants.OrderStatusCancelled)
}

func (h *Handler) transitionOrder(c *gin.Context, status string) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.Transition(c.Request.Context(), orderID, status, actor)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
