package seller

import (
	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// sellerOrderActions 卖家订单动作到目标状态的映射
var sellerOrderActions = map[string]string{
	"confirm": constants.OrderStatusConfirmed,
	"reject":  constants.OrderStatusCancelled,
	"ready":   constants.OrderStatusReady,
	"cancel":  constants.OrderStatusCancelled,
}

// TransitionOrder 卖家推进订单状态（confirm / reject / ready / cancel）
func (h *Handler) TransitionOrder(c *gin.Context) {
	actor, ok := shared.CurrentActor(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	status, ok := sellerOrderActions[c.Param("action")]
	if !ok {
		shared.RespondError(c, response.CodeBadRequest, "error.order_action_invalid", nil)
		return
	}

	order, err := h.OrderService.Transition(c.Request.Context(), orderID, status, actor)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
