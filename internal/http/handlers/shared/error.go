package shared

import (
	"errors"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, T(key), err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithData 返回带附加数据的错误响应。
func RespondErrorWithData(c *gin.Context, code int, key string, data gin.H) {
	response.ErrorWithData(c, code, T(key), data)
}

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// ServiceErrorRules 服务层通用错误映射
var ServiceErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrListingNotFound, Code: response.CodeNotFound, Key: "error.listing_not_found"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrInvalidTransition, Code: response.CodeConflict, Key: "error.invalid_transition"},
	{Target: service.ErrConcurrencyConflict, Code: response.CodeConflict, Key: "error.concurrency_conflict"},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.invalid_quantity"},
	{Target: service.ErrInvalidPrice, Code: response.CodeBadRequest, Key: "error.invalid_price"},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Key: "error.invalid_status"},
	{Target: service.ErrInvalidRole, Code: response.CodeForbidden, Key: "error.role_invalid"},
	{Target: service.ErrInvalidProductName, Code: response.CodeBadRequest, Key: "error.product_name_required"},
}

// RespondServiceError 按映射表返回错误；库存不足时附带具体库存信息，未映射的错误按 500 处理
func RespondServiceError(c *gin.Context, err error, extra ...MappedError) {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		RespondErrorWithData(c, response.CodeConflict, "error.insufficient_stock", gin.H{
			"listing_id": stockErr.ListingID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
		return
	}
	for _, rules := range [][]MappedError{extra, ServiceErrorRules} {
		for _, rule := range rules {
			if errors.Is(err, rule.Target) {
				RespondError(c, rule.Code, rule.Key, nil)
				return
			}
		}
	}
	RespondError(c, response.CodeInternal, "error.internal", err)
}
