package shared

import (
	"strconv"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return 0, false
	}
}

// CurrentActor 读取当前登录用户
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := GetContextUint(c, UserIDKey)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: c.GetString(UserRoleKey)}, true
}

// ParamUint 解析路径中的 ID 参数
func ParamUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}
