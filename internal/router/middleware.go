package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bazaar-next/internal/authz"
	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_id", c.GetUint(shared.UserIDKey),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// TokenVerifier 解析并校验用户令牌
type TokenVerifier interface {
	ParseJWT(tokenString string) (*service.JWTClaims, error)
	VerifyClaims(ctx context.Context, claims *service.JWTClaims) error
}

// RoleEnforcer 按角色判定接口权限
type RoleEnforcer interface {
	EnforceRole(role, obj, act string) (bool, error)
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件
// 令牌中的角色与版本需与当前用户状态一致，用户改角色或注销后旧令牌立即失效
func UserJWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			abortWithError(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortWithError(c, response.CodeUnauthorized, "error.auth_header_missing")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, response.CodeUnauthorized, "error.auth_header_invalid")
			return
		}

		claims, err := verifier.ParseJWT(strings.TrimSpace(parts[1]))
		if err != nil {
			abortWithError(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		if err := verifier.VerifyClaims(c.Request.Context(), claims); err != nil {
			if !errors.Is(err, service.ErrTokenRevoked) {
				logger.Warnw("user_token_verify_failed", "user_id", claims.UserID, "error", err)
			}
			abortWithError(c, response.CodeUnauthorized, "error.token_revoked")
			return
		}

		c.Set(shared.UserIDKey, claims.UserID)
		c.Set(shared.UserRoleKey, claims.Role)
		c.Next()
	}
}

// RoleRBACMiddleware 基于 casbin 的角色权限中间件，需挂在 UserJWTAuthMiddleware 之后
func RoleRBACMiddleware(enforcer RoleEnforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforcer == nil {
			logger.Errorw("rbac_service_unavailable")
			abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		role := strings.TrimSpace(c.GetString(shared.UserRoleKey))
		if role == "" {
			abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := enforcer.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortWithError(c, response.CodeForbidden, "error.forbidden")
			return
		}
		if !allowed {
			logger.Warnw("rbac_permission_denied",
				"user_id", c.GetUint(shared.UserIDKey),
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortWithError(c, response.CodeForbidden, "error.forbidden")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, code int, key string) {
	response.Error(c, code, shared.T(key))
	c.Abort()
}
