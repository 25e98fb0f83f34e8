package public

import (
	"errors"
	"strings"
	"time"

	"github.com/bazaar-next/internal/http/handlers/shared"
	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse 用户信息
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

var authErrorRules = []shared.MappedError{
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrInvalidUsername, Code: response.CodeBadRequest, Key: "error.username_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrInvalidRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.AuthService.Register(service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		// 密码策略错误带有具体原因，直接返回给调用方
		if errors.Is(err, service.ErrWeakPassword) {
			response.Error(c, response.CodeBadRequest, err.Error())
			return
		}
		shared.RespondServiceError(c, err, authErrorRules...)
		return
	}
	response.Success(c, toUserResponse(user))
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err, authErrorRules...)
		return
	}
	response.Success(c, LoginResponse{
		User:      toUserResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
