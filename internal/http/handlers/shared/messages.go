package shared

import "fmt"

// messages 错误码文案表
var messages = map[string]string{
	"error.bad_request":            "invalid request",
	"error.unauthorized":           "unauthorized",
	"error.forbidden":              "forbidden",
	"error.internal":               "internal server error",
	"error.auth_header_missing":    "authorization header is missing",
	"error.auth_header_invalid":    "authorization header is malformed",
	"error.token_invalid":          "token is invalid",
	"error.token_revoked":          "token has been revoked",
	"error.jwt_secret_missing":     "jwt secret is not configured",
	"error.rate_limited":           "too many requests, retry in %d seconds",
	"error.login_too_many":         "too many login attempts, retry in %d seconds",
	"error.checkout_too_many":      "too many checkout attempts, retry in %d seconds",
	"error.rate_limit_unavailable": "rate limiter unavailable",
	"error.invalid_credentials":    "invalid username or password",
	"error.username_exists":        "username already exists",
	"error.username_invalid":       "username must be 3 to 64 characters",
	"error.password_weak":          "password does not meet the policy",
	"error.role_invalid":           "role must be buyer or seller",
	"error.order_not_found":        "order not found",
	"error.listing_not_found":      "listing not found",
	"error.cart_item_not_found":    "cart item not found",
	"error.product_not_found":      "product not found",
	"error.product_name_required":  "product name is required",
	"error.cart_empty":             "cart is empty",
	"error.insufficient_stock":     "insufficient stock",
	"error.invalid_transition":     "order status cannot change that way",
	"error.invalid_status":         "unknown order status",
	"error.invalid_quantity":       "invalid quantity",
	"error.invalid_price":          "invalid price",
	"error.concurrency_conflict":   "the resource is busy, please retry",
	"error.order_action_invalid":   "unknown order action",
	"error.id_invalid":             "invalid id",
}

// T 根据错误码返回文案，未登记的返回错误码本身
func T(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}

// Sprintf 带参数的文案
func Sprintf(key string, args ...interface{}) string {
	return fmt.Sprintf(T(key), args...)
}
