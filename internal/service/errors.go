package service

import (
	"errors"
	"fmt"

	"github.com/bazaar-next/internal/repository"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrForbidden           = errors.New("forbidden")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidProductName = errors.New("product name is required")
)

// InsufficientStockError 库存不足，携带具体库存信息
type InsufficientStockError struct {
	ListingID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for listing %d: requested %d, available %d", e.ListingID, e.Requested, e.Available)
}

// Is 使 errors.Is(err, ErrInsufficientStock) 成立
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// classifyStorageError 将驱动层死锁/锁等待超时归类为可重试冲突
func classifyStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConcurrencyConflict) {
		return err
	}
	if repository.IsConcurrencyConflict(err) {
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	}
	return err
}
