package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bazaar-next/internal/constants"
)

func TestListOrdersScopesByRole(t *testing.T) {
	env := setupServiceTest(t)
	now := time.Now()
	s1 := env.user(t, "seller_one", constants.RoleSeller)
	s2 := env.user(t, "seller_two", constants.RoleSeller)
	b1 := env.user(t, "buyer_one", constants.RoleBuyer)
	b2 := env.user(t, "buyer_two", constants.RoleBuyer)

	env.seedOrder(t, b1.ID, s1.ID, constants.OrderStatusPending, now)
	env.seedOrder(t, b1.ID, s2.ID, constants.OrderStatusDone, now)
	env.seedOrder(t, b2.ID, s1.ID, constants.OrderStatusCancelled, now)

	orders, total, err := env.orders.ListOrders(Actor{UserID: s1.ID, Role: constants.RoleSeller}, OrderQuery{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list seller orders failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("seller one should see 2 orders, got total=%d len=%d", total, len(orders))
	}
	for _, order := range orders {
		if order.SellerID != s1.ID {
			t.Fatalf("seller saw foreign order %d", order.ID)
		}
	}

	orders, total, err = env.orders.ListOrders(Actor{UserID: b1.ID, Role: constants.RoleBuyer}, OrderQuery{Status: "pending", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list buyer orders failed: %v", err)
	}
	if total != 1 || orders[0].Status != constants.OrderStatusPending {
		t.Fatalf("buyer pending filter mismatch: total=%d", total)
	}

	if _, _, err := env.orders.ListOrders(Actor{UserID: b1.ID, Role: constants.RoleBuyer}, OrderQuery{Status: "lost"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, _, err := env.orders.ListOrders(Actor{UserID: b1.ID, Role: "admin"}, OrderQuery{}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestOrderHistoryReturnsTerminalOnly(t *testing.T) {
	env := setupServiceTest(t)
	now := time.Now()
	seller := env.user(t, "seller", constants.RoleSeller)
	buyer := env.user(t, "buyer", constants.RoleBuyer)
	env.seedOrder(t, buyer.ID, seller.ID, constants.OrderStatusPending, now)
	env.seedOrder(t, buyer.ID, seller.ID, constants.OrderStatusReady, now)
	env.seedOrder(t, buyer.ID, seller.ID, constants.OrderStatusDone, now)
	env.seedOrder(t, buyer.ID, seller.ID, constants.OrderStatusAutoCancelled, now)

	orders, total, err := env.orders.OrderHistory(Actor{UserID: buyer.ID, Role: constants.RoleBuyer}, 1, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 terminal orders, got %d", total)
	}
	for _, order := range orders {
		if !IsTerminalStatus(order.Status) {
			t.Fatalf("history contains non-terminal order %d (%s)", order.ID, order.Status)
		}
	}
}

func TestGetOrderRequiresParty(t *testing.T) {
	env := setupServiceTest(t)
	seller := env.user(t, "seller", constants.RoleSeller)
	buyer := env.user(t, "buyer", constants.RoleBuyer)
	stranger := env.user(t, "stranger", constants.RoleBuyer)
	order := env.seedOrder(t, buyer.ID, seller.ID, constants.OrderStatusPending, time.Now())

	if _, err := env.orders.GetOrder(Actor{UserID: seller.ID, Role: constants.RoleSeller}, order.ID); err != nil {
		t.Fatalf("seller should read order: %v", err)
	}
	if _, err := env.orders.GetOrder(Actor{UserID: stranger.ID, Role: constants.RoleBuyer}, order.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.orders.GetOrder(Actor{UserID: buyer.ID, Role: constants.RoleBuyer}, 999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
