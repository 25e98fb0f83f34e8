package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respond(t *testing.T, err error, extra ...MappedError) (int, string, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	RespondServiceError(c, err, extra...)

	var resp struct {
		StatusCode int                    `json:"status_code"`
		Msg        string                 `json:"msg"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.Msg, resp.Data
}

func TestRespondServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrOrderNotFound, 404},
		{fmt.Errorf("load: %w", service.ErrListingNotFound), 404},
		{service.ErrForbidden, 403},
		{service.ErrEmptyCart, 400},
		{service.ErrInvalidTransition, 409},
		{service.ErrConcurrencyConflict, 409},
		{errors.New("disk on fire"), 500},
	}
	for _, tc := range cases {
		if code, _, _ := respond(t, tc.err); code != tc.code {
			t.Fatalf("%v: code want %d got %d", tc.err, tc.code, code)
		}
	}
}

func TestRespondServiceErrorInsufficientStock(t *testing.T) {
	err := fmt.Errorf("checkout: %w", &service.InsufficientStockError{ListingID: 3, Requested: 5, Available: 2})
	code, msg, data := respond(t, err)
	if code != 409 || msg != T("error.insufficient_stock") {
		t.Fatalf("unexpected response %d %s", code, msg)
	}
	if data["listing_id"] != float64(3) || data["requested"] != float64(5) || data["available"] != float64(2) {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestRespondServiceErrorExtraRulesFirst(t *testing.T) {
	custom := errors.New("custom")
	code, _, _ := respond(t, custom, MappedError{Target: custom, Code: 429, Key: "error.rate_limited"})
	if code != 429 {
		t.Fatalf("extra rule should apply, got %d", code)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.Total != 41 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	if page, size := NormalizePagination(0, 500); page != 1 || size != 100 {
		t.Fatalf("normalize want 1/100 got %d/%d", page, size)
	}
}
