package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coupon_market/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func record(err error) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, err)

	var body Response
	if jsonErr := json.Unmarshal(w.Body.Bytes(), &body); jsonErr != nil {
		panic(jsonErr)
	}
	return w, body
}

func TestFromError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		httpCode int
		bizCode  int
	}{
		{"validation", fmt.Errorf("price must be positive: %w", apperr.ErrValidation), http.StatusBadRequest, ErrInvalidParam},
		{"ownership", fmt.Errorf("not yours: %w", apperr.ErrOwnership), http.StatusForbidden, ErrNotOwner},
		{"not found", fmt.Errorf("coupon c1: %w", apperr.ErrNotFound), http.StatusNotFound, ErrCouponNotFound},
		{"invalid transition", fmt.Errorf("coupon is wallet: %w", apperr.ErrInvalidTransition), http.StatusConflict, ErrInvalidTransition},
		{"insufficient funds", apperr.ErrInsufficientFunds, http.StatusBadRequest, ErrInsufficientFunds},
		{"not available", apperr.ErrNotAvailable, http.StatusConflict, ErrCouponNotAvailable},
		{"self trade", apperr.ErrSelfTrade, http.StatusBadRequest, ErrSelfTrade},
		{"too soon with remaining", apperr.NewTooSoon(36 * time.Hour), http.StatusBadRequest, ErrRewardTooSoon},
		{"invalid referral code", apperr.ErrInvalidCode, http.StatusNotFound, ErrInvalidReferral},
		{"permission denied", apperr.ErrPermissionDenied, http.StatusForbidden, ErrNoPermission},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := record(tc.err)
			assert.Equal(t, tc.httpCode, w.Code)
			assert.Equal(t, tc.bizCode, body.Code)
		})
	}

	t.Run("unknown error hides details", func(t *testing.T) {
		w, body := record(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, ErrServerInternal, body.Code)
		assert.Equal(t, "internal server error", body.Message)
	})

	t.Run("wrapped internal error hides details", func(t *testing.T) {
		w, body := record(apperr.Internal(errors.New("pq: duplicate key")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, ErrServerInternal, body.Code)
		assert.NotContains(t, body.Message, "duplicate key")
	})
}
