package response

import (
	"errors"
	"net/http"

	"coupon_market/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// errorMapping 业务错误到 HTTP 状态码与业务码的默认映射表
// NotFound 的默认业务码给优惠券（产生它的主要路径）；
// 钱包/用户查询的 handler 在调 FromError 前用各自模块的业务码先行分支
var errorMapping = []struct {
	sentinel error
	httpCode int
	bizCode  int
}{
	{apperr.ErrValidation, http.StatusBadRequest, ErrInvalidParam},
	{apperr.ErrOwnership, http.StatusForbidden, ErrNotOwner},
	{apperr.ErrNotFound, http.StatusNotFound, ErrCouponNotFound},
	{apperr.ErrInvalidTransition, http.StatusConflict, ErrInvalidTransition},
	{apperr.ErrInsufficientFunds, http.StatusBadRequest, ErrInsufficientFunds},
	{apperr.ErrNotAvailable, http.StatusConflict, ErrCouponNotAvailable},
	{apperr.ErrSelfTrade, http.StatusBadRequest, ErrSelfTrade},
	{apperr.ErrSelfReferral, http.StatusBadRequest, ErrSelfReferral},
	{apperr.ErrTooSoon, http.StatusBadRequest, ErrRewardTooSoon},
	{apperr.ErrInvalidCode, http.StatusNotFound, ErrInvalidReferral},
	{apperr.ErrPermissionDenied, http.StatusForbidden, ErrNoPermission},
}

// FromError 将服务层错误映射为统一响应
// 未识别的错误一律按内部错误处理，不泄露存储细节
func FromError(c *gin.Context, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.sentinel) {
			Error(c, m.httpCode, m.bizCode, err.Error())
			return
		}
	}
	Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
}
