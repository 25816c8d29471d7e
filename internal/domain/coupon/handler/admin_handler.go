package handler

import (
	"coupon_market/internal/domain/coupon/service"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// GetStats 平台统计
func (h *AdminHandler) GetStats(c *gin.Context) {
	id, _ := identity.FromContext(c)

	stats, err := h.service.GetStats(id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, stats)
}

// PendingCoupons 待审核队列
func (h *AdminHandler) PendingCoupons(c *gin.Context) {
	id, _ := identity.FromContext(c)

	items, err := h.service.PendingCoupons(id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, items)
}

// ApproveCoupon 审核通过并上架
func (h *AdminHandler) ApproveCoupon(c *gin.Context) {
	id, _ := identity.FromContext(c)

	coupon, err := h.service.Approve(id, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupon)
}

// RejectCoupon 拒绝并删除
func (h *AdminHandler) RejectCoupon(c *gin.Context) {
	id, _ := identity.FromContext(c)

	if err := h.service.Reject(id, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": c.Param("id")})
}
