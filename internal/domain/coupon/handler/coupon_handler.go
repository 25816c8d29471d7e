package handler

import (
	"net/http"
	"time"

	"coupon_market/internal/domain/coupon/service"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/response"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	service service.CouponService
	trade   service.TradeService
}

func NewCouponHandler(service service.CouponService, trade service.TradeService) *CouponHandler {
	return &CouponHandler{service: service, trade: trade}
}

// RegisterCouponInput 登记优惠券请求
type RegisterCouponInput struct {
	Brand      string    `json:"brand" binding:"required"`
	Code       string    `json:"code" binding:"required"`
	ExpiryDate time.Time `json:"expiryDate" binding:"required"`
}

// RegisterCoupon 把券登记到自己的钱包
func (h *CouponHandler) RegisterCoupon(c *gin.Context) {
	id, _ := identity.FromContext(c)

	var input RegisterCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupon, err := h.service.RegisterToWallet(id.UserID, input.Brand, input.Code, input.ExpiryDate)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupon)
}

// SellCouponInput 挂单请求
type SellCouponInput struct {
	Price int `json:"price" binding:"required,min=1"`
}

// SellCoupon 挂单出售（进入待审核）
func (h *CouponHandler) SellCoupon(c *gin.Context) {
	id, _ := identity.FromContext(c)
	couponID := c.Param("id")

	var input SellCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupon, err := h.service.ListForSale(couponID, id.UserID, input.Price)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupon)
}

// BuyCoupon 购买上架中的券
// @Summary 购买一张市场上架的优惠券
// @Tags Coupon
// @Produce json
// @Param id path string true "Coupon ID"
// @Success 200 {object} response.Response
// @Router /coupons/{id}/buy [post]
func (h *CouponHandler) BuyCoupon(c *gin.Context) {
	id, _ := identity.FromContext(c)
	couponID := c.Param("id")

	coupon, err := h.trade.Buy(couponID, id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupon)
}

// Marketplace 市场列表（公开）
func (h *CouponHandler) Marketplace(c *gin.Context) {
	items, err := h.service.Marketplace()
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, items)
}

// MyCoupons 我持有的券
func (h *CouponHandler) MyCoupons(c *gin.Context) {
	id, _ := identity.FromContext(c)

	coupons, err := h.service.MyCoupons(id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupons)
}
