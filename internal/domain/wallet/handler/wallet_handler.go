package handler

import (
	"errors"
	"net/http"

	"coupon_market/internal/domain/wallet/service"
	"coupon_market/pkg/apperr"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/response"
	"coupon_market/pkg/utils"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service service.LedgerService
}

func NewWalletHandler(service service.LedgerService) *WalletHandler {
	return &WalletHandler{service: service}
}

// GetWallet 查询钱包
// @Summary 查询当前用户钱包（余额与刮卡冷却）
// @Tags Wallet
// @Produce json
// @Success 200 {object} response.Response
// @Router /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id, _ := identity.FromContext(c)

	wallet, err := h.service.GetWallet(id.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrWalletNotFound, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, wallet)
}

// BuyCreditsInput 充值请求
type BuyCreditsInput struct {
	AmountPaid    float64 `json:"amountPaid" binding:"required"`
	PaymentMethod string  `json:"paymentMethod" binding:"required"`
}

// BuyCredits 充值购买积分
// @Summary 按固定定价规则 (115 = 100 积分) 充值
// @Tags Wallet
// @Accept json
// @Produce json
// @Param input body BuyCreditsInput true "已确认的支付金额与方式"
// @Success 200 {object} response.Response
// @Router /wallet/credits [post]
func (h *WalletHandler) BuyCredits(c *gin.Context) {
	id, _ := identity.FromContext(c)

	var input BuyCreditsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	added, balance, err := h.service.BuyCredits(id.UserID, input.AmountPaid, input.PaymentMethod)
	if err != nil {
		// 金额不符合定价规则用钱包模块自己的业务码
		if errors.Is(err, apperr.ErrValidation) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidAmount, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"added": added, "credits": balance})
}

// GetTransactions 查询流水
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	id, _ := identity.FromContext(c)

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.GetHistory(id.UserID, &p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}
