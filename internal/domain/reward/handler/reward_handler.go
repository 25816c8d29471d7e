package handler

import (
	"errors"
	"net/http"

	"coupon_market/internal/domain/reward/service"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/response"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	service service.RewardService
}

func NewRewardHandler(service service.RewardService) *RewardHandler {
	return &RewardHandler{service: service}
}

// Scratch 刮卡
// @Summary 刮卡领奖，7 天一次
// @Tags Reward
// @Produce json
// @Success 200 {object} response.Response
// @Router /rewards/scratch [post]
func (h *RewardHandler) Scratch(c *gin.Context) {
	id, _ := identity.FromContext(c)

	result, err := h.service.ScratchCard(id.UserID)
	if err != nil {
		// 这里的 NotFound 只可能是钱包缺失
		if errors.Is(err, apperr.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrWalletNotFound, err.Error())
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// AdReward 广告奖励
func (h *RewardHandler) AdReward(c *gin.Context) {
	id, _ := identity.FromContext(c)

	balance, err := h.service.AdReward(id.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"newBalance": balance})
}

// ReferralInput 推荐码请求
type ReferralInput struct {
	ReferralCode string `json:"referralCode" binding:"required"`
}

// ClaimReferral 填推荐码，积分发给推荐人
func (h *RewardHandler) ClaimReferral(c *gin.Context) {
	id, _ := identity.FromContext(c)

	var input ReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ClaimReferral(id.UserID, input.ReferralCode); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"applied": true})
}
