package reward

import (
	"coupon_market/internal/domain/reward/handler"
	"coupon_market/internal/domain/reward/service"
	userRepository "coupon_market/internal/domain/user/repository"
	walletRepository "coupon_market/internal/domain/wallet/repository"
	walletService "coupon_market/internal/domain/wallet/service"
	"coupon_market/internal/pkg/middleware"
	"coupon_market/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// RewardModule 奖励模块
type RewardModule struct{}

func init() {
	registry.Register(&RewardModule{})
}

func (m *RewardModule) Name() string {
	return "reward"
}

func (m *RewardModule) Priority() int {
	return 20
}

func (m *RewardModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	wallets := walletRepository.NewWalletRepository(ctx.DB)
	ledger := walletService.NewLedgerService(wallets, ctx.Redis)
	users := userRepository.NewUserRepository(ctx.DB)
	rewardService := service.NewRewardService(wallets, ledger, users, ctx.Redis)
	rewardHandler := handler.NewRewardHandler(rewardService)

	// 2. 路由注册
	setupRoutes(ctx.Router, rewardHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.RewardHandler) {
	g := r.Group("/rewards")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/scratch", h.Scratch)
		// 广告奖励核心不做冷却，这里挂上游限流
		g.POST("/ad", middleware.RewardRateLimitMiddleware(), h.AdReward)
		g.POST("/referral", h.ClaimReferral)
	}
}
