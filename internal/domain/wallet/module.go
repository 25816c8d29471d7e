package wallet

import (
	"coupon_market/internal/domain/wallet/handler"
	"coupon_market/internal/domain/wallet/repository"
	"coupon_market/internal/domain/wallet/service"
	"coupon_market/internal/pkg/middleware"
	"coupon_market/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// WalletModule 钱包/账本模块
type WalletModule struct{}

func init() {
	registry.Register(&WalletModule{})
}

func (m *WalletModule) Name() string {
	return "wallet"
}

func (m *WalletModule) Priority() int {
	// 账本是最底层的域，优先初始化
	return 1
}

func (m *WalletModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewWalletRepository(ctx.DB)
	ledger := service.NewLedgerService(repo, ctx.Redis)
	h := handler.NewWalletHandler(ledger)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.WalletHandler) {
	g := r.Group("/wallet")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.GetWallet)
		g.POST("/credits", h.BuyCredits)
		g.GET("/transactions", h.GetTransactions)
	}
}
