package user

import (
	"coupon_market/internal/domain/user/handler"
	"coupon_market/internal/domain/user/repository"
	"coupon_market/internal/domain/user/service"
	walletRepository "coupon_market/internal/domain/wallet/repository"
	walletService "coupon_market/internal/domain/wallet/service"
	"coupon_market/internal/pkg/middleware"
	"coupon_market/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	return 2
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入（注册时要建钱包，依赖账本服务）
	userRepo := repository.NewUserRepository(ctx.DB)
	ledger := walletService.NewLedgerService(walletRepository.NewWalletRepository(ctx.DB), ctx.Redis)
	userService := service.NewUserService(userRepo, ledger)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.LoginOrRegister)
	}

	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.GET("/me", h.GetProfile)
	}
}
