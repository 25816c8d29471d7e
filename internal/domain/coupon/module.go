package coupon

import (
	"coupon_market/internal/domain/coupon/handler"
	"coupon_market/internal/domain/coupon/repository"
	"coupon_market/internal/domain/coupon/service"
	userRepository "coupon_market/internal/domain/user/repository"
	"coupon_market/internal/pkg/middleware"
	"coupon_market/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CouponModule 优惠券模块：登记、挂单、审核、市场交易
type CouponModule struct{}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 10
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewCouponRepository(ctx.DB)
	userRepo := userRepository.NewUserRepository(ctx.DB)
	couponService := service.NewCouponService(repo, ctx.Redis)
	tradeService := service.NewTradeService(repo, ctx.Redis)
	adminService := service.NewAdminService(repo, userRepo, ctx.Redis)
	couponHandler := handler.NewCouponHandler(couponService, tradeService)
	adminHandler := handler.NewAdminHandler(adminService)

	// 2. 路由注册
	setupRoutes(ctx.Router, couponHandler, adminHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler, ah *handler.AdminHandler) {
	g := r.Group("/coupons")

	// 市场列表公开可见
	g.GET("/marketplace", h.Marketplace)

	authorized := g.Group("")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.POST("", h.RegisterCoupon)
		authorized.GET("/mine", h.MyCoupons)
		authorized.POST("/:id/sell", h.SellCoupon)
		authorized.POST("/:id/buy", h.BuyCoupon)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/stats", ah.GetStats)
		admin.GET("/coupons/pending", ah.PendingCoupons)
		admin.POST("/coupons/:id/approve", ah.ApproveCoupon)
		admin.POST("/coupons/:id/reject", ah.RejectCoupon)
	}
}
