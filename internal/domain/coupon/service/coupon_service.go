package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coupon_market/internal/domain/coupon/model"
	"coupon_market/internal/domain/coupon/repository"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	marketplaceCacheKey = "coupon:marketplace"
	marketplaceCacheTTL = 30 * time.Second
)

// invalidateMarketplace 市场列表缓存失效，上架/下架/成交后调用
func invalidateMarketplace(ctx context.Context, rdb *redis.Client) {
	if err := rdb.Del(ctx, marketplaceCacheKey).Err(); err != nil {
		logger.Log.Warn("failed to invalidate marketplace cache", zap.Error(err))
	}
}

// CouponService 优惠券登记与查询
type CouponService interface {
	RegisterToWallet(ownerID, brand, code string, expiry time.Time) (*model.Coupon, error)
	ListForSale(couponID, byUserID string, price int) (*model.Coupon, error)
	Marketplace() ([]model.MarketplaceItem, error)
	MyCoupons(userID string) ([]model.Coupon, error)
}

type couponService struct {
	repo repository.CouponRepository
	rdb  *redis.Client
}

// NewCouponService 创建优惠券服务
func NewCouponService(repo repository.CouponRepository, rdb *redis.Client) CouponService {
	return &couponService{repo: repo, rdb: rdb}
}

// RegisterToWallet 把一张券登记到自己的钱包，price=0，不上架
func (s *couponService) RegisterToWallet(ownerID, brand, code string, expiry time.Time) (*model.Coupon, error) {
	if brand == "" || code == "" {
		return nil, fmt.Errorf("brand and code are required: %w", apperr.ErrValidation)
	}
	if !expiry.After(time.Now()) {
		return nil, fmt.Errorf("expiry must be in the future: %w", apperr.ErrValidation)
	}

	coupon := &model.Coupon{
		Brand:      brand,
		Code:       code,
		ExpiryDate: expiry,
		Price:      0,
		Status:     model.StatusWallet,
		SellerID:   ownerID,
		OwnerID:    ownerID,
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, apperr.Internal(err)
	}
	return coupon, nil
}

// ListForSale 挂单出售
// 只有当前所有者可以挂单；只有 wallet 状态的券能进入 pending
func (s *couponService) ListForSale(couponID, byUserID string, price int) (*model.Coupon, error) {
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", apperr.ErrValidation)
	}

	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon %s: %w", couponID, apperr.ErrNotFound)
		}
		return nil, apperr.Internal(err)
	}

	if coupon.OwnerID != byUserID {
		return nil, fmt.Errorf("user %s does not own coupon %s: %w", byUserID, couponID, apperr.ErrOwnership)
	}

	if !model.CanTransition(coupon.Status, model.StatusPending) {
		return nil, fmt.Errorf("coupon %s is %s: %w", couponID, coupon.Status, apperr.ErrInvalidTransition)
	}

	if err := s.repo.MarkPending(couponID, byUserID, price); err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			return nil, fmt.Errorf("coupon %s: %w", couponID, err)
		}
		return nil, apperr.Internal(err)
	}

	logger.Log.Info("coupon listed for sale",
		zap.String("coupon_id", couponID),
		zap.String("owner_id", byUserID),
		zap.Int("price", price))

	return s.reload(couponID)
}

// Marketplace 市场列表（status=available），带短缓存
func (s *couponService) Marketplace() ([]model.MarketplaceItem, error) {
	ctx := context.Background()

	if cached, err := s.rdb.Get(ctx, marketplaceCacheKey).Bytes(); err == nil {
		var items []model.MarketplaceItem
		if jsonErr := json.Unmarshal(cached, &items); jsonErr == nil {
			return items, nil
		}
	}

	items, err := s.repo.Marketplace()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if data, err := json.Marshal(items); err == nil {
		s.rdb.Set(ctx, marketplaceCacheKey, data, marketplaceCacheTTL)
	}
	return items, nil
}

// MyCoupons 我持有的券（owner_id = 当前用户）
func (s *couponService) MyCoupons(userID string) ([]model.Coupon, error) {
	coupons, err := s.repo.GetByOwner(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return coupons, nil
}

func (s *couponService) reload(couponID string) (*model.Coupon, error) {
	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return coupon, nil
}
