package service

import (
	"context"
	"errors"
	"fmt"

	"coupon_market/internal/domain/coupon/model"
	"coupon_market/internal/domain/coupon/repository"
	userRepository "coupon_market/internal/domain/user/repository"
	"coupon_market/internal/pkg/identity"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stats 管理端统计
type Stats struct {
	UserCount      int64 `json:"userCount"`
	AvailableCount int64 `json:"couponCount"`
	PendingCount   int64 `json:"pendingCoupons"`
}

// AdminService 管理员审核闸口
// pending→available 与 pending→删除 只能从这里发起；
// 调用者身份显式传入，角色检查在核心内完成，不依赖上层中间件兜底
type AdminService interface {
	Approve(actor identity.Identity, couponID string) (*model.Coupon, error)
	Reject(actor identity.Identity, couponID string) error
	PendingCoupons(actor identity.Identity) ([]model.MarketplaceItem, error)
	GetStats(actor identity.Identity) (*Stats, error)
}

type adminService struct {
	repo     repository.CouponRepository
	userRepo userRepository.UserRepository
	rdb      *redis.Client
}

// NewAdminService 创建管理服务
func NewAdminService(repo repository.CouponRepository, userRepo userRepository.UserRepository, rdb *redis.Client) AdminService {
	return &adminService{repo: repo, userRepo: userRepo, rdb: rdb}
}

func requireAdmin(actor identity.Identity) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("user %s is not an admin: %w", actor.UserID, apperr.ErrPermissionDenied)
	}
	return nil
}

// Approve 审核通过：pending→available，上架到市场
func (s *adminService) Approve(actor identity.Identity, couponID string) (*model.Coupon, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon %s: %w", couponID, apperr.ErrNotFound)
		}
		return nil, apperr.Internal(err)
	}

	if !model.CanTransition(coupon.Status, model.StatusAvailable) {
		return nil, fmt.Errorf("coupon %s is %s: %w", couponID, coupon.Status, apperr.ErrInvalidTransition)
	}

	if err := s.repo.Approve(couponID); err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			return nil, fmt.Errorf("coupon %s: %w", couponID, err)
		}
		return nil, apperr.Internal(err)
	}

	invalidateMarketplace(context.Background(), s.rdb)

	logger.Log.Info("coupon approved",
		zap.String("coupon_id", couponID),
		zap.String("admin_id", actor.UserID))

	approved, err := s.repo.GetByID(couponID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return approved, nil
}

// Reject 拒绝：要求 pending 状态，直接删除记录，不保留 rejected 终态
func (s *adminService) Reject(actor identity.Identity, couponID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("coupon %s: %w", couponID, apperr.ErrNotFound)
		}
		return apperr.Internal(err)
	}

	if coupon.Status != model.StatusPending {
		return fmt.Errorf("coupon %s is %s, only pending can be rejected: %w",
			couponID, coupon.Status, apperr.ErrInvalidTransition)
	}

	if err := s.repo.DeletePending(couponID); err != nil {
		if errors.Is(err, apperr.ErrInvalidTransition) {
			return fmt.Errorf("coupon %s: %w", couponID, err)
		}
		return apperr.Internal(err)
	}

	invalidateMarketplace(context.Background(), s.rdb)

	logger.Log.Info("coupon rejected and deleted",
		zap.String("coupon_id", couponID),
		zap.String("admin_id", actor.UserID))

	return nil
}

// PendingCoupons 待审核队列
func (s *adminService) PendingCoupons(actor identity.Identity) ([]model.MarketplaceItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	items, err := s.repo.PendingList()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// GetStats 平台统计：用户数、上架中数量、待审核数量
func (s *adminService) GetStats(actor identity.Identity) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	userCount, err := s.userRepo.Count()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	available, err := s.repo.CountByStatus(model.StatusAvailable)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	pending, err := s.repo.CountByStatus(model.StatusPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Stats{
		UserCount:      userCount,
		AvailableCount: available,
		PendingCount:   pending,
	}, nil
}
