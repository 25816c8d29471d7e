package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	userRepository "coupon_market/internal/domain/user/repository"
	walletModel "coupon_market/internal/domain/wallet/model"
	walletRepository "coupon_market/internal/domain/wallet/repository"
	walletService "coupon_market/internal/domain/wallet/service"
	"coupon_market/internal/pkg/config"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 刮卡规则：7 天窗口一次，奖励 [5,50] 均匀分布
const (
	scratchWindow    = 7 * 24 * time.Hour
	scratchRewardMin = 5
	scratchRewardMax = 50
)

// ScratchResult 刮卡结果
type ScratchResult struct {
	Reward     int       `json:"reward"`
	NewBalance int       `json:"newBalance"`
	NextAt     time.Time `json:"nextAt"`
}

// RewardService 奖励引擎：刮卡、广告奖励、推荐奖励
type RewardService interface {
	ScratchCard(userID string) (*ScratchResult, error)
	AdReward(userID string) (int, error)
	ClaimReferral(userID, referralCode string) error
}

type rewardService struct {
	wallets walletRepository.WalletRepository
	ledger  walletService.LedgerService
	users   userRepository.UserRepository
	rdb     *redis.Client
	// drawReward 可注入的抽奖函数，测试时固定返回值
	drawReward func() int
}

// NewRewardService 创建奖励服务
func NewRewardService(
	wallets walletRepository.WalletRepository,
	ledger walletService.LedgerService,
	users userRepository.UserRepository,
	rdb *redis.Client,
) RewardService {
	return &rewardService{
		wallets: wallets,
		ledger:  ledger,
		users:   users,
		rdb:     rdb,
		drawReward: func() int {
			return scratchRewardMin + rand.IntN(scratchRewardMax-scratchRewardMin+1)
		},
	}
}

// ScratchCard 刮卡领奖
// 资格检查与奖励发放是一个按用户串行化的原子单元（仓库层条件更新），
// 并发请求不可能在同一窗口内领到两次
func (s *rewardService) ScratchCard(userID string) (*ScratchResult, error) {
	reward := s.drawReward()
	now := time.Now()
	nextAt := now.Add(scratchWindow)

	balance, err := s.wallets.ClaimScratch(userID, reward, nextAt, now)
	if err != nil {
		if errors.Is(err, apperr.ErrTooSoon) {
			return nil, s.tooSoonOrMissing(userID, now)
		}
		return nil, apperr.Internal(err)
	}

	walletService.InvalidateBalance(context.Background(), s.rdb, userID)

	logger.Log.Info("scratch card redeemed",
		zap.String("user_id", userID),
		zap.Int("reward", reward))

	return &ScratchResult{Reward: reward, NewBalance: balance, NextAt: nextAt}, nil
}

// tooSoonOrMissing 条件更新没有命中行：要么窗口未到，要么钱包不存在
func (s *rewardService) tooSoonOrMissing(userID string, now time.Time) error {
	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("wallet for user %s: %w", userID, apperr.ErrNotFound)
		}
		return apperr.Internal(err)
	}
	if wallet.ScratchNextAt == nil {
		// 理论上不可达：没有冷却却没命中更新，按内部错误处理
		return apperr.Internal(errors.New("scratch claim missed without cooldown"))
	}
	return apperr.NewTooSoon(wallet.ScratchNextAt.Sub(now))
}

// AdReward 广告奖励：固定加 5 积分，核心不做冷却，频控由上游限流负责
func (s *rewardService) AdReward(userID string) (int, error) {
	amount := config.GlobalConfig.Ledger.AdReward
	balance, err := s.ledger.Credit(userID, amount, walletModel.TxAdReward, "", "Video Ad Reward")
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ClaimReferral 推荐奖励
// 积分发给推荐人而不是填码的人；同一对用户的重复领取不设上限
func (s *rewardService) ClaimReferral(userID, referralCode string) error {
	if referralCode == "" {
		return fmt.Errorf("referral code is required: %w", apperr.ErrValidation)
	}

	// 1. 解析推荐码
	referrer, err := s.users.GetByReferralCode(referralCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("referral code %q: %w", referralCode, apperr.ErrInvalidCode)
		}
		return apperr.Internal(err)
	}

	// 2. 不允许自我推荐
	if referrer.ID == userID {
		return fmt.Errorf("own referral code: %w", apperr.ErrSelfReferral)
	}

	// 3. 给推荐人入账，描述里记录填码人
	caller, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return apperr.Internal(err)
	}

	amount := config.GlobalConfig.Ledger.ReferralReward
	desc := fmt.Sprintf("Referral reward from user %s", caller.Username)
	if _, err := s.ledger.Credit(referrer.ID, amount, walletModel.TxReferral, "", desc); err != nil {
		return err
	}

	logger.Log.Info("referral reward granted",
		zap.String("referrer_id", referrer.ID),
		zap.String("caller_id", userID))

	return nil
}
