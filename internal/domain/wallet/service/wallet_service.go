package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"coupon_market/internal/domain/wallet/model"
	"coupon_market/internal/domain/wallet/repository"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"
	"coupon_market/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 定价规则：115 元 = 100 积分，floor 取整
const (
	creditPriceRupees = 115
	creditPriceUnits  = 100
)

const balanceCacheTTL = 60 * time.Second

// BalanceCacheKey 余额缓存键，跨模块失效时使用同一份键生成逻辑
func BalanceCacheKey(userID string) string {
	return "wallet:balance:" + userID
}

// InvalidateBalance 删除余额缓存，余额变动后调用
// 缓存失效失败只记日志，不影响账本写入结果
func InvalidateBalance(ctx context.Context, rdb *redis.Client, userIDs ...string) {
	for _, uid := range userIDs {
		if err := rdb.Del(ctx, BalanceCacheKey(uid)).Err(); err != nil {
			logger.Log.Warn("failed to invalidate balance cache",
				zap.String("user_id", uid), zap.Error(err))
		}
	}
}

// LedgerService 积分账本服务
type LedgerService interface {
	GetBalance(userID string) (int, error)
	GetWallet(userID string) (*model.Wallet, error)
	CreateWallet(userID string, startingCredits int) error
	Credit(userID string, amount int, kind model.TxKind, method, desc string) (int, error)
	Debit(userID string, amount int, kind model.TxKind, method, desc string) (int, error)
	BuyCredits(userID string, amountPaid float64, method string) (added int, balance int, err error)
	GetHistory(userID string, p *utils.Pagination) (*utils.PageResult, error)
}

type ledgerService struct {
	repo repository.WalletRepository
	rdb  *redis.Client
}

// NewLedgerService 创建账本服务
func NewLedgerService(repo repository.WalletRepository, rdb *redis.Client) LedgerService {
	return &ledgerService{repo: repo, rdb: rdb}
}

// GetBalance 查询余额，优先走缓存
func (s *ledgerService) GetBalance(userID string) (int, error) {
	ctx := context.Background()

	if cached, err := s.rdb.Get(ctx, BalanceCacheKey(userID)).Result(); err == nil {
		if balance, convErr := strconv.Atoi(cached); convErr == nil {
			return balance, nil
		}
	}

	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("wallet for user %s: %w", userID, apperr.ErrNotFound)
		}
		return 0, apperr.Internal(err)
	}

	s.rdb.Set(ctx, BalanceCacheKey(userID), wallet.Credits, balanceCacheTTL)
	return wallet.Credits, nil
}

// GetWallet 查询钱包（含刮卡冷却信息），不走缓存
func (s *ledgerService) GetWallet(userID string) (*model.Wallet, error) {
	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("wallet for user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return wallet, nil
}

// CreateWallet 注册时创建钱包，带固定的初始积分
func (s *ledgerService) CreateWallet(userID string, startingCredits int) error {
	if startingCredits < 0 {
		return fmt.Errorf("starting credits must be non-negative: %w", apperr.ErrValidation)
	}
	if err := s.repo.Create(&model.Wallet{UserID: userID, Credits: startingCredits}); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Credit 入账并写流水
func (s *ledgerService) Credit(userID string, amount int, kind model.TxKind, method, desc string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive: %w", apperr.ErrValidation)
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown transaction kind %q: %w", kind, apperr.ErrValidation)
	}

	balance, err := s.repo.Credit(userID, amount, kind, method, desc)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	InvalidateBalance(context.Background(), s.rdb, userID)
	return balance, nil
}

// Debit 出账并写流水，余额不足整体失败
func (s *ledgerService) Debit(userID string, amount int, kind model.TxKind, method, desc string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive: %w", apperr.ErrValidation)
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown transaction kind %q: %w", kind, apperr.ErrValidation)
	}

	balance, err := s.repo.Debit(userID, amount, kind, method, desc)
	if err != nil {
		if errors.Is(err, apperr.ErrInsufficientFunds) {
			return 0, err
		}
		return 0, apperr.Internal(err)
	}

	InvalidateBalance(context.Background(), s.rdb, userID)
	return balance, nil
}

// CreditsForAmount 按定价规则换算积分：credits = floor(amountPaid / 115 * 100)
func CreditsForAmount(amountPaid float64) int {
	return int(math.Floor(amountPaid / creditPriceRupees * creditPriceUnits))
}

// BuyCredits 充值购买积分
// 支付网关在核心之外，amountPaid 是已确认的支付金额
func (s *ledgerService) BuyCredits(userID string, amountPaid float64, method string) (int, int, error) {
	if amountPaid <= 0 {
		return 0, 0, fmt.Errorf("amount paid must be positive: %w", apperr.ErrValidation)
	}

	credits := CreditsForAmount(amountPaid)
	if credits <= 0 {
		return 0, 0, fmt.Errorf("amount %.2f too low for any credits: %w", amountPaid, apperr.ErrValidation)
	}

	desc := fmt.Sprintf("Bought %d credits for ₹%.2f", credits, amountPaid)
	balance, err := s.Credit(userID, credits, model.TxCreditBuy, method, desc)
	if err != nil {
		return 0, 0, err
	}

	logger.Log.Info("credits purchased",
		zap.String("user_id", userID),
		zap.Int("credits", credits),
		zap.Float64("amount_paid", amountPaid),
		zap.String("method", method))

	return credits, balance, nil
}

// GetHistory 流水查询，新的在前
func (s *ledgerService) GetHistory(userID string, p *utils.Pagination) (*utils.PageResult, error) {
	offset, limit := p.GetPageOffset()

	transactions, total, err := s.repo.GetTransactions(userID, offset, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &utils.PageResult{
		List:  transactions,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}, nil
}
