package service

import (
	"context"
	"errors"
	"fmt"

	"coupon_market/internal/domain/coupon/model"
	"coupon_market/internal/domain/coupon/repository"
	walletService "coupon_market/internal/domain/wallet/service"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeService 市场交易协调器
// 购买横跨两个钱包、一张券和两条流水，五个写入在一个数据库事务内全部成功或全部失败
type TradeService interface {
	Buy(couponID, buyerID string) (*model.Coupon, error)
}

type tradeService struct {
	repo repository.CouponRepository
	rdb  *redis.Client
}

// NewTradeService 创建交易服务
func NewTradeService(repo repository.CouponRepository, rdb *redis.Client) TradeService {
	return &tradeService{repo: repo, rdb: rdb}
}

// Buy 购买一张上架中的券
// 同一张券的并发购买由券状态的条件更新串行化：恰有一个买家成功，
// 落败方收到 NotAvailable，余额零影响
func (s *tradeService) Buy(couponID, buyerID string) (*model.Coupon, error) {
	// 1. 加载并校验
	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon %s: %w", couponID, apperr.ErrNotFound)
		}
		return nil, apperr.Internal(err)
	}

	if coupon.Status != model.StatusAvailable {
		return nil, fmt.Errorf("coupon %s is %s: %w", couponID, coupon.Status, apperr.ErrNotAvailable)
	}

	if coupon.OwnerID == buyerID {
		return nil, fmt.Errorf("cannot buy own coupon: %w", apperr.ErrSelfTrade)
	}

	// 2. 原子执行：认领券 + 买家扣款 + 卖家入账 + 两条流水
	// 这里读到的卖家与价格会被钉进认领条件：读后若券被转手重挂，认领失败
	sellerID := coupon.OwnerID
	if err := s.repo.Purchase(couponID, buyerID, sellerID, coupon.Price, coupon.Brand); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotAvailable), errors.Is(err, apperr.ErrInsufficientFunds):
			return nil, err
		default:
			return nil, apperr.Internal(err)
		}
	}

	// 3. 缓存失效：市场列表与双方余额
	ctx := context.Background()
	invalidateMarketplace(ctx, s.rdb)
	walletService.InvalidateBalance(ctx, s.rdb, buyerID, sellerID)

	logger.Log.Info("coupon purchased",
		zap.String("coupon_id", couponID),
		zap.String("buyer_id", buyerID),
		zap.String("seller_id", sellerID),
		zap.Int("price", coupon.Price))

	purchased, err := s.repo.GetByID(couponID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return purchased, nil
}
