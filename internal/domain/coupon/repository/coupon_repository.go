package repository

import (
	"fmt"

	"coupon_market/internal/domain/coupon/model"
	walletModel "coupon_market/internal/domain/wallet/model"
	walletRepository "coupon_market/internal/domain/wallet/repository"
	"coupon_market/pkg/apperr"

	"gorm.io/gorm"
)

// CouponRepository 优惠券存储
// 状态转移全部走条件更新：WHERE 限定当前状态，RowsAffected==0 视为转移被并发抢占或状态不符，
// 同一张券上的并发操作由此串行化
type CouponRepository interface {
	Create(coupon *model.Coupon) error
	GetByID(id string) (*model.Coupon, error)
	MarkPending(couponID, ownerID string, price int) error
	Approve(couponID string) error
	DeletePending(couponID string) error
	Purchase(couponID, buyerID, sellerID string, price int, brand string) error
	Marketplace() ([]model.MarketplaceItem, error)
	PendingList() ([]model.MarketplaceItem, error)
	GetByOwner(ownerID string) ([]model.Coupon, error)
	CountByStatus(status model.Status) (int64, error)
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *couponRepository) GetByID(id string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// MarkPending 挂单：wallet→pending
// 重新挂单的券（曾被购买）把挂单人重置为当前所有者，清掉上一任买家
func (r *couponRepository) MarkPending(couponID, ownerID string, price int) error {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ? AND status = ?", couponID, model.StatusWallet).
		Updates(map[string]interface{}{
			"status":    model.StatusPending,
			"price":     price,
			"seller_id": ownerID,
			"buyer_id":  nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// Approve 审核通过：pending→available
func (r *couponRepository) Approve(couponID string) error {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ? AND status = ?", couponID, model.StatusPending).
		Update("status", model.StatusAvailable)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// DeletePending 拒绝：只有 pending 的券可删，删除即终态，不保留 rejected 记录
func (r *couponRepository) DeletePending(couponID string) error {
	result := r.db.Where("id = ? AND status = ?", couponID, model.StatusPending).
		Delete(&model.Coupon{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// Purchase 购买：一次数据库事务内完成五个写入——
// 券的认领（状态+买家+所有者）、买家扣款、卖家入账、两条流水。
// 认领条件除了 available 状态还钉住调用方读到的 seller_id 与 price：
// 若读与写之间券已成交又被重新挂单（新卖家/新价格），条件不再命中，
// 买家拿到 NotAvailable 而不是按旧价付给旧卖家。
// 后续任一步失败整个事务回滚，失败方余额零影响
func (r *couponRepository) Purchase(couponID, buyerID, sellerID string, price int, brand string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 1. 认领券：available→wallet，换所有者
		result := tx.Model(&model.Coupon{}).
			Where("id = ? AND status = ? AND seller_id = ? AND price = ?",
				couponID, model.StatusAvailable, sellerID, price).
			Updates(map[string]interface{}{
				"status":   model.StatusWallet,
				"buyer_id": buyerID,
				"owner_id": buyerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.ErrNotAvailable
		}

		// 2. 两个钱包按用户ID升序加锁：
		// 交叉购买（X 买 Y 的券、Y 同时买 X 的券）双方以相同顺序拿锁，不会互相等待。
		// 扣款的 credits >= ? 条件与升序无关，先入账后扣款时余额不足同样整体回滚
		debitBuyer := func() error {
			return walletRepository.ApplyDebit(tx, buyerID, price,
				walletModel.TxCouponBuy, "", fmt.Sprintf("Bought %s coupon", brand))
		}
		creditSeller := func() error {
			return walletRepository.ApplyCredit(tx, sellerID, price,
				walletModel.TxCouponSell, "", fmt.Sprintf("Sold %s coupon", brand))
		}

		if buyerID < sellerID {
			if err := debitBuyer(); err != nil {
				return err
			}
			return creditSeller()
		}
		if err := creditSeller(); err != nil {
			return err
		}
		return debitBuyer()
	})
}

// Marketplace 市场列表：上架中的券，带卖家用户名
func (r *couponRepository) Marketplace() ([]model.MarketplaceItem, error) {
	var items []model.MarketplaceItem
	err := r.db.Model(&model.Coupon{}).
		Select("coupons.*, users.username AS seller_name").
		Joins("JOIN users ON users.id = coupons.seller_id").
		Where("coupons.status = ?", model.StatusAvailable).
		Order("coupons.created_at desc").
		Scan(&items).Error
	return items, err
}

// PendingList 待审核列表，带卖家用户名
func (r *couponRepository) PendingList() ([]model.MarketplaceItem, error) {
	var items []model.MarketplaceItem
	err := r.db.Model(&model.Coupon{}).
		Select("coupons.*, users.username AS seller_name").
		Joins("JOIN users ON users.id = coupons.seller_id").
		Where("coupons.status = ?", model.StatusPending).
		Order("coupons.created_at asc").
		Scan(&items).Error
	return items, err
}

// GetByOwner 当前所有者持有的券，新的在前
func (r *couponRepository) GetByOwner(ownerID string) ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&coupons).Error
	return coupons, err
}

// CountByStatus 按状态计数（管理端统计）
func (r *couponRepository) CountByStatus(status model.Status) (int64, error) {
	var total int64
	err := r.db.Model(&model.Coupon{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}
