package repository

import (
	"errors"
	"time"

	"coupon_market/internal/domain/wallet/model"
	"coupon_market/pkg/apperr"

	"gorm.io/gorm"
)

// WalletRepository 钱包与流水存储
// Credit/Debit/ClaimScratch 内部各自是一个数据库事务：
// 余额变动与流水写入要么同时落库，要么都不落
type WalletRepository interface {
	Create(wallet *model.Wallet) error
	GetByUserID(userID string) (*model.Wallet, error)
	Credit(userID string, amount int, kind model.TxKind, method, desc string) (int, error)
	Debit(userID string, amount int, kind model.TxKind, method, desc string) (int, error)
	ClaimScratch(userID string, reward int, nextAt time.Time, now time.Time) (int, error)
	GetTransactions(userID string, offset, limit int) ([]model.Transaction, int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包仓库实例
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// Create 创建钱包（注册时调用一次）
func (r *walletRepository) Create(wallet *model.Wallet) error {
	return r.db.Create(wallet).Error
}

// GetByUserID 根据用户ID获取钱包
func (r *walletRepository) GetByUserID(userID string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Credit 入账：钱包不存在时先建余额为 0 的钱包，再加积分并写流水
func (r *walletRepository) Credit(userID string, amount int, kind model.TxKind, method, desc string) (int, error) {
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureWallet(tx, userID); err != nil {
			return err
		}
		if err := ApplyCredit(tx, userID, amount, kind, method, desc); err != nil {
			return err
		}
		return tx.Model(&model.Wallet{}).
			Where("user_id = ?", userID).
			Select("credits").Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Debit 出账：余额不足则整体失败，不存在部分扣减
func (r *walletRepository) Debit(userID string, amount int, kind model.TxKind, method, desc string) (int, error) {
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ApplyDebit(tx, userID, amount, kind, method, desc); err != nil {
			return err
		}
		return tx.Model(&model.Wallet{}).
			Where("user_id = ?", userID).
			Select("credits").Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ClaimScratch 刮卡领奖：资格判断、余额变动、冷却更新、流水写入为一个原子单元
// 条件更新按行加锁，并发请求只有一个能通过窗口检查
func (r *walletRepository) ClaimScratch(userID string, reward int, nextAt time.Time, now time.Time) (int, error) {
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Wallet{}).
			Where("user_id = ? AND (scratch_next_at IS NULL OR scratch_next_at <= ?)", userID, now).
			Updates(map[string]interface{}{
				"credits":         gorm.Expr("credits + ?", reward),
				"scratch_next_at": nextAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 钱包不存在或窗口未到，由服务层区分并补充剩余等待时间
			return apperr.ErrTooSoon
		}

		txn := &model.Transaction{
			UserID:      userID,
			Kind:        model.TxScratchReward,
			Amount:      reward,
			Description: "Scratch Card Reward",
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return tx.Model(&model.Wallet{}).
			Where("user_id = ?", userID).
			Select("credits").Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// GetTransactions 获取流水（分页，新的在前）
func (r *walletRepository) GetTransactions(userID string, offset, limit int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	if err := r.db.Model(&model.Transaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// ensureWallet 钱包不存在时创建余额为 0 的钱包
func ensureWallet(tx *gorm.DB, userID string) error {
	var wallet model.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.Wallet{UserID: userID, Credits: 0}).Error
	}
	return err
}

// ApplyCredit 在给定事务内加积分并写流水
// 导出供跨模块事务（优惠券购买）复用，保证账本写入逻辑只有一份
func ApplyCredit(tx *gorm.DB, userID string, amount int, kind model.TxKind, method, desc string) error {
	result := tx.Model(&model.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return tx.Create(&model.Transaction{
		UserID:        userID,
		Kind:          kind,
		Amount:        amount,
		PaymentMethod: method,
		Description:   desc,
	}).Error
}

// ApplyDebit 在给定事务内扣积分并写流水，余额不足返回 ErrInsufficientFunds
func ApplyDebit(tx *gorm.DB, userID string, amount int, kind model.TxKind, method, desc string) error {
	result := tx.Model(&model.Wallet{}).
		Where("user_id = ? AND credits >= ?", userID, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrInsufficientFunds
	}

	return tx.Create(&model.Transaction{
		UserID:        userID,
		Kind:          kind,
		Amount:        -amount,
		PaymentMethod: method,
		Description:   desc,
	}).Error
}
