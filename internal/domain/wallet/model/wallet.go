package model

import (
	"time"

	baseModel "coupon_market/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet 用户钱包，与用户一对一，积分恒为非负
type Wallet struct {
	baseModel.BaseModel
	UserID  string `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Credits int    `gorm:"not null;default:0" json:"credits"`
	// ScratchNextAt 下次可刮卡时间，空表示从未刮过
	// 存"下次可用时间"而不是上次领取时间，资格判断不依赖运行时算差值
	ScratchNextAt *time.Time `json:"scratchNextAt,omitempty"`
}

// TxKind 流水类型
type TxKind string

const (
	TxCreditBuy     TxKind = "credit_buy"     // 充值购买积分
	TxCouponBuy     TxKind = "coupon_buy"     // 购买优惠券（扣减）
	TxCouponSell    TxKind = "coupon_sell"    // 出售优惠券（入账）
	TxReferral      TxKind = "referral"       // 推荐奖励
	TxAdReward      TxKind = "ad_reward"      // 广告奖励
	TxScratchReward TxKind = "scratch_reward" // 刮卡奖励
)

// Valid 是否合法的流水类型
func (k TxKind) Valid() bool {
	switch k {
	case TxCreditBuy, TxCouponBuy, TxCouponSell, TxReferral, TxAdReward, TxScratchReward:
		return true
	}
	return false
}

// Transaction 积分流水，只追加不修改，每笔余额变动恰有一条对应记录
// 不嵌入 BaseModel：流水没有 UpdatedAt，创建后不可变
type Transaction struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string    `gorm:"type:uuid;index;not null" json:"userId"`
	Kind          TxKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Amount        int       `gorm:"not null" json:"amount"` // 有符号：收入为正，支出为负
	PaymentMethod string    `gorm:"type:varchar(30)" json:"paymentMethod,omitempty"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BeforeCreate 钩子：生成 UUID
func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}
