package model

import (
	"time"

	baseModel "coupon_market/pkg/model"
)

// Status 优惠券状态，封闭枚举，只允许转移表里列出的边
type Status string

const (
	StatusWallet    Status = "wallet"    // 在持有人钱包中，可挂单
	StatusPending   Status = "pending"   // 已挂单，待管理员审核
	StatusAvailable Status = "available" // 审核通过，在市场上架
	// 拒绝没有终态记录：pending 的券被拒绝后直接删除
)

// allowedTransitions 状态转移表
// wallet→pending 持有人挂单；pending→available 管理员通过；
// available→wallet 买家购得（换所有者）；pending 被拒绝则删除整条记录
var allowedTransitions = map[Status][]Status{
	StatusWallet:    {StatusPending},
	StatusPending:   {StatusAvailable},
	StatusAvailable: {StatusWallet},
}

// CanTransition 判断状态转移是否合法
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid 是否合法状态值
func (s Status) Valid() bool {
	switch s {
	case StatusWallet, StatusPending, StatusAvailable:
		return true
	}
	return false
}

// Coupon 优惠券
// OwnerID 是唯一的当前所有者，所有权变更只在事务内更新；
// SellerID/BuyerID 保留挂单人与最近买家，用于流水描述与审计
type Coupon struct {
	baseModel.BaseModel
	Brand      string    `gorm:"type:varchar(100);not null" json:"brand"`
	Code       string    `gorm:"type:varchar(100);not null" json:"code"`
	ExpiryDate time.Time `gorm:"not null" json:"expiryDate"`
	Price      int       `gorm:"not null;default:0" json:"price"` // 单位：积分
	Status     Status    `gorm:"type:varchar(20);not null;default:wallet;index" json:"status"`
	SellerID   string    `gorm:"type:uuid;not null;index" json:"sellerId"`
	BuyerID    *string   `gorm:"type:uuid" json:"buyerId,omitempty"`
	OwnerID    string    `gorm:"type:uuid;not null;index" json:"ownerId"`
}

// MarketplaceItem 市场列表项，附带卖家用户名
type MarketplaceItem struct {
	Coupon
	SellerName string `json:"sellerName"`
}
