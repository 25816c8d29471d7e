package model

import (
	baseModel "coupon_market/pkg/model"
)

// 角色常量（与 identity 包一致）
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// User 用户模型
// 凭证校验在核心之外，这里只承载身份、角色与推荐码
type User struct {
	baseModel.BaseModel
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Role         int    `gorm:"not null;default:1" json:"role"`
	ReferralCode string `gorm:"uniqueIndex;not null;type:varchar(12)" json:"referralCode"`
}
