package apperr

import (
	"errors"
	"fmt"
	"time"
)

// 业务错误哨兵，服务层用 fmt.Errorf("%w") 包装后返回，
// handler 层用 errors.Is 映射为响应码。
var (
	ErrValidation        = errors.New("validation failed")
	ErrOwnership         = errors.New("ownership violation")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotAvailable      = errors.New("coupon not available")
	ErrSelfTrade         = errors.New("cannot trade with yourself")
	ErrSelfReferral      = errors.New("cannot refer yourself")
	ErrTooSoon           = errors.New("reward not available yet")
	ErrInvalidCode       = errors.New("invalid referral code")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInternal          = errors.New("internal error")
)

// TooSoonError 带剩余等待时间的 TooSoon 错误
type TooSoonError struct {
	Remaining time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("reward not available yet, retry in %s", e.Remaining.Round(time.Second))
}

// Unwrap 使 errors.Is(err, ErrTooSoon) 成立
func (e *TooSoonError) Unwrap() error {
	return ErrTooSoon
}

// NewTooSoon 创建带剩余等待时间的错误
func NewTooSoon(remaining time.Duration) error {
	return &TooSoonError{Remaining: remaining}
}

// Internal 包装底层存储错误，对外只暴露 ErrInternal
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
