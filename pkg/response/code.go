package response

// 业务状态码
const (
	CodeSuccess = 0

	// 用户模块错误 100xx
	ErrUserNotFound = 10002
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 钱包模块错误 200xx
	ErrInvalidAmount     = 20001
	ErrInsufficientFunds = 20002
	ErrWalletNotFound    = 20003

	// 优惠券模块错误 300xx
	ErrCouponNotFound     = 30001
	ErrCouponNotAvailable = 30002
	ErrInvalidTransition  = 30003
	ErrNotOwner           = 30004
	ErrSelfTrade          = 30005

	// 奖励模块错误 400xx
	ErrRewardTooSoon   = 40001
	ErrInvalidReferral = 40002
	ErrSelfReferral    = 40003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
