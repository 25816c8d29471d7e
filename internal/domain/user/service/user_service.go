package service

import (
	"errors"
	"fmt"
	"strings"

	"coupon_market/internal/domain/user/model"
	"coupon_market/internal/domain/user/repository"
	walletService "coupon_market/internal/domain/wallet/service"
	"coupon_market/internal/pkg/config"
	"coupon_market/pkg/apperr"
	"coupon_market/pkg/logger"
	"coupon_market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService 用户服务接口
// 凭证验证由外部协作方负责，这里只做身份引导：按用户名登录或注册，签发 Token
type UserService interface {
	LoginOrRegister(username string) (string, *model.User, error)
	GetUser(id string) (*model.User, error)
}

// userService 实现
type userService struct {
	repo   repository.UserRepository
	ledger walletService.LedgerService
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, ledger walletService.LedgerService) UserService {
	return &userService{repo: repo, ledger: ledger}
}

// LoginOrRegister 登录或注册
// 首次注册时创建钱包，带固定初始积分；钱包只在注册这一刻创建一次
func (s *userService) LoginOrRegister(username string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, fmt.Errorf("username is required: %w", apperr.ErrValidation)
	}

	// 1. 查询用户是否存在
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Internal(err)
		}

		// 2. 不存在则注册
		user = &model.User{
			Username:     username,
			Role:         model.RoleUser,
			ReferralCode: newReferralCode(),
		}
		if err := s.repo.Create(user); err != nil {
			return "", nil, apperr.Internal(err)
		}

		// 3. 创建钱包并发放初始积分
		starting := config.GlobalConfig.Ledger.StartingCredits
		if err := s.ledger.CreateWallet(user.ID, starting); err != nil {
			return "", nil, err
		}

		logger.Log.Info("user registered",
			zap.String("user_id", user.ID),
			zap.String("username", username),
			zap.Int("starting_credits", starting))
	}

	// 4. 生成 Token
	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}

	return token, user, nil
}

// GetUser 根据ID获取用户
func (s *userService) GetUser(id string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// newReferralCode 生成 8 位推荐码
func newReferralCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
